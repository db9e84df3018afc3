package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"vanguard/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMailer struct {
	to      string
	subject string
	body    string
	err     error
	calls   int
}

func (m *stubMailer) Send(to, subject, body string) error {
	m.calls++
	m.to = to
	m.subject = subject
	m.body = body

	return m.err
}

func newTestEmailHandler(m *stubMailer) *EmailHandler {
	return &EmailHandler{
		verifyPushAuth: false,
		clientBaseURL:  "https://app.example.com",
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		mailer:         m,
	}
}

func pushRequest(t *testing.T, event *service.EmailVerificationEvent, routingKey string) *http.Request {
	t.Helper()

	data, err := json.Marshal(event)
	require.NoError(t, err)

	msg := PubSubMessage{Subscription: "projects/local/subscriptions/mailer-sub"}
	msg.Message.Data = base64.StdEncoding.EncodeToString(data)
	msg.Message.Attributes = map[string]string{"routing_key": routingKey}
	msg.Message.MessageID = "1"

	body, err := json.Marshal(msg)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/push", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	return req
}

func TestEmailHandler_HandlePush(t *testing.T) {
	event := &service.EmailVerificationEvent{
		ID:    "7e4d2a1c-0000-0000-0000-000000000001",
		Email: "test@example.com",
		Name:  "Test User",
		Token: "Abc123",
	}

	t.Run("sends the verification mail", func(t *testing.T) {
		mailer := &stubMailer{}
		h := newTestEmailHandler(mailer)

		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(pushRequest(t, event, service.RoutingKeyEmailVerification), rec)

		require.NoError(t, h.HandlePush(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, event.Email, mailer.to)
		assert.Equal(t, "Verify your email address", mailer.subject)
		assert.Contains(t, mailer.body,
			"https://app.example.com/auth/verify-email?user_id="+event.ID+"&email_token="+event.Token)
	})

	t.Run("resend routing key changes the subject", func(t *testing.T) {
		mailer := &stubMailer{}
		h := newTestEmailHandler(mailer)

		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(pushRequest(t, event, service.RoutingKeyEmailVerificationResend), rec)

		require.NoError(t, h.HandlePush(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Your new verification link", mailer.subject)
	})

	t.Run("smtp failure returns 503 for redelivery", func(t *testing.T) {
		mailer := &stubMailer{err: errors.New("smtp down")}
		h := newTestEmailHandler(mailer)

		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(pushRequest(t, event, service.RoutingKeyEmailVerification), rec)

		require.NoError(t, h.HandlePush(c))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("malformed event is acked to stop redelivery", func(t *testing.T) {
		mailer := &stubMailer{}
		h := newTestEmailHandler(mailer)

		e := echo.New()
		rec := httptest.NewRecorder()
		incomplete := &service.EmailVerificationEvent{Email: "test@example.com"}
		c := e.NewContext(pushRequest(t, incomplete, service.RoutingKeyEmailVerification), rec)

		require.NoError(t, h.HandlePush(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Zero(t, mailer.calls)
	})

	t.Run("invalid payload is a bad request", func(t *testing.T) {
		h := newTestEmailHandler(&stubMailer{})

		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/push", bytes.NewReader([]byte("{not json")))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()

		require.NoError(t, h.HandlePush(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProcessEvent_LinkEscapesQueryValues(t *testing.T) {
	mailer := &stubMailer{}
	h := newTestEmailHandler(mailer)

	err := h.processEvent(context.Background(), service.RoutingKeyEmailVerification, &service.EmailVerificationEvent{
		ID:    "user id",
		Email: "test@example.com",
		Token: "a&b=c",
	})
	require.NoError(t, err)
	assert.Contains(t, mailer.body, "user_id=user+id")
	assert.Contains(t, mailer.body, "email_token=a%26b%3Dc")
}
