// Package handler processes Pub/Sub push deliveries for the mail worker.
package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"vanguard/config"
	deliverycontext "vanguard/internal/delivery/context"
	"vanguard/internal/domain/constants"
	"vanguard/internal/domain/service"
	"vanguard/internal/infra/mailer"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

// PubSubMessage represents the structure of a Pub/Sub push message
type PubSubMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// retryableError wraps an error to indicate it should trigger a Pub/Sub retry
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.err)
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// newRetryableError wraps an error as retryable
func newRetryableError(err error) error {
	return &retryableError{err: err}
}

// isRetryableError checks if an error is retryable
func isRetryableError(err error) bool {
	var re *retryableError

	return errors.As(err, &re)
}

// EmailHandler turns verification events into outgoing mail.
type EmailHandler struct {
	verifyPushAuth bool
	clientBaseURL  string
	logger         *slog.Logger
	mailer         mailer.Mailer
}

// EmailHandlerParams holds dependencies for the EmailHandler
type EmailHandlerParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
	Mailer mailer.Mailer
}

// NewEmailHandler creates a new Pub/Sub push handler
func NewEmailHandler(params EmailHandlerParams) *EmailHandler {
	// Determine if we need to verify push auth based on config
	verifyPushAuth := params.Config.PubSub != nil &&
		params.Config.PubSub.Provider == constants.PubSubProviderGoogle &&
		params.Config.Env.Env != constants.EnvDevelop

	clientBaseURL := ""
	if params.Config.Client != nil {
		clientBaseURL = strings.TrimRight(params.Config.Client.BaseURL, "/")
	}

	return &EmailHandler{
		verifyPushAuth: verifyPushAuth,
		clientBaseURL:  clientBaseURL,
		logger:         params.Logger,
		mailer:         params.Mailer,
	}
}

// HandlePush handles incoming Pub/Sub push messages
func (h *EmailHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	// Verify Pub/Sub token in production for Google provider
	if h.verifyPushAuth {
		if err := verifyPubSubToken(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	// Parse Pub/Sub message
	var pushMsg PubSubMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	// Decode base64 message data
	data, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		h.logger.Error("[Worker] Failed to decode message data", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	// Parse verification event
	var event service.EmailVerificationEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.logger.Error("[Worker] Failed to parse verification event", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	routingKey := pushMsg.Message.Attributes["routing_key"]

	// Create request-scoped logger for tracing
	requestID := h.extractRequestID(ctx, &pushMsg)
	reqLogger := h.logger.With(slog.String("request_id", requestID))
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	reqLogger.Info("[Worker] Processing verification event",
		slog.String("routing_key", routingKey),
		slog.String("user_id", event.ID),
	)

	if err := h.processEvent(ctx, routingKey, &event); err != nil {
		reqLogger.Error("[Worker] Failed to process verification event",
			slog.String("user_id", event.ID),
			slog.Any("error", err),
			slog.Bool("retryable", isRetryableError(err)),
		)
		// Return 503 for retryable errors to trigger Pub/Sub retry
		// Return 200 for non-retryable errors to prevent infinite retries
		if isRetryableError(err) {
			return c.NoContent(http.StatusServiceUnavailable)
		}

		return c.NoContent(http.StatusOK)
	}

	reqLogger.Info("[Worker] Verification email sent",
		slog.String("user_id", event.ID),
	)

	return c.NoContent(http.StatusOK)
}

// extractRequestID extracts request_id from message attributes or generates a new one
func (h *EmailHandler) extractRequestID(ctx context.Context, pushMsg *PubSubMessage) string {
	if requestID, ok := pushMsg.Message.Attributes["request_id"]; ok && requestID != "" {
		return requestID
	}

	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.New().String()
}

// processEvent composes and sends the verification mail. A malformed event
// is dropped; an SMTP failure is retryable.
func (h *EmailHandler) processEvent(_ context.Context, routingKey string, event *service.EmailVerificationEvent) error {
	if event.Email == "" || event.Token == "" || event.ID == "" {
		return errors.New("verification event missing required fields")
	}

	subject := "Verify your email address"
	if routingKey == service.RoutingKeyEmailVerificationResend {
		subject = "Your new verification link"
	}

	link := fmt.Sprintf("%s/auth/verify-email?user_id=%s&email_token=%s",
		h.clientBaseURL,
		url.QueryEscape(event.ID),
		url.QueryEscape(event.Token),
	)

	name := event.Name
	if name == "" {
		name = "there"
	}

	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Please verify your email address by opening the link below:\n\n"+
			"%s\n\n"+
			"If you did not create an account, you can ignore this message.\n",
		name, link,
	)

	if err := h.mailer.Send(event.Email, subject, body); err != nil {
		return newRetryableError(err)
	}

	return nil
}

// verifyPubSubToken verifies the JWT token from Google Pub/Sub push requests
// Reference: https://cloud.google.com/pubsub/docs/push#authenticating_standard_push_requests
func verifyPubSubToken(req *http.Request) error {
	// Get the Authorization header
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	// Extract Bearer token
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)

	// Construct the expected audience (the push endpoint URL)
	scheme := "https"
	if req.TLS == nil {
		scheme = "http" // For local development
	}
	audience := fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)

	// Validate the token using Google's ID token validator
	ctx := req.Context()
	payload, err := idtoken.Validate(ctx, token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	// Verify the token is from Google Pub/Sub
	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	// Verify email is verified (if email claim exists)
	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}
