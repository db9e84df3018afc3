package impl

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"

	"github.com/pkg/errors"
)

const (
	verificationCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	verificationCodeLength   = 6
)

// generateVerificationCode returns a short alphanumeric code suitable for a
// verification link. Each character is drawn independently from crypto/rand.
func generateVerificationCode() (string, error) {
	alphabetSize := big.NewInt(int64(len(verificationCodeAlphabet)))
	code := make([]byte, verificationCodeLength)

	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", errors.Wrap(err, "generate verification code")
		}
		code[i] = verificationCodeAlphabet[n.Int64()]
	}

	return string(code), nil
}

// hashVerificationCode returns the hex digest stored in place of the raw code.
func hashVerificationCode(raw string) string {
	sum := sha256.Sum256([]byte(raw))

	return hex.EncodeToString(sum[:])
}
