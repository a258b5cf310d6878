package identity

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/idtoken"
)

// ErrInvalidToken - the identity token was rejected
var ErrInvalidToken = errors.New("invalid identity token")

// ValidateFunc checks a token against an audience and returns its claims.
type ValidateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// GoogleVerifier verifies Google-issued ID tokens and yields the subject as user id.
type GoogleVerifier struct {
	audience string
	validate ValidateFunc
	logger   *zap.Logger
}

// NewGoogleVerifier creates a verifier. An empty audience accepts any client id.
func NewGoogleVerifier(audience string, logger *zap.Logger) *GoogleVerifier {
	return &GoogleVerifier{
		audience: audience,
		validate: idtoken.Validate,
		logger:   logger,
	}
}

// WithValidator replaces the token validation function.
func (v *GoogleVerifier) WithValidator(fn ValidateFunc) *GoogleVerifier {
	v.validate = fn
	return v
}

// Verify returns the user id carried by token.
func (v *GoogleVerifier) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	payload, err := v.validate(ctx, token, v.audience)
	if err != nil {
		v.logger.Debug("Identity token rejected", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if payload.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return payload.Subject, nil
}
