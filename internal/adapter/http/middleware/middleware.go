package middleware

import (
	"context"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/models"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger"
)

type (
	// TokenVerifier turns a bearer token into the caller identity.
	// Identity itself lives with an external provider; only signature
	// verification happens here.
	TokenVerifier interface {
		Verify(ctx context.Context, token string) (*models.User, error)
	}

	Middleware struct {
		verifier TokenVerifier
		log      logger.Logger
	}
)

func NewMiddleware(verifier TokenVerifier, log logger.Logger) *Middleware {
	return &Middleware{
		verifier: verifier,
		log:      log,
	}
}
