package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"workspacemanager/internal/domain"
	"workspacemanager/internal/domain/models"
)

// JWKSVerifier implements JWTVerifier with keys fetched from a JWKS endpoint.
type JWKSVerifier struct {
	keyFunc jwt.Keyfunc
	methods []string
	cancel  context.CancelFunc
	logger  *slog.Logger
}

// Asymmetric algorithms only, to prevent algorithm confusion
var jwksMethods = []string{"RS256", "ES256"}

// NewJWTVerifier creates a verifier whose keys are cached and refreshed by keyfunc
func NewJWTVerifier(jwksURL string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	ctx, cancel := context.WithCancel(context.Background())
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)

	return &JWKSVerifier{
		keyFunc: jwks.Keyfunc,
		methods: jwksMethods,
		cancel:  cancel,
		logger:  logger,
	}, nil
}

// NewStaticVerifier creates a verifier over a fixed keyfunc accepting only
// the given signing methods. Used in tests and for locally signed tokens.
func NewStaticVerifier(keyFunc jwt.Keyfunc, methods []string, logger *slog.Logger) JWTVerifier {
	return &JWKSVerifier{
		keyFunc: keyFunc,
		methods: methods,
		logger:  logger,
	}
}

// VerifyToken validates a JWT and extracts its claims
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, v.keyFunc,
		jwt.WithValidMethods(v.methods),
	)
	if err != nil {
		v.logger.Debug("token parse failed", "error", err)
		return nil, domain.ErrUnauthorized
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok {
		v.logger.Error("failed to extract claims from token")
		return nil, domain.ErrUnauthorized
	}

	// sub is required
	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close stops the background JWKS refresh
func (v *JWKSVerifier) Close() error {
	if v.cancel != nil {
		v.cancel()
	}
	v.logger.Info("JWT verifier closed")
	return nil
}
