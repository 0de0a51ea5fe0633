package middleware

import (
	"crypto/rsa"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/inkwellhq/inkwell-backend/api/responses"
	"github.com/inkwellhq/inkwell-backend/pkg/config"
	pkgerrors "github.com/inkwellhq/inkwell-backend/pkg/errors"
	"github.com/inkwellhq/inkwell-backend/pkg/logger"
)

// TokenVerifier validates a bearer token and returns the subject it was
// issued for.
type TokenVerifier interface {
	Verify(token string) (subject string, err error)
}

// ClerkVerifier checks RS256 session tokens against Clerk's public key.
type ClerkVerifier struct {
	key    *rsa.PublicKey
	issuer string
}

// NewClerkVerifier parses the PEM-encoded public key from config.
func NewClerkVerifier(cfg config.ClerkConfig) (*ClerkVerifier, error) {
	if strings.TrimSpace(cfg.JWTPublicKey) == "" {
		return nil, fmt.Errorf("clerk jwt public key required")
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.JWTPublicKey))
	if err != nil {
		return nil, fmt.Errorf("parse clerk public key: %w", err)
	}
	return &ClerkVerifier{key: key, issuer: cfg.Issuer}, nil
}

func (v *ClerkVerifier) Verify(token string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"RS256"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return "", err
	}
	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("token missing subject")
	}
	return subject, nil
}

// Auth rejects every request that does not carry a verifiable bearer token.
// The verified subject (Clerk user id) is seeded into the request context.
func Auth(verifier TokenVerifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			subject, err := verifier.Verify(token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithClerkUserID(r.Context(), subject)
			if logg != nil {
				ctx = logg.WithUserID(ctx, subject)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
