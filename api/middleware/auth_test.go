package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/inkwellhq/inkwell-backend/pkg/config"
	"github.com/inkwellhq/inkwell-backend/pkg/logger"
)

func testAuthLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel})
}

func generateKeyPair(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return key, string(pemBytes)
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newAuthHandler(t *testing.T, publicKey, issuer string) (http.Handler, *string) {
	t.Helper()
	verifier, err := NewClerkVerifier(config.ClerkConfig{JWTPublicKey: publicKey, Issuer: issuer})
	if err != nil {
		t.Fatalf("setup verifier: %v", err)
	}

	var seenSubject string
	handler := Auth(verifier, testAuthLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenSubject = ClerkUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	return handler, &seenSubject
}

func TestAuth_ValidTokenSeedsContext(t *testing.T) {
	key, publicPEM := generateKeyPair(t)
	handler, subject := newAuthHandler(t, publicPEM, "https://clerk.example.com")

	token := signToken(t, key, jwt.MapClaims{
		"sub": "user_2abc",
		"iss": "https://clerk.example.com",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if *subject != "user_2abc" {
		t.Fatalf("expected subject in context, got %q", *subject)
	}
}

func TestAuth_MissingHeaderRejected(t *testing.T) {
	_, publicPEM := generateKeyPair(t)
	handler, _ := newAuthHandler(t, publicPEM, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_WrongKeyRejected(t *testing.T) {
	_, publicPEM := generateKeyPair(t)
	otherKey, _ := generateKeyPair(t)
	handler, _ := newAuthHandler(t, publicPEM, "")

	token := signToken(t, otherKey, jwt.MapClaims{
		"sub": "user_2abc",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_ExpiredTokenRejected(t *testing.T) {
	key, publicPEM := generateKeyPair(t)
	handler, _ := newAuthHandler(t, publicPEM, "")

	token := signToken(t, key, jwt.MapClaims{
		"sub": "user_2abc",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_WrongIssuerRejected(t *testing.T) {
	key, publicPEM := generateKeyPair(t)
	handler, _ := newAuthHandler(t, publicPEM, "https://clerk.example.com")

	token := signToken(t, key, jwt.MapClaims{
		"sub": "user_2abc",
		"iss": "https://evil.example.com",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_TokenWithoutSubjectRejected(t *testing.T) {
	key, publicPEM := generateKeyPair(t)
	handler, _ := newAuthHandler(t, publicPEM, "")

	token := signToken(t, key, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
