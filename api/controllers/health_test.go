package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

func TestHealth_OK(t *testing.T) {
	handler := Health(&fakePinger{}, testControllerLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "success") {
		t.Fatalf("expected success envelope: %s", rec.Body.String())
	}
}

func TestHealth_DatabaseDown(t *testing.T) {
	handler := Health(&fakePinger{err: errors.New("connection refused")}, testControllerLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "DEPENDENCY_ERROR") {
		t.Fatalf("expected dependency error code: %s", rec.Body.String())
	}
}
