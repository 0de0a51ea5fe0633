package responses

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/inkwellhq/inkwell-backend/pkg/errors"
	"github.com/inkwellhq/inkwell-backend/pkg/types"
)

func TestWriteSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccessStatus(rec, http.StatusCreated, "user created", map[string]string{"id": "abc"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var envelope types.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Status != types.StatusSuccess {
		t.Fatalf("expected success status, got %q", envelope.Status)
	}
	if envelope.Message != "user created" {
		t.Fatalf("unexpected message %q", envelope.Message)
	}
	if envelope.Timestamp.IsZero() {
		t.Fatal("expected timestamp to be set")
	}
}

func TestWriteErrorMapsTypedCodes(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{pkgerrors.New(pkgerrors.CodeNotFound, "user not found"), http.StatusNotFound, "NOT_FOUND"},
		{pkgerrors.New(pkgerrors.CodeQuotaExceeded, "message quota exhausted"), http.StatusForbidden, "QUOTA_EXCEEDED"},
		{pkgerrors.New(pkgerrors.CodeWebhookAuth, "svix signature invalid"), http.StatusBadRequest, "WEBHOOK_AUTH_FAILED"},
		{context.DeadlineExceeded, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		WriteError(context.Background(), nil, rec, tt.err)
		if rec.Code != tt.status {
			t.Fatalf("err %v: expected status %d, got %d", tt.err, tt.status, rec.Code)
		}

		var envelope types.Envelope
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if envelope.Status != types.StatusError {
			t.Fatalf("expected error status, got %q", envelope.Status)
		}
		raw, err := json.Marshal(envelope.Data)
		if err != nil {
			t.Fatalf("re-marshal data: %v", err)
		}
		var detail types.ErrorDetail
		if err := json.Unmarshal(raw, &detail); err != nil {
			t.Fatalf("decode detail: %v", err)
		}
		if detail.Code != tt.code {
			t.Fatalf("expected code %s, got %s", tt.code, detail.Code)
		}
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, pkgerrors.New(pkgerrors.CodeInternal, "pg connection string leaked"))

	var envelope types.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Message != "internal server error" {
		t.Fatalf("internal errors must use the public message, got %q", envelope.Message)
	}
}
