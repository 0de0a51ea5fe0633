package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/inkwellhq/inkwell-backend/api/responses"
	clerkwebhook "github.com/inkwellhq/inkwell-backend/internal/webhooks/clerk"
	pkgerrors "github.com/inkwellhq/inkwell-backend/pkg/errors"
	"github.com/inkwellhq/inkwell-backend/pkg/logger"
)

const svixIDHeader = "svix-id"

// ClerkWebhookService dispatches verified identity events.
type ClerkWebhookService interface {
	HandleEvent(ctx context.Context, event *clerkwebhook.Event) error
}

// SignatureVerifier checks the svix signature headers against the payload.
type SignatureVerifier interface {
	Verify(payload []byte, headers http.Header) error
}

type clerkWebhookGuard interface {
	CheckAndMark(ctx context.Context, messageID string) (bool, error)
	Release(ctx context.Context, messageID string) error
}

// ClerkWebhook ingests Clerk identity events. Anything that fails signature
// verification is rejected before the payload is even decoded.
func ClerkWebhook(svc ClerkWebhookService, verifier SignatureVerifier, guard clerkWebhookGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if verifier == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "signature verifier unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		if err := verifier.Verify(payload, r.Header); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeWebhookAuth, err, "verify signature"))
			return
		}

		var event clerkwebhook.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode event"))
			return
		}

		messageID := r.Header.Get(svixIDHeader)
		if messageID != "" {
			alreadyProcessed, err := guard.CheckAndMark(ctx, messageID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if alreadyProcessed {
				responses.WriteSuccess(w, "event already processed", nil)
				return
			}
		}

		if err := svc.HandleEvent(ctx, &event); err != nil {
			if messageID != "" {
				_ = guard.Release(ctx, messageID)
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, "event processed", nil)
	}
}
