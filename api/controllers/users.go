package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/inkwellhq/inkwell-backend/api/responses"
	"github.com/inkwellhq/inkwell-backend/api/validators"
	"github.com/inkwellhq/inkwell-backend/internal/quota"
	"github.com/inkwellhq/inkwell-backend/internal/users"
	"github.com/inkwellhq/inkwell-backend/pkg/enums"
	pkgerrors "github.com/inkwellhq/inkwell-backend/pkg/errors"
	"github.com/inkwellhq/inkwell-backend/pkg/logger"
	"github.com/inkwellhq/inkwell-backend/pkg/pagination"
)

const maxListLimit = 100

type createUserRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	OAuthID  string  `json:"oauthId" validate:"required"`
	Username *string `json:"username,omitempty" validate:"omitempty,min=1,max=64"`
	PlanType *string `json:"planType,omitempty" validate:"omitempty,oneof=basic core advanced pro"`
}

type updateUserRequest struct {
	Email              *string `json:"email,omitempty" validate:"omitempty,email"`
	Username           *string `json:"username,omitempty" validate:"omitempty,min=1,max=64"`
	PlanType           *string `json:"planType,omitempty" validate:"omitempty,oneof=basic core advanced pro"`
	SubscriptionStatus *string `json:"subscriptionStatus,omitempty" validate:"omitempty,oneof=active trialing past_due incomplete incomplete_expired canceled unpaid"`
	MessagesUsed       *int64  `json:"messagesUsed,omitempty" validate:"omitempty,min=0"`
	DocumentsUsed      *int64  `json:"documentsUsed,omitempty" validate:"omitempty,min=0"`
}

type overrideSubscriptionRequest struct {
	PlanType       string `json:"planType" validate:"required,oneof=basic core advanced pro"`
	Status         string `json:"status" validate:"required,oneof=active trialing past_due incomplete incomplete_expired canceled unpaid"`
	DurationMonths int    `json:"durationMonths" validate:"required,min=1,max=120"`
}

type consumeUsageRequest struct {
	Type   string `json:"type" validate:"required,oneof=message document"`
	Amount *int64 `json:"amount,omitempty" validate:"omitempty,min=1"`
}

// UserCreate registers a new account.
func UserCreate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := users.CreateUserInput{
			Email:       req.Email,
			ClerkUserID: req.OAuthID,
			Username:    trimmedPtr(req.Username),
		}
		if req.PlanType != nil {
			plan := enums.PlanType(*req.PlanType)
			input.PlanType = &plan
		}

		user, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, "user created", user)
	}
}

// UserList returns a paginated, optionally filtered user listing.
func UserList(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, maxListLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		plan, err := validators.ParseQueryEnum(r, "planType", enums.PlanType.IsValid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := validators.ParseQueryEnum(r, "status", enums.SubscriptionStatus.IsValid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), users.ListQuery{
			Plan:   plan,
			Status: status,
			Page:   pagination.Params{Page: page, Limit: limit},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "users listed", result)
	}
}

// UserGet fetches one user by internal id.
func UserGet(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "user found", user)
	}
}

// UserGetByEmail fetches one user by email address.
func UserGetByEmail(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := strings.TrimSpace(chi.URLParam(r, "email"))
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "email is required"))
			return
		}
		user, err := svc.GetByEmail(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "user found", user)
	}
}

// UserUpdate applies an allow-listed partial update.
func UserUpdate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateUserRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := users.UpdateUserInput{
			Email:         trimmedPtr(req.Email),
			Username:      trimmedPtr(req.Username),
			MessagesUsed:  req.MessagesUsed,
			DocumentsUsed: req.DocumentsUsed,
		}
		if req.PlanType != nil {
			plan := enums.PlanType(*req.PlanType)
			input.PlanType = &plan
		}
		if req.SubscriptionStatus != nil {
			status := enums.SubscriptionStatus(*req.SubscriptionStatus)
			input.SubscriptionStatus = &status
		}

		user, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "user updated", user)
	}
}

// UserOverrideSubscription sets plan, status, and period length directly.
func UserOverrideSubscription(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req overrideSubscriptionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.OverrideSubscription(r.Context(), id, users.OverrideInput{
			PlanType:       enums.PlanType(req.PlanType),
			Status:         enums.SubscriptionStatus(req.Status),
			DurationMonths: req.DurationMonths,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "subscription updated", user)
	}
}

// UserConsumeUsage atomically spends quota for one resource kind.
func UserConsumeUsage(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req consumeUsageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount := int64(1)
		if req.Amount != nil {
			amount = *req.Amount
		}

		user, err := svc.ConsumeQuota(r.Context(), id, quota.ResourceKind(req.Type), amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "usage recorded", user)
	}
}

// UserDelete removes the account row.
func UserDelete(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "user deleted", nil)
	}
}

// UserStats summarizes a user's subscription and usage state.
func UserStats(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		stats, err := svc.Stats(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "user stats", stats)
	}
}

func pathUserID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "userId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return id, nil
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := validators.SanitizeString(*value, 0)
	return &trimmed
}
