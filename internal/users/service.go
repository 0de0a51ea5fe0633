package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkwellhq/inkwell-backend/internal/quota"
	"github.com/inkwellhq/inkwell-backend/pkg/db"
	"github.com/inkwellhq/inkwell-backend/pkg/db/models"
	"github.com/inkwellhq/inkwell-backend/pkg/enums"
	pkgerrors "github.com/inkwellhq/inkwell-backend/pkg/errors"
	"github.com/inkwellhq/inkwell-backend/pkg/pagination"
)

type repository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByClerkID(ctx context.Context, clerkUserID string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, q ListQuery) ([]models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByClerkID(ctx context.Context, clerkUserID string) error
	ConsumeUsage(ctx context.Context, id uuid.UUID, kind quota.ResourceKind, amount int64) (bool, error)
}

// Service exposes account, plan, and quota operations.
type Service interface {
	Create(ctx context.Context, input CreateUserInput) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByClerkID(ctx context.Context, clerkUserID string) (*models.User, error)
	List(ctx context.Context, q ListQuery) (*pagination.Page[models.User], error)
	Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*models.User, error)
	OverrideSubscription(ctx context.Context, id uuid.UUID, input OverrideInput) (*models.User, error)
	ConsumeQuota(ctx context.Context, id uuid.UUID, kind quota.ResourceKind, amount int64) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByClerkID(ctx context.Context, clerkUserID string) error
	Stats(ctx context.Context, id uuid.UUID) (*StatsDTO, error)
}

type service struct {
	repo repository
	now  func() time.Time
}

// NewService builds the users service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *service) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(input.ClerkUserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "oauthId is required")
	}

	plan := enums.PlanTypeBasic
	if input.PlanType != nil {
		if !input.PlanType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid plan type")
		}
		plan = *input.PlanType
	}

	user := &models.User{
		ClerkUserID:        strings.TrimSpace(input.ClerkUserID),
		Email:              email,
		Username:           input.Username,
		PlanType:           enums.PlanTypeBasic,
		SubscriptionStatus: enums.SubscriptionStatusUnpaid,
	}
	quota.ResetUsage(user, enums.PlanTypeBasic)
	if plan != enums.PlanTypeBasic {
		quota.ChangePlan(user, plan, s.now())
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email or oauthId already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return user, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return user, nil
}

func (s *service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return user, nil
}

func (s *service) GetByClerkID(ctx context.Context, clerkUserID string) (*models.User, error) {
	user, err := s.repo.FindByClerkID(ctx, strings.TrimSpace(clerkUserID))
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return user, nil
}

func (s *service) List(ctx context.Context, q ListQuery) (*pagination.Page[models.User], error) {
	rows, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	page := pagination.NewPage(rows, q.Page, total)
	return &page, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*models.User, error) {
	if input.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no updatable fields provided")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err)
	}

	if input.Email != nil {
		user.Email = strings.TrimSpace(strings.ToLower(*input.Email))
	}
	if input.Username != nil {
		user.Username = input.Username
	}
	if input.PlanType != nil {
		if !input.PlanType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid plan type")
		}
		quota.ChangePlan(user, *input.PlanType, s.now())
	}
	if input.SubscriptionStatus != nil {
		if !input.SubscriptionStatus.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid subscription status")
		}
		user.SubscriptionStatus = *input.SubscriptionStatus
	}
	if input.MessagesUsed != nil {
		user.MessagesUsed = *input.MessagesUsed
	}
	if input.DocumentsUsed != nil {
		user.DocumentsUsed = *input.DocumentsUsed
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return user, nil
}

func (s *service) OverrideSubscription(ctx context.Context, id uuid.UUID, input OverrideInput) (*models.User, error) {
	if !input.PlanType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid plan type")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid subscription status")
	}
	if input.DurationMonths < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "durationMonths must be at least 1")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err)
	}

	quota.OverrideSubscription(user, input.PlanType, input.Status, input.DurationMonths, s.now())

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "override subscription")
	}
	return user, nil
}

func (s *service) ConsumeQuota(ctx context.Context, id uuid.UUID, kind quota.ResourceKind, amount int64) (*models.User, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid usage type")
	}
	if amount < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be at least 1")
	}

	consumed, err := s.repo.ConsumeUsage(ctx, id, kind, amount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume quota")
	}
	if !consumed {
		// Either the user does not exist or the quota ran out; one extra
		// read tells them apart.
		if _, lookupErr := s.repo.FindByID(ctx, id); lookupErr != nil {
			return nil, mapLookupErr(lookupErr)
		}
		return nil, pkgerrors.New(pkgerrors.CodeQuotaExceeded,
			fmt.Sprintf("insufficient %s quota", kind)).
			WithDetails(map[string]any{"type": string(kind), "amount": amount})
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return user, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapLookupErr(err)
	}
	return nil
}

func (s *service) DeleteByClerkID(ctx context.Context, clerkUserID string) error {
	if err := s.repo.DeleteByClerkID(ctx, strings.TrimSpace(clerkUserID)); err != nil {
		return mapLookupErr(err)
	}
	return nil
}

func (s *service) Stats(ctx context.Context, id uuid.UUID) (*StatsDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return &StatsDTO{
		UserID:             user.ID,
		PlanType:           user.PlanType,
		SubscriptionStatus: user.SubscriptionStatus,
		SubscriptionStart:  user.SubscriptionStart,
		SubscriptionEnd:    user.SubscriptionEnd,
		DaysRemaining:      quota.DaysRemaining(user, s.now()),
		MessagesUsed:       user.MessagesUsed,
		DocumentsUsed:      user.DocumentsUsed,
		MessagesLeft:       user.MessagesLeft,
		DocumentsLeft:      user.DocumentsLeft,
	}, nil
}

func mapLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query user")
}
