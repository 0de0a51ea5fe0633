package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkwellhq/inkwell-backend/internal/quota"
	"github.com/inkwellhq/inkwell-backend/pkg/db/models"
	"github.com/inkwellhq/inkwell-backend/pkg/enums"
	"github.com/inkwellhq/inkwell-backend/pkg/pagination"
)

// Repository exposes user persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListQuery filters the user listing.
type ListQuery struct {
	Plan   *enums.PlanType
	Status *enums.SubscriptionStatus
	Page   pagination.Params
}

// Create inserts a new user row, assigning the id client-side so callers
// always get it back.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID loads a user by internal id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByClerkID loads a user by the external identity provider's id.
func (r *Repository) FindByClerkID(ctx context.Context, clerkUserID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "clerk_user_id = ?", clerkUserID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns the filtered page plus the total match count.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]models.User, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.User{})
	if q.Plan != nil {
		base = base.Where("plan_type = ?", *q.Plan)
	}
	if q.Status != nil {
		base = base.Where("subscription_status = ?", *q.Status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := q.Page.Normalize()
	var rows []models.User
	if err := base.
		Order("created_at DESC").
		Offset(q.Page.Offset()).
		Limit(page.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Update persists every field of the provided user.
func (r *Repository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// Delete removes the user row. Returns gorm.ErrRecordNotFound when no row
// matched.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByClerkID removes the user row matched by external identity.
func (r *Repository) DeleteByClerkID(ctx context.Context, clerkUserID string) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "clerk_user_id = ?", clerkUserID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ConsumeUsage decrements the remaining quota and bumps the used counter in a
// single conditional UPDATE. The WHERE predicate makes the read-modify-write
// atomic: concurrent consumers can never drive a finite counter below zero.
// Returns false when no row qualified (missing user or exhausted quota).
func (r *Repository) ConsumeUsage(ctx context.Context, id uuid.UUID, kind quota.ResourceKind, amount int64) (bool, error) {
	leftColumn := "messages_left"
	usedColumn := "messages_used"
	if kind == quota.ResourceDocument {
		leftColumn = "documents_left"
		usedColumn = "documents_used"
	}

	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Where(leftColumn+" IS NULL OR "+leftColumn+" >= ?", amount).
		Updates(map[string]any{
			usedColumn: gorm.Expr(usedColumn+" + ?", amount),
			leftColumn: gorm.Expr(
				"CASE WHEN "+leftColumn+" IS NULL THEN NULL ELSE "+leftColumn+" - ? END", amount),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListExpired returns users whose subscription end has passed and whose
// status still needs the expiry downgrade.
func (r *Repository) ListExpired(ctx context.Context, now time.Time, limit int) ([]models.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Where("subscription_end IS NOT NULL AND subscription_end < ?", now).
		Where("subscription_status <> ?", enums.SubscriptionStatusCanceled).
		Order("subscription_end ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ListActive returns active users with ids greater than afterID, in id
// order. Callers page through the whole set by feeding back the last id.
func (r *Repository) ListActive(ctx context.Context, afterID uuid.UUID, limit int) ([]models.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Where("subscription_status = ?", enums.SubscriptionStatusActive).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ListActiveEndingBetween returns active users whose subscription ends inside
// the window [from, to].
func (r *Repository) ListActiveEndingBetween(ctx context.Context, from, to time.Time, limit int) ([]models.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Where("subscription_status = ?", enums.SubscriptionStatusActive).
		Where("subscription_end IS NOT NULL AND subscription_end >= ? AND subscription_end <= ?", from, to).
		Order("subscription_end ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
