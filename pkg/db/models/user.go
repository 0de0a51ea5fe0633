package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/inkwellhq/inkwell-backend/pkg/enums"
)

// User is the sole persisted entity: account identity plus plan,
// subscription, and quota state.
//
// MessagesLeft/DocumentsLeft are nullable on purpose: a NULL counter means
// the plan grants unlimited usage of that resource. Finite counters only
// ever decrease between resets.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClerkUserID string    `gorm:"column:clerk_user_id;type:text;not null;uniqueIndex" json:"oauthId"`
	Email       string    `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Username    *string   `gorm:"column:username" json:"username,omitempty"`

	PlanType           enums.PlanType           `gorm:"column:plan_type;type:text;not null;default:'basic'" json:"planType"`
	SubscriptionStatus enums.SubscriptionStatus `gorm:"column:subscription_status;type:text;not null;default:'unpaid'" json:"subscriptionStatus"`
	SubscriptionStart  *time.Time               `gorm:"column:subscription_start" json:"subscriptionStart,omitempty"`
	SubscriptionEnd    *time.Time               `gorm:"column:subscription_end" json:"subscriptionEnd,omitempty"`

	MessagesUsed  int64  `gorm:"column:messages_used;not null;default:0" json:"messagesUsed"`
	DocumentsUsed int64  `gorm:"column:documents_used;not null;default:0" json:"documentsUsed"`
	MessagesLeft  *int64 `gorm:"column:messages_left" json:"messagesLeft"`
	DocumentsLeft *int64 `gorm:"column:documents_left" json:"documentsLeft"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
