package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/inkwellhq/inkwell-backend/pkg/enums"
)

// CreateUserInput holds the fields accepted when registering a user.
type CreateUserInput struct {
	Email       string
	ClerkUserID string
	Username    *string
	PlanType    *enums.PlanType
}

// UpdateUserInput enumerates the mutable fields of a user. Everything else is
// rejected at the validation layer.
type UpdateUserInput struct {
	Email              *string
	Username           *string
	PlanType           *enums.PlanType
	SubscriptionStatus *enums.SubscriptionStatus
	MessagesUsed       *int64
	DocumentsUsed      *int64
}

// IsEmpty reports whether no field is set.
func (u UpdateUserInput) IsEmpty() bool {
	return u.Email == nil && u.Username == nil && u.PlanType == nil &&
		u.SubscriptionStatus == nil && u.MessagesUsed == nil && u.DocumentsUsed == nil
}

// OverrideInput holds the administrative subscription override payload.
type OverrideInput struct {
	PlanType       enums.PlanType
	Status         enums.SubscriptionStatus
	DurationMonths int
}

// StatsDTO summarizes a user's usage and subscription state.
type StatsDTO struct {
	UserID             uuid.UUID                `json:"userId"`
	PlanType           enums.PlanType           `json:"planType"`
	SubscriptionStatus enums.SubscriptionStatus `json:"subscriptionStatus"`
	SubscriptionStart  *time.Time               `json:"subscriptionStart,omitempty"`
	SubscriptionEnd    *time.Time               `json:"subscriptionEnd,omitempty"`
	// DaysRemaining is whole days until subscriptionEnd, rounded down.
	DaysRemaining *int64 `json:"daysRemaining,omitempty"`
	MessagesUsed  int64  `json:"messagesUsed"`
	DocumentsUsed int64  `json:"documentsUsed"`
	MessagesLeft  *int64 `json:"messagesLeft"`
	DocumentsLeft *int64 `json:"documentsLeft"`
}
