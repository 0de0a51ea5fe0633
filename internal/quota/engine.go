package quota

import (
	"fmt"
	"time"

	"github.com/inkwellhq/inkwell-backend/pkg/db/models"
	"github.com/inkwellhq/inkwell-backend/pkg/enums"
)

// ResourceKind names a consumable resource.
type ResourceKind string

const (
	ResourceMessage  ResourceKind = "message"
	ResourceDocument ResourceKind = "document"
)

// IsValid reports whether the kind is known.
func (k ResourceKind) IsValid() bool {
	return k == ResourceMessage || k == ResourceDocument
}

// ParseResourceKind converts raw input into a ResourceKind.
func ParseResourceKind(value string) (ResourceKind, error) {
	kind := ResourceKind(value)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid resource kind %q", value)
	}
	return kind, nil
}

// ResetUsage grants the plan's full ceilings and zeroes both used counters.
func ResetUsage(u *models.User, plan enums.PlanType) {
	ceiling := CeilingFor(plan)
	u.MessagesUsed = 0
	u.DocumentsUsed = 0
	u.MessagesLeft = ceiling.Messages.Ptr()
	u.DocumentsLeft = ceiling.Documents.Ptr()
}

// ChangePlan moves the user to newPlan. Returns false when the plan is
// unchanged (no mutation happens). A paid plan activates the subscription for
// one calendar month; basic cancels it and clears both dates.
func ChangePlan(u *models.User, newPlan enums.PlanType, now time.Time) bool {
	if u.PlanType == newPlan {
		return false
	}

	u.PlanType = newPlan
	ResetUsage(u, newPlan)

	if newPlan.IsPaid() {
		end := now.AddDate(0, 1, 0)
		u.SubscriptionStatus = enums.SubscriptionStatusActive
		u.SubscriptionStart = &now
		u.SubscriptionEnd = &end
		return true
	}

	u.SubscriptionStatus = enums.SubscriptionStatusCanceled
	u.SubscriptionStart = nil
	u.SubscriptionEnd = nil
	return true
}

// OverrideSubscription is the administrative escape hatch: it sets plan and
// status directly, starts the period at now, and ends it durationMonths
// calendar months later. Usage resets to the new plan's ceilings.
func OverrideSubscription(u *models.User, plan enums.PlanType, status enums.SubscriptionStatus, durationMonths int, now time.Time) {
	end := now.AddDate(0, durationMonths, 0)
	u.PlanType = plan
	u.SubscriptionStatus = status
	u.SubscriptionStart = &now
	u.SubscriptionEnd = &end
	ResetUsage(u, plan)
}

// Downgrade expires the subscription: back to basic, unpaid, dates cleared,
// basic ceilings restored.
func Downgrade(u *models.User) {
	u.PlanType = enums.PlanTypeBasic
	u.SubscriptionStatus = enums.SubscriptionStatusUnpaid
	u.SubscriptionStart = nil
	u.SubscriptionEnd = nil
	ResetUsage(u, enums.PlanTypeBasic)
}

// DaysRemaining returns whole days until the subscription end: partial days
// round down, negatives floor at zero. Nil when the user has no end date.
func DaysRemaining(u *models.User, now time.Time) *int64 {
	if u.SubscriptionEnd == nil {
		return nil
	}
	remaining := u.SubscriptionEnd.Sub(now)
	days := int64(remaining.Hours() / 24)
	if days < 0 {
		days = 0
	}
	return &days
}
