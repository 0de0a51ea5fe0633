package quota

import (
	"fmt"

	"github.com/inkwellhq/inkwell-backend/pkg/enums"
)

// Limit is a quota ceiling: either a finite count or unlimited. It replaces
// the usual -1 sentinel so arithmetic can never be attempted on a magic value.
type Limit struct {
	n         int64
	unlimited bool
}

// Finite builds a bounded limit.
func Finite(n int64) Limit {
	if n < 0 {
		n = 0
	}
	return Limit{n: n}
}

// Unlimited is the ceiling of plans without a cap.
var Unlimited = Limit{unlimited: true}

// IsUnlimited reports whether the limit has no cap.
func (l Limit) IsUnlimited() bool {
	return l.unlimited
}

// Value returns the finite ceiling. Zero for unlimited limits; callers must
// check IsUnlimited first.
func (l Limit) Value() int64 {
	if l.unlimited {
		return 0
	}
	return l.n
}

// Ptr returns the database representation: nil for unlimited, the count
// otherwise.
func (l Limit) Ptr() *int64 {
	if l.unlimited {
		return nil
	}
	n := l.n
	return &n
}

// String implements fmt.Stringer.
func (l Limit) String() string {
	if l.unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("%d", l.n)
}

// Ceiling holds the per-period grant of both consumable resources.
type Ceiling struct {
	Messages  Limit
	Documents Limit
}

var planCeilings = map[enums.PlanType]Ceiling{
	enums.PlanTypeBasic:    {Messages: Finite(20), Documents: Finite(0)},
	enums.PlanTypeCore:     {Messages: Finite(100), Documents: Finite(10)},
	enums.PlanTypeAdvanced: {Messages: Finite(1000), Documents: Finite(100)},
	enums.PlanTypePro:      {Messages: Unlimited, Documents: Unlimited},
}

// CeilingFor returns the quota ceilings granted by the plan. Unknown plans
// fall back to the basic tier.
func CeilingFor(plan enums.PlanType) Ceiling {
	if ceiling, ok := planCeilings[plan]; ok {
		return ceiling
	}
	return planCeilings[enums.PlanTypeBasic]
}
