package enums

import "fmt"

// PlanType names a service tier. The tier determines quota ceilings.
type PlanType string

const (
	PlanTypeBasic    PlanType = "basic"
	PlanTypeCore     PlanType = "core"
	PlanTypeAdvanced PlanType = "advanced"
	PlanTypePro      PlanType = "pro"
)

var validPlanTypes = []PlanType{
	PlanTypeBasic,
	PlanTypeCore,
	PlanTypeAdvanced,
	PlanTypePro,
}

// String implements fmt.Stringer.
func (p PlanType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PlanType.
func (p PlanType) IsValid() bool {
	for _, candidate := range validPlanTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsPaid reports whether the tier is a paying one.
func (p PlanType) IsPaid() bool {
	return p.IsValid() && p != PlanTypeBasic
}

// ParsePlanType converts raw input into a PlanType.
func ParsePlanType(value string) (PlanType, error) {
	for _, candidate := range validPlanTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan type %q", value)
}
