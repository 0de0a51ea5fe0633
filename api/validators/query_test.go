package validators

import (
	"net/http/httptest"
	"testing"

	"github.com/inkwellhq/inkwell-backend/pkg/enums"
	pkgerrors "github.com/inkwellhq/inkwell-backend/pkg/errors"
)

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/users?page=3", nil)
	value, err := ParseQueryInt(r, "page", 1, 1, 100)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if value != 3 {
		t.Fatalf("expected 3, got %d", value)
	}
}

func TestParseQueryInt_DefaultsWhenAbsent(t *testing.T) {
	r := httptest.NewRequest("GET", "/users", nil)
	value, err := ParseQueryInt(r, "page", 7, 1, 100)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if value != 7 {
		t.Fatalf("expected default 7, got %d", value)
	}
}

func TestParseQueryInt_RejectsOutOfRange(t *testing.T) {
	r := httptest.NewRequest("GET", "/users?limit=999", nil)
	_, err := ParseQueryInt(r, "limit", 20, 1, 100)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseQueryInt_RejectsNonNumeric(t *testing.T) {
	r := httptest.NewRequest("GET", "/users?page=abc", nil)
	_, err := ParseQueryInt(r, "page", 1, 1, 100)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseQueryEnum(t *testing.T) {
	r := httptest.NewRequest("GET", "/users?planType=core", nil)
	value, err := ParseQueryEnum(r, "planType", enums.PlanType.IsValid)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if value == nil || *value != enums.PlanTypeCore {
		t.Fatalf("expected core, got %v", value)
	}
}

func TestParseQueryEnum_NilWhenAbsent(t *testing.T) {
	r := httptest.NewRequest("GET", "/users", nil)
	value, err := ParseQueryEnum(r, "planType", enums.PlanType.IsValid)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if value != nil {
		t.Fatalf("expected nil, got %v", *value)
	}
}

func TestParseQueryEnum_RejectsUnknownValue(t *testing.T) {
	r := httptest.NewRequest("GET", "/users?planType=platinum", nil)
	_, err := ParseQueryEnum(r, "planType", enums.PlanType.IsValid)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
