package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/inkwellhq/inkwell-backend/pkg/errors"
)

// ParseQueryEnum returns the query value as T when it passes the validity
// check, nil when the parameter is absent.
func ParseQueryEnum[T ~string](r *http.Request, key string, valid func(T) bool) (*T, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value := T(raw)
	if !valid(value) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter has an unknown value").WithDetails(map[string]any{"field": key, "value": raw})
	}
	return &value, nil
}

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}
