package controllers

import (
	"context"
	"net/http"

	"github.com/inkwellhq/inkwell-backend/api/responses"
	pkgerrors "github.com/inkwellhq/inkwell-backend/pkg/errors"
	"github.com/inkwellhq/inkwell-backend/pkg/logger"
)

// DBPinger is satisfied by the GORM client.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Health reports liveness and verifies the database connection.
func Health(db DBPinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, "healthy", map[string]string{"status": "ok"})
	}
}
