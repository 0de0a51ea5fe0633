package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkwellhq/inkwell-backend/api/controllers"
	webhookcontrollers "github.com/inkwellhq/inkwell-backend/api/controllers/webhooks"
	"github.com/inkwellhq/inkwell-backend/api/middleware"
	"github.com/inkwellhq/inkwell-backend/api/responses"
	"github.com/inkwellhq/inkwell-backend/internal/users"
	clerkwebhook "github.com/inkwellhq/inkwell-backend/internal/webhooks/clerk"
	"github.com/inkwellhq/inkwell-backend/pkg/config"
	pkgerrors "github.com/inkwellhq/inkwell-backend/pkg/errors"
	"github.com/inkwellhq/inkwell-backend/pkg/logger"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            controllers.DBPinger
	Users         users.Service
	TokenVerifier middleware.TokenVerifier
	ClerkWebhook  webhookcontrollers.ClerkWebhookService
	ClerkVerifier webhookcontrollers.SignatureVerifier
	WebhookGuard  *clerkwebhook.IdempotencyGuard
}

// NewRouter assembles the chi router: open health and webhook endpoints,
// token-guarded /api/v1 surface, and a structured 400 for anything else.
func NewRouter(params RouterParams) http.Handler {
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(params.Config.CORS),
	)

	r.Get("/health", controllers.Health(params.DB, logg))

	r.Route("/api/userWebhook", func(r chi.Router) {
		r.Post("/clerk", webhookcontrollers.ClerkWebhook(params.ClerkWebhook, params.ClerkVerifier, params.WebhookGuard, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(params.TokenVerifier, logg))

		r.Route("/users", func(r chi.Router) {
			r.Post("/", controllers.UserCreate(params.Users, logg))
			r.Get("/", controllers.UserList(params.Users, logg))
			r.Get("/email/{email}", controllers.UserGetByEmail(params.Users, logg))
			r.Route("/{userId}", func(r chi.Router) {
				r.Get("/", controllers.UserGet(params.Users, logg))
				r.Patch("/", controllers.UserUpdate(params.Users, logg))
				r.Delete("/", controllers.UserDelete(params.Users, logg))
				r.Patch("/subscription", controllers.UserOverrideSubscription(params.Users, logg))
				r.Patch("/usage", controllers.UserConsumeUsage(params.Users, logg))
				r.Get("/stats", controllers.UserStats(params.Users, logg))
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid API version"))
	})

	return r
}
