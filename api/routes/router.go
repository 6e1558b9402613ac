package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andrelucena/celebra-backend/api/controllers"
	"github.com/andrelucena/celebra-backend/api/middleware"
	"github.com/andrelucena/celebra-backend/internal/auth"
	"github.com/andrelucena/celebra-backend/internal/events"
	"github.com/andrelucena/celebra-backend/internal/gifts"
	"github.com/andrelucena/celebra-backend/internal/intents"
	"github.com/andrelucena/celebra-backend/internal/memberships"
	"github.com/andrelucena/celebra-backend/pkg/auth/session"
	"github.com/andrelucena/celebra-backend/pkg/config"
	"github.com/andrelucena/celebra-backend/pkg/logger"
	"github.com/andrelucena/celebra-backend/pkg/storage"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Sessions session.AccessSessionChecker
	Pingers  map[string]controllers.Pinger

	Auth        auth.Service
	Events      events.Service
	Gifts       gifts.Service
	Memberships memberships.Service
	Intents     intents.Service
	Blobs       *storage.Client
}

// NewRouter assembles the full route tree. Public reads stay anonymous so a
// shared registry link works without an account; everything that mutates
// event state sits behind auth.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	logg := d.Logger

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Config))
		r.Get("/ready", controllers.HealthReady(d.Config, logg, d.Pingers))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Anonymous surface.
		r.Group(func(r chi.Router) {
			r.Get("/event-types", controllers.EventTypeCatalog(d.Events, logg))
			r.Get("/events", controllers.EventSearch(d.Events, logg))
			r.Get("/events/by-slug/{slug}", controllers.EventBySlug(d.Events, logg))
			r.Get("/events/by-slug/{slug}/gifts", controllers.GiftListBySlug(d.Events, d.Gifts, logg))
			r.Get("/events/{eventId}/gifts", controllers.GiftList(d.Gifts, logg))

			r.Post("/auth/register", controllers.AuthRegister(d.Auth, logg))
			r.Post("/auth/login", controllers.AuthLogin(d.Auth, logg))

			r.With(middleware.OptionalAuth(logg, d.Config.JWT, d.Sessions)).
				Post("/intents", controllers.IntentStage(d.Intents, logg))

			// Anonymous callers get empty groups rather than a 401.
			r.With(middleware.OptionalAuth(logg, d.Config.JWT, d.Sessions)).
				Get("/me/events", controllers.MyEvents(d.Events, logg))
		})

		// Authenticated surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(logg, d.Config.JWT, d.Sessions))

			r.Post("/auth/logout", controllers.AuthLogout(d.Auth, logg))

			r.Post("/events", controllers.EventCreate(d.Events, logg))
			r.Patch("/events/{eventId}", controllers.EventUpdate(d.Events, logg))
			r.Delete("/events/{eventId}", controllers.EventDelete(d.Events, logg))
			r.Get("/events/{eventId}/membership", controllers.EventMembership(d.Memberships, logg))

			r.Post("/events/{eventId}/gifts", controllers.GiftCreate(d.Gifts, logg))
			r.Patch("/gifts/{giftId}", controllers.GiftUpdate(d.Gifts, logg))
			r.Delete("/gifts/{giftId}", controllers.GiftDelete(d.Gifts, logg))
			r.Post("/gifts/{giftId}/reserve", controllers.GiftReserve(d.Gifts, logg))

			r.Post("/intents/resume", controllers.IntentResume(d.Intents, logg))

			r.Post("/uploads/presign", controllers.UploadPresign(d.Blobs, logg))
		})
	})

	return r
}
