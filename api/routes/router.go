package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ayuoyi/AsiliConnect/api/controllers"
	"github.com/Ayuoyi/AsiliConnect/api/middleware"
	"github.com/Ayuoyi/AsiliConnect/internal/assistant"
	"github.com/Ayuoyi/AsiliConnect/internal/cart"
	"github.com/Ayuoyi/AsiliConnect/internal/notifications"
	"github.com/Ayuoyi/AsiliConnect/internal/products"
	"github.com/Ayuoyi/AsiliConnect/pkg/ai"
	"github.com/Ayuoyi/AsiliConnect/pkg/config"
	"github.com/Ayuoyi/AsiliConnect/pkg/kv"
	"github.com/Ayuoyi/AsiliConnect/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	store kv.Store,
	cartService cart.Service,
	notificationsService notifications.Service,
	productsService products.Service,
	assistantManager *assistant.Manager,
	provider *ai.Provider,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, store))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SessionID(logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(cartService, logg))
			r.Post("/", controllers.CartAdd(cartService, logg))
			r.Patch("/{productId}", controllers.CartUpdate(cartService, logg))
			r.Delete("/{productId}", controllers.CartRemove(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.NotificationsList(notificationsService, logg))
			r.Post("/{id}/read", controllers.NotificationMarkRead(notificationsService, logg))
			r.Post("/read-all", controllers.NotificationsMarkAllRead(notificationsService, logg))
			r.Delete("/", controllers.NotificationsClear(notificationsService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(productsService, logg))
			r.Post("/", controllers.ProductsPublish(productsService, logg))
		})

		if assistantManager != nil {
			r.Route("/assistant/sessions", func(r chi.Router) {
				r.Post("/", controllers.AssistantSessionCreate(assistantManager, logg))
				r.Get("/{id}", controllers.AssistantSessionGet(assistantManager, logg))
				r.Delete("/{id}", controllers.AssistantSessionRemove(assistantManager, logg))
				r.Post("/{id}/messages", controllers.AssistantSessionSubmit(assistantManager, logg))
			})
		}
	})

	if provider != nil {
		r.Route("/api/ai", func(r chi.Router) {
			r.Post("/describe", controllers.AIDescribe(provider, logg))
			r.Post("/chat", controllers.AIChat(provider, logg))
		})
	}

	return r
}
