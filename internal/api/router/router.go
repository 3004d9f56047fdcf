package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "brasero/docs" // registra o documento OpenAPI no swag
	"brasero/internal/api/admin"
	"brasero/internal/api/auth"
	"brasero/internal/api/cart"
	"brasero/internal/api/order"
	"brasero/internal/api/payment"
	"brasero/internal/api/product"
	"brasero/internal/domain"
	"brasero/internal/pkg/cache"
	"brasero/internal/pkg/logger"
	"brasero/internal/pkg/middleware"
)

// Handlers reúne os handlers já inicializados por injeção de dependências.
type Handlers struct {
	Auth    *auth.Handler
	Product *product.Handler
	Cart    *cart.Handler
	Order   *order.Handler
	Payment *payment.Handler
	Admin   *admin.Handler
}

// Limit é uma janela fixa do rate limiter.
type Limit struct {
	Max    int
	Period time.Duration
}

type Config struct {
	CORSOrigins       []string
	Global            Limit
	Auth              Limit
	Recovery          Limit
	SimulationEnabled bool
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(h Handlers, tokens middleware.TokenValidator, sessions middleware.SessionValidator, cacheClient cache.Client, cfg Config, log logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", PingHandler)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	requireAuth := middleware.NewAuthMiddleware(tokens, sessions, log)
	requireAdmin := middleware.PermissionMiddleware(log, domain.RoleAdmin)
	limit := func(scope string, l Limit) func(http.Handler) http.Handler {
		return middleware.RateLimiter(cacheClient, scope, l.Max, l.Period, log)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(limit("global", cfg.Global))

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(limit("auth", cfg.Auth))
				r.Post("/register", h.Auth.Register)
				r.Post("/login", h.Auth.Login)
			})
			r.Post("/refresh", h.Auth.Refresh)
			r.Post("/logout", h.Auth.Logout)

			r.Route("/recovery", func(r chi.Router) {
				r.Use(limit("recovery", cfg.Recovery))
				r.Post("/request", h.Auth.RecoveryRequest)
				r.Post("/validate", h.Auth.RecoveryValidate)
				r.Post("/reset", h.Auth.RecoveryReset)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout-all", h.Auth.LogoutAll)
				r.Get("/status", h.Auth.Status)
				r.Get("/perfil", h.Auth.GetProfile)
				r.Put("/perfil", h.Auth.UpdateProfile)
			})
		})

		r.Route("/productos", func(r chi.Router) {
			r.Get("/", h.Product.List)
			r.Get("/{id}", h.Product.Get)
		})

		r.Route("/carrito", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", h.Cart.Get)
			r.Delete("/", h.Cart.Clear)
			r.Get("/resumen", h.Cart.Summary)
			r.Post("/items", h.Cart.SetItem)
			r.Delete("/items/{productId}", h.Cart.RemoveItem)
		})

		r.Route("/pedidos", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", h.Order.ListMine)
			r.Post("/confirmar", h.Order.Confirm)
			r.Get("/confirmacion/{id}", h.Order.GetConfirmation)
		})

		r.Route("/pagos", func(r chi.Router) {
			// Retorno do navegador vindo do Webpay: sem Bearer token.
			r.Get("/confirmar-webpay", h.Payment.Callback)
			r.Post("/confirmar-webpay", h.Payment.Callback)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/iniciar", h.Payment.Initiate)
				if cfg.SimulationEnabled {
					r.Post("/simular", h.Payment.Simulate)
				}
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)

			r.Get("/productos", h.Product.AdminList)
			r.Post("/productos", h.Product.Create)
			r.Put("/productos/{id}", h.Product.Update)
			r.Delete("/productos/{id}", h.Product.Delete)

			r.Get("/pedidos", h.Order.AdminList)
			r.Get("/pedidos/{id}", h.Order.AdminGet)
			r.Put("/pedidos/{id}/estado", h.Order.ChangeStatus)

			r.Post("/usuarios/admin", h.Admin.CreateAdmin)
			r.Put("/usuarios/{id}/activo", h.Admin.SetActive)
		})
	})

	return r
}

// PingHandler é o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
