package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/kostasdel/banking-backend/internal/api/handlers"
	"github.com/kostasdel/banking-backend/internal/auth"
	"github.com/kostasdel/banking-backend/internal/config"
	"github.com/kostasdel/banking-backend/internal/metrics"
	"github.com/kostasdel/banking-backend/internal/middleware"
	"github.com/kostasdel/banking-backend/internal/models"
	"github.com/kostasdel/banking-backend/internal/services"
)

type RouterDeps struct {
	Cfg config.Config
	TM  *auth.TokenManager
	Cus *services.CustomerService
	Acc *services.AccountService
	Bal *services.BalanceService
	Trx *services.TransactionService
}

func NewRouter(d RouterDeps) http.Handler {
	ah := handlers.NewAuthHandler(d.TM, d.Cus)
	ch := handlers.NewCustomerHandler(d.Cus)
	acch := handlers.NewAccountHandler(d.Acc, d.Bal)
	bh := handlers.NewBalanceHandler(d.Bal, d.Acc)
	th := handlers.NewTransactionHandler(d.Trx, d.Acc)
	authn := middleware.NewAuthMiddleware(d.TM, d.Cfg.Env)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(d.Cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(middleware.HTTPMetrics)

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- auth ----------
		r.Post("/auth/register", ah.Register)
		r.Post("/auth/login", ah.Login)

		r.Group(func(r chi.Router) {
			r.Use(authn.Auth)

			// ---------- customers ----------
			r.Get("/customers/me", ch.Me)
			r.Put("/customers/{id}", ch.Update)
			r.Delete("/customers/{id}", ch.Delete)

			// ---------- accounts ----------
			r.Post("/accounts", acch.Create)
			r.Get("/accounts", acch.List)
			r.Get("/accounts/{id}", acch.Get)
			r.Get("/accounts/number/{number}", acch.GetByNumber)
			r.Patch("/accounts/{id}", acch.Update)
			r.Delete("/accounts/{id}", acch.Delete)
			r.Get("/accounts/{id}/balances", acch.Balances)
			r.Get("/accounts/{id}/transactions", th.ListByAccount)

			// ---------- balances ----------
			r.Post("/balances", bh.Create)
			r.Get("/balances/{id}", bh.Get)

			// ---------- transactions ----------
			r.Post("/transactions", th.Create)
			r.Get("/transactions/{id}", th.Get)
			r.Get("/transactions/reference/{reference}", th.GetByReference)
			r.Put("/transactions/{id}/status", th.UpdateStatus)

			// ---------- admin ----------
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Get("/customers", ch.List)
				r.Get("/customers/{id}", ch.Get)
				r.Put("/customers/{id}/role", ch.SetRole)
				r.Get("/balances", bh.List)
				r.Put("/balances/{id}/amount", bh.Adjust)
				r.Get("/transactions", th.ListByStatus)
			})
		})
	})

	return r
}
