package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/snapfest/luckydraw/handlers"
	"github.com/snapfest/luckydraw/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	entryHandler *handlers.EntryHandler,
	configHandler *handlers.ConfigHandler,
	drawHandler *handlers.DrawHandler,
	statsHandler *handlers.StatsHandler,
	webSocketHandler *handlers.WebSocketHandler,
	jwtSecret []byte,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Route("/events/{eventID}", func(r chi.Router) {
		// Публичные маршруты: регистрация участия (вызывается пайплайном
		// загрузки фото) и статистика для дашборда.
		r.Post("/entries", entryHandler.RegisterHandler)
		r.Get("/stats", statsHandler.GetStatsHandler)

		// Маршруты организатора.
		r.Route("/draw", func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.Authorize("organizer", "admin"))

			r.Put("/config", configHandler.UpsertHandler)
			r.Get("/config", configHandler.GetActiveHandler)
			r.Post("/execute", drawHandler.ExecuteHandler)
			r.Get("/results", drawHandler.ListResultsHandler)
			r.Get("/results/latest", drawHandler.LatestResultHandler)
			r.Get("/results/{resultID}", drawHandler.ResultByIDHandler)
			r.Post("/winners/revoke", drawHandler.RevokeWinnerHandler)
		})
	})

	router.Get("/ws/events/{eventID}", webSocketHandler.ServeWs)
}
