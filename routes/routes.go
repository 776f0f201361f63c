package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shuttleclub/doubles-server/handlers"
)

func SetupRoutes(
	router *chi.Mux,
	tournamentHandler *handlers.TournamentHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Route("/tournaments", func(r chi.Router) {
		r.Post("/", tournamentHandler.CreateHandler)
		r.Get("/active", tournamentHandler.GetActiveHandler)
		r.Get("/history", tournamentHandler.HistoryHandler)
		r.Get("/by-code/{accessCode}", tournamentHandler.GetByCodeHandler)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", tournamentHandler.GetByIDHandler)
			r.Get("/rankings", tournamentHandler.RankingsHandler)
			r.Post("/score", tournamentHandler.SubmitScoreHandler)
			r.Post("/players", tournamentHandler.RenamePlayersHandler)
			r.Post("/finalize", tournamentHandler.FinalizeHandler)
			r.Delete("/", tournamentHandler.DeleteHandler)
		})
	})

	router.Get("/ws", webSocketHandler.ServeWs)
}
