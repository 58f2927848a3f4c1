package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/saboarena/sabo-platform/handlers"
	"github.com/saboarena/sabo-platform/middleware"
	"github.com/saboarena/sabo-platform/models"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	clubHandler *handlers.ClubHandler,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	rankingHandler *handlers.RankingHandler,
	challengeHandler *handlers.ChallengeHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)
	adminOnly := middleware.Authorize(models.RoleAdmin)
	organizers := middleware.Authorize(models.RoleClubAdmin, models.RoleAdmin)

	router.Get("/swagger/*", httpSwagger.Handler())

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/users", func(r chi.Router) {
		r.Get("/{userID}", userHandler.GetByID)
		r.Get("/{userID}/ranking", rankingHandler.GetPlayerRanking)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", userHandler.GetMe)
			r.Put("/me", userHandler.UpdateProfile)
			r.Post("/me/avatar", userHandler.UploadAvatar)
		})
	})

	router.Route("/clubs", func(r chi.Router) {
		r.Get("/", clubHandler.List)
		r.Get("/{clubID}", clubHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", clubHandler.Create)
			r.Put("/{clubID}", clubHandler.Update)
			r.Post("/{clubID}/logo", clubHandler.UploadLogo)
			r.Delete("/{clubID}", clubHandler.Delete)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.GetByID)
		r.Get("/{tournamentID}/matches", matchHandler.ListByTournament)
		r.Get("/{tournamentID}/bracket", matchHandler.GetBracket)
		r.Get("/{tournamentID}/progress", matchHandler.GetProgress)
		r.Get("/{tournamentID}/registrations", tournamentHandler.ListRegistrations)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{tournamentID}/register", tournamentHandler.Register)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizers)

			r.Post("/", tournamentHandler.Create)
			r.Patch("/{tournamentID}/status", tournamentHandler.UpdateStatus)
			r.Post("/{tournamentID}/bracket", tournamentHandler.GenerateBracket)
			r.Post("/{tournamentID}/complete", matchHandler.CompleteTournament)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)
			r.Post("/{tournamentID}/bracket/repair", tournamentHandler.RepairBracket)
		})
	})

	router.Route("/registrations", func(r chi.Router) {
		r.Use(authenticate)
		r.Delete("/{registrationID}", tournamentHandler.WithdrawRegistration)

		r.Group(func(r chi.Router) {
			r.Use(organizers)
			r.Post("/{registrationID}/confirm", tournamentHandler.ConfirmRegistration)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/{matchID}/score", matchHandler.SubmitScore)
	})

	router.Get("/rankings", rankingHandler.Leaderboard)

	router.Route("/challenges", func(r chi.Router) {
		r.Get("/open", challengeHandler.ListOpen)
		r.Get("/room/{roomCode}", challengeHandler.GetByRoomCode)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", challengeHandler.Create)
			r.Get("/mine", challengeHandler.ListMine)
			r.Post("/{challengeID}/accept", challengeHandler.Accept)
			r.Post("/{challengeID}/decline", challengeHandler.Decline)
			r.Post("/{challengeID}/result", challengeHandler.SubmitResult)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
