package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/tournament-tracker/docs"
	"github.com/Dosada05/tournament-tracker/handlers"
	"github.com/Dosada05/tournament-tracker/middleware"
)

type Handlers struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	Tournament *handlers.TournamentHandler
	Player     *handlers.PlayerHandler
	Match      *handlers.MatchHandler
	WebSocket  *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	Logger         *slog.Logger
}

func SetupRoutes(r chi.Router, h Handlers, opts Options) {
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticator(opts.JWTSecret, opts.Logger)

	r.Get("/health_check", h.Health.HealthCheck)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// WebSocket connections are long-lived and must not get the request timeout.
	r.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	r.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Route("/users", func(r chi.Router) {
			r.Post("/signup", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.ListTournaments)
			r.With(authenticate).Post("/", h.Tournament.CreateTournament)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/courts", h.Tournament.ListCourts)
				r.Get("/queue", h.Tournament.ListQueue)
				r.Get("/matches", h.Tournament.ListMatches)

				r.Group(func(r chi.Router) {
					r.Use(authenticate)
					r.Post("/courts", h.Tournament.AddCourt)
					r.Post("/export", h.Tournament.ExportResults)
				})
			})
		})

		r.Route("/players", func(r chi.Router) {
			r.With(authenticate).Post("/", h.Player.CreatePlayer)
			r.Get("/{playerID}", h.Player.GetPlayer)
		})

		r.Route("/matches", func(r chi.Router) {
			r.With(authenticate).Post("/", h.Match.CreateMatch)

			r.Route("/{matchID}", func(r chi.Router) {
				r.Get("/", h.Match.GetMatch)

				r.Group(func(r chi.Router) {
					r.Use(authenticate)
					r.Post("/registrations", h.Match.RegisterPlayer)
					r.Post("/start", h.Match.StartMatch)
					r.Post("/result", h.Match.FinishMatch)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"the requested resource could not be found"}` + "\n"))
	})
}
