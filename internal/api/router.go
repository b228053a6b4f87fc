package api

import (
	"net/http"
	"time"

	"codequest/internal/api/handler"
	"codequest/internal/api/middleware"
	"codequest/internal/app/service"
	"codequest/internal/common"
	"codequest/internal/common/security"
	"codequest/internal/realtime"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

type Services struct {
	Auth         *service.AuthService
	Battle       *service.BattleService
	Track        *service.TrackService
	Team         *service.TeamService
	User         *service.UserService
	Follow       *service.FollowService
	Notification *service.NotificationService
	Leaderboard  *service.LeaderboardService
	Broker       realtime.Broker
}

type RateLimits struct {
	AuthPerMinute   int
	SubmitPerMinute int
}

func NewRouter(svc Services, limits RateLimits) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chiMiddleware.Recoverer)

	// Browsers cannot set headers on a websocket handshake, so the token may also
	// arrive as a cookie or a ?jwt= query value.
	r.Use(jwtauth.Verify(security.TokenAuth, jwtauth.TokenFromHeader, jwtauth.TokenFromCookie, jwtauth.TokenFromQuery))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	authLimit := middleware.RateLimit(middleware.NewIPRateLimiter(limits.AuthPerMinute, limits.AuthPerMinute/2))
	submitLimit := middleware.RateLimit(middleware.NewIPRateLimiter(limits.SubmitPerMinute, limits.SubmitPerMinute/3))

	r.Route("/api/v1", func(v1 chi.Router) {
		// Long-lived websocket streams stay outside the request timeout.
		eventsHandler := handler.NewEventsHandler(svc.Broker, svc.Battle, nil)
		v1.Route("/events", eventsHandler.RegisterRoutes)

		v1.Group(func(api chi.Router) {
			api.Use(chiMiddleware.Timeout(60 * time.Second))

			authHandler := handler.NewAuthHandler(svc.Auth)
			api.With(authLimit).Route("/auth", authHandler.RegisterRoutes)

			battleHandler := handler.NewBattleHandler(svc.Battle, submitLimit)
			api.Route("/battles", battleHandler.RegisterRoutes)

			trackHandler := handler.NewTrackHandler(svc.Track)
			api.Route("/tracks", trackHandler.RegisterRoutes)
			api.Route("/progress", trackHandler.RegisterProgressRoutes)

			teamHandler := handler.NewTeamHandler(svc.Team)
			api.Route("/teams", teamHandler.RegisterRoutes)
			api.Route("/invitations", teamHandler.RegisterInvitationRoutes)

			userHandler := handler.NewUserHandler(svc.User, svc.Follow)
			api.Route("/me", userHandler.RegisterMeRoutes)
			api.Route("/users", userHandler.RegisterRoutes)

			notificationHandler := handler.NewNotificationHandler(svc.Notification)
			api.Route("/notifications", notificationHandler.RegisterRoutes)

			leaderboardHandler := handler.NewLeaderboardHandler(svc.Leaderboard)
			api.Route("/leaderboard", leaderboardHandler.RegisterRoutes)
		})
	})

	return r
}
