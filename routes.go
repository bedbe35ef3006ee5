package main

import (
	"net/http"

	"botwerk-server/ai"
	"botwerk-server/config"
	"botwerk-server/handlers"
	"botwerk-server/middleware"
	"botwerk-server/store"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func newRouter(cfg *config.Config, s *store.Store, hub *handlers.Hub, responder ai.Responder) http.Handler {
	authHandler := handlers.NewAuthHandler(s)
	botHandler := handlers.NewBotHandler(s)
	sessionHandler := handlers.NewSessionHandler(s)
	chatHandler := handlers.NewChatHandler(s, responder, hub, handlers.ChatOptions{
		HistoryLimit: cfg.HistoryLimit,
		ReplyTimeout: cfg.ReplyTimeout,
	})
	userHandler := handlers.NewUserHandler(s, hub)
	adminHandler := handlers.NewAdminHandler(s, hub)

	withAuth := middleware.RequireAuth
	withAdmin := middleware.RequireAdmin(s)

	mux := http.NewServeMux()

	// Public routes (no auth required)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/contact", handlers.Contact)
	mux.HandleFunc("GET /api/ws", hub.HandleWebSocket)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /api/auth/me", withAuth(authHandler.Me))

	// Bots
	mux.HandleFunc("GET /api/bots", withAuth(botHandler.List))
	mux.HandleFunc("POST /api/bots", withAuth(botHandler.Create))
	mux.HandleFunc("GET /api/bots/{id}", withAuth(botHandler.Get))
	mux.HandleFunc("PUT /api/bots/{id}", withAuth(botHandler.Update))
	mux.HandleFunc("DELETE /api/bots/{id}", withAuth(botHandler.Delete))

	// Chat sessions
	mux.HandleFunc("GET /api/bots/{id}/sessions", withAuth(sessionHandler.List))
	mux.HandleFunc("POST /api/bots/{id}/sessions", withAuth(sessionHandler.Create))
	mux.HandleFunc("GET /api/sessions/{id}/messages", withAuth(chatHandler.Messages))
	mux.HandleFunc("POST /api/sessions/{id}/messages", withAuth(chatHandler.Send))

	// Users
	mux.HandleFunc("GET /api/dashboard/stats", withAuth(userHandler.DashboardStats))
	mux.HandleFunc("PUT /api/user/profile", withAuth(userHandler.UpdateProfile))
	mux.HandleFunc("DELETE /api/user/account", withAuth(userHandler.DeleteAccount))

	// Admin
	mux.HandleFunc("GET /api/admin/users", withAdmin(adminHandler.Users))
	mux.HandleFunc("GET /api/admin/bots", withAdmin(adminHandler.Bots))
	mux.HandleFunc("DELETE /api/admin/users/{id}", withAdmin(adminHandler.DeleteUser))
	mux.HandleFunc("DELETE /api/admin/bots/{id}", withAdmin(adminHandler.DeleteBot))

	var handler http.Handler = mux
	handler = middleware.Logger(handler)
	handler = cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})(handler)
	handler = chimw.Recoverer(handler)
	handler = chimw.RealIP(handler)
	handler = chimw.RequestID(handler)
	return handler
}
