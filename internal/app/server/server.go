package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DaniRico987/Sagittarius/internal/app/router"
	"github.com/DaniRico987/Sagittarius/internal/app/server/handlers"
	"github.com/DaniRico987/Sagittarius/internal/core/contracts"
	"github.com/DaniRico987/Sagittarius/internal/core/services"
	"github.com/DaniRico987/Sagittarius/pkg/middleware"
)

type Server struct {
	log         *slog.Logger
	mux         *http.ServeMux
	app         string
	addr        string
	authHandler *handlers.AuthHandler
	userHandler *handlers.UserHandler
	chatHandler *handlers.ChatHandler
	wsHandler   *handlers.WSHandler
	tokenSvc    *services.TokenService
}

func NewServer(
	log *slog.Logger,
	app string,
	addr string,
	authSvc *services.AuthService,
	userSvc *services.UserService,
	convSvc *services.ConversationService,
	tokenSvc *services.TokenService,
	rt *router.Router,
	hub contracts.Registry,
	presence contracts.PresenceStore,
) *Server {
	s := &Server{
		log:         log,
		mux:         http.NewServeMux(),
		app:         app,
		addr:        addr,
		authHandler: handlers.NewAuthHandler(authSvc),
		userHandler: handlers.NewUserHandler(userSvc, rt, presence),
		chatHandler: handlers.NewChatHandler(convSvc),
		wsHandler:   handlers.NewWSHandler(hub, rt, presence),
		tokenSvc:    tokenSvc,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	auth := middleware.AuthMiddleware(s.tokenSvc)

	// Public
	s.mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	s.mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	s.mux.HandleFunc("POST /auth/reset-password", s.authHandler.ResetPassword)

	// Users and friends
	s.mux.Handle("GET /users", auth(http.HandlerFunc(s.userHandler.List)))
	s.mux.Handle("GET /users/online", auth(http.HandlerFunc(s.userHandler.Online)))
	s.mux.Handle("GET /users/{id}", auth(http.HandlerFunc(s.userHandler.Get)))
	s.mux.Handle("GET /friends", auth(http.HandlerFunc(s.userHandler.Friends)))
	s.mux.Handle("GET /friends/requests", auth(http.HandlerFunc(s.userHandler.FriendRequests)))
	s.mux.Handle("POST /friends/requests/{id}", auth(http.HandlerFunc(s.userHandler.SendFriendRequest)))
	s.mux.Handle("POST /friends/requests/{id}/accept", auth(http.HandlerFunc(s.userHandler.AcceptFriendRequest)))
	s.mux.Handle("POST /friends/requests/{id}/reject", auth(http.HandlerFunc(s.userHandler.RejectFriendRequest)))
	s.mux.Handle("DELETE /friends/{id}", auth(http.HandlerFunc(s.userHandler.RemoveFriend)))

	// Conversations and history
	s.mux.Handle("POST /conversations", auth(http.HandlerFunc(s.chatHandler.Create)))
	s.mux.Handle("GET /conversations", auth(http.HandlerFunc(s.chatHandler.List)))
	s.mux.Handle("GET /conversations/{id}/messages", auth(http.HandlerFunc(s.chatHandler.Messages)))
	s.mux.Handle("GET /messages/chat/{userId}/{receiverId}", auth(http.HandlerFunc(s.chatHandler.DirectMessages)))

	// Live connection
	s.mux.Handle("/ws", auth(http.HandlerFunc(s.wsHandler.Handler)))
}

func (s *Server) Start() error {
	handler := middleware.TracerMiddleware(s.app)(middleware.RequestLogger(s.log)(s.mux))
	server := &http.Server{
		Addr:         s.addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.log.Info("server - starting", "addr", s.addr)
	return server.ListenAndServe()
}
