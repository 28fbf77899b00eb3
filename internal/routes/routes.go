package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/company-messenger/internal/handlers"
	"github.com/AnshRaj112/company-messenger/internal/middleware"
)

func SetupRoutes(r chi.Router, h *handlers.Handlers) {
	// Public routes
	r.Get("/api/settings", h.GetSettings)
	r.Post("/api/auth/login", h.Login)
	r.Post("/api/auth/register", h.Register)
	r.Post("/api/auth/reset-password", h.ResetPassword)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.Sessions, h.Store))

		// Reachable while the app is disabled so users can still sign out
		r.Get("/api/auth/me", h.Me)
		r.Post("/api/auth/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AppDisabledGate(h.Store))
			r.Use(middleware.SendMessageRateLimit)

			r.Post("/api/auth/change-password", h.ChangePassword)
			r.Put("/api/profile", h.UpdateProfile)

			// Chats and conversations (direct or group)
			r.Get("/api/chats", h.ListChats)
			r.Get("/api/conversations/{id}/messages", h.GetConversation)
			r.Post("/api/conversations/{id}/messages", h.SendMessage)
			r.Post("/api/conversations/{id}/read", h.MarkRead)

			r.Post("/api/groups", h.CreateGroup)
			r.Get("/api/groups/{id}", h.GetGroup)

			// Realtime event feed (token via Authorization header or ?token=)
			r.Get("/ws/events", h.EventsWebSocket)

			r.Route("/api/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/users", h.GetUsers)
				r.Post("/users", h.AddUser)
				r.Get("/settings", h.AdminGetSettings)
				r.Put("/settings", h.UpdateSettings)
				r.Put("/branding", h.UpdateBranding)
				r.Post("/branding/logo", h.UploadLogo)
				r.Post("/toggle-disabled", h.ToggleAppDisabled)
			})
		})
	})
}
