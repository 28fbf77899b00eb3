package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/AnshRaj112/company-messenger/internal/middleware"
	"github.com/AnshRaj112/company-messenger/internal/models"
	"github.com/AnshRaj112/company-messenger/internal/services"
	"github.com/AnshRaj112/company-messenger/internal/store"
)

// Handlers serves the HTTP command surface on top of the application store.
type Handlers struct {
	Store    *store.Store
	Sessions services.Sessions
	Hub      *services.Hub
	// Uploader is optional; without it logos are stored inline as data URIs.
	Uploader services.Uploader
}

func New(st *store.Store, sessions services.Sessions, hub *services.Hub, uploader services.Uploader) *Handlers {
	return &Handlers{Store: st, Sessions: sessions, Hub: hub, Uploader: uploader}
}

// ActionResponse is the generic reply for commands without a payload.
type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("handlers: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ActionResponse{Success: false, Message: message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// writeStoreError maps store errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	var (
		validation *store.ValidationError
		conflict   *store.ConflictError
		authErr    *store.AuthError
		notFound   *store.NotFoundError
	)
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Message)
	case errors.As(err, &conflict):
		switch conflict.Reason {
		case store.DuplicatePhone:
			writeError(w, http.StatusConflict, "Phone number already registered!")
		case store.DuplicateEmail:
			writeError(w, http.StatusConflict, "Email already registered!")
		default:
			writeError(w, http.StatusConflict, conflict.Error())
		}
	case errors.As(err, &authErr):
		switch authErr.Reason {
		case store.InvalidCredentials:
			writeError(w, http.StatusUnauthorized, "Invalid credentials! Please try again.")
		case store.NotAdministrator:
			writeError(w, http.StatusForbidden, "Administrator access required")
		default:
			writeError(w, http.StatusForbidden, "You must be a member of this group")
		}
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	default:
		log.Printf("handlers: %v", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}

// currentUser is set by middleware.RequireAuth on every authenticated route.
func currentUser(r *http.Request) models.User {
	u, _ := middleware.CurrentUser(r.Context())
	return u
}

func publicUsers(users []models.User) []models.PublicUser {
	out := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}
