package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/AnshRaj112/company-messenger/internal/middleware"
	"github.com/AnshRaj112/company-messenger/internal/models"
	"github.com/AnshRaj112/company-messenger/internal/store"
)

// LoginRequest accepts a phone number or an email as identifier.
type LoginRequest struct {
	Identifier  string `json:"identifier"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Password    string `json:"password"`
}

type RegisterRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type ResetPasswordRequest struct {
	Identifier string `json:"identifier"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse carries the session user. RequiresPasswordChange is set for an
// administrator still using the initial password.
type AuthResponse struct {
	Success                bool               `json:"success"`
	Message                string             `json:"message"`
	User                   *models.PublicUser `json:"user,omitempty"`
	Token                  string             `json:"token,omitempty"`
	RequiresPasswordChange bool               `json:"requiresPasswordChange,omitempty"`
	AppDisabled            bool               `json:"appDisabled,omitempty"`
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		identifier = strings.TrimSpace(req.PhoneNumber)
	}
	if identifier == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Please fill in all fields")
		return
	}

	user, err := h.Store.Authenticate(r.Context(), identifier, req.Password)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	token, err := h.Sessions.Create(r.Context(), user.ID)
	if err != nil {
		log.Printf("handlers: creating session for %s: %v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	pub := user.Public()
	writeJSON(w, http.StatusOK, AuthResponse{
		Success:                true,
		Message:                "Login successful! Welcome back.",
		User:                   &pub,
		Token:                  token,
		RequiresPasswordChange: user.IsAdmin && !user.HasChangedPassword(),
	})
}

// Register handles POST /api/auth/register. The new account must log in afterwards.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.PhoneNumber == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Please fill in all fields")
		return
	}

	user, err := h.Store.RegisterUser(r.Context(), req.Name, req.PhoneNumber, req.Email, req.Password)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	pub := user.Public()
	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "Registration successful! Please login.",
		User:    &pub,
	})
}

// Logout handles POST /api/auth/logout
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if err := h.Store.Logout(r.Context(), user.ID); err != nil {
		writeStoreError(w, err)
		return
	}
	if err := h.Sessions.Invalidate(r.Context(), middleware.SessionToken(r.Context())); err != nil {
		log.Printf("handlers: invalidating session for %s: %v", user.ID, err)
	}
	writeJSON(w, http.StatusOK, ActionResponse{Success: true, Message: "Logged out successfully"})
}

// ResetPassword handles POST /api/auth/reset-password
func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.Store.ResetPassword(r.Context(), strings.TrimSpace(req.Identifier))
	var notFound *store.NotFoundError
	if errors.As(err, &notFound) {
		writeError(w, http.StatusNotFound, "User not found with that phone number or email")
		return
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ActionResponse{
		Success: true,
		Message: `Password reset instructions sent! (Demo: Use "` + store.DemoResetPassword + `")`,
	})
}

// ChangePassword handles POST /api/auth/change-password
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user := currentUser(r)
	if err := h.Store.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ActionResponse{Success: true, Message: "Password changed successfully!"})
}

// Me handles GET /api/auth/me
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	pub := currentUser(r).Public()
	writeJSON(w, http.StatusOK, AuthResponse{
		Success:                true,
		Message:                "OK",
		User:                   &pub,
		RequiresPasswordChange: pub.IsAdmin && !pub.PasswordChanged,
		AppDisabled:            h.Store.AppDisabled(),
	})
}

// UpdateProfile handles PUT /api/profile
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := h.Store.UpdateProfile(r.Context(), currentUser(r).ID, strings.TrimSpace(req.Name), strings.TrimSpace(req.Email))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	pub := user.Public()
	writeJSON(w, http.StatusOK, AuthResponse{Success: true, Message: "Profile updated successfully!", User: &pub})
}
