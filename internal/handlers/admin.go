package handlers

import (
	"net/http"
	"strings"

	"github.com/AnshRaj112/company-messenger/internal/models"
	"github.com/AnshRaj112/company-messenger/internal/store"
)

type UsersResponse struct {
	Success bool                `json:"success"`
	Users   []models.PublicUser `json:"users"`
	Total   int                 `json:"total"`
}

type AddUserRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type UserResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	User    *models.PublicUser `json:"user,omitempty"`
}

type BrandingRequest struct {
	CompanyName string `json:"companyName"`
	LogoURL     string `json:"logoUrl"`
}

type SettingsResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message,omitempty"`
	Settings *models.Settings `json:"settings,omitempty"`
}

// PublicSettings is what the login page needs before anyone is signed in.
type PublicSettings struct {
	CompanyName string `json:"companyName"`
	LogoURL     string `json:"logoUrl"`
	AppDisabled bool   `json:"appDisabled"`
	DarkMode    bool   `json:"darkMode"`
}

// GetSettings handles GET /api/settings
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	st := h.Store.Settings()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"settings": PublicSettings{
			CompanyName: st.CompanyName,
			LogoURL:     st.LogoURL,
			AppDisabled: h.Store.AppDisabled(),
			DarkMode:    st.DarkMode,
		},
	})
}

// AdminGetSettings handles GET /api/admin/settings
func (h *Handlers) AdminGetSettings(w http.ResponseWriter, r *http.Request) {
	st := h.Store.Settings()
	writeJSON(w, http.StatusOK, SettingsResponse{Success: true, Settings: &st})
}

// GetUsers handles GET /api/admin/users
func (h *Handlers) GetUsers(w http.ResponseWriter, r *http.Request) {
	users := publicUsers(h.Store.Users())
	writeJSON(w, http.StatusOK, UsersResponse{Success: true, Users: users, Total: len(users)})
}

// AddUser handles POST /api/admin/users
func (h *Handlers) AddUser(w http.ResponseWriter, r *http.Request) {
	var req AddUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := h.Store.AdminAddUser(r.Context(), currentUser(r).ID,
		strings.TrimSpace(req.Name), strings.TrimSpace(req.PhoneNumber), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	pub := user.Public()
	writeJSON(w, http.StatusCreated, UserResponse{Success: true, Message: "User added successfully!", User: &pub})
}

// UpdateSettings handles PUT /api/admin/settings
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch store.SettingsPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	st, err := h.Store.UpdateSettings(r.Context(), currentUser(r).ID, patch)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SettingsResponse{Success: true, Message: "Settings updated successfully!", Settings: &st})
}

// UpdateBranding handles PUT /api/admin/branding
func (h *Handlers) UpdateBranding(w http.ResponseWriter, r *http.Request) {
	var req BrandingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	st, err := h.Store.UpdateBranding(r.Context(), currentUser(r).ID, strings.TrimSpace(req.CompanyName), strings.TrimSpace(req.LogoURL))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SettingsResponse{Success: true, Message: "Branding updated successfully!", Settings: &st})
}

// ToggleAppDisabled handles POST /api/admin/toggle-disabled
func (h *Handlers) ToggleAppDisabled(w http.ResponseWriter, r *http.Request) {
	st, err := h.Store.ToggleAppDisabled(r.Context(), currentUser(r).ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	state := "enabled"
	if st.AppDisabled {
		state = "disabled"
	}
	writeJSON(w, http.StatusOK, SettingsResponse{Success: true, Message: "Application " + state + " successfully!", Settings: &st})
}
