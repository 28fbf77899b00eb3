package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/company-messenger/internal/models"
	"github.com/AnshRaj112/company-messenger/internal/store"
)

// CreateGroupRequest represents the request to create a group
type CreateGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// GroupResponse returns a group with its resolved members.
type GroupResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Group   *models.Group       `json:"group,omitempty"`
	Members []models.PublicUser `json:"members,omitempty"`
}

// CreateGroup handles POST /api/groups
func (h *Handlers) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	g, err := h.Store.CreateGroup(r.Context(), currentUser(r).ID, req.Name, req.Members)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, GroupResponse{
		Success: true,
		Message: `Group "` + g.Name + `" created successfully!`,
		Group:   &g,
		Members: h.members(g),
	})
}

// GetGroup handles GET /api/groups/{id}. Only members may look at a group.
func (h *Handlers) GetGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, ok := h.Store.Group(id)
	if !ok {
		writeStoreError(w, &store.NotFoundError{Kind: "group", ID: id})
		return
	}
	if !g.HasMember(currentUser(r).ID) {
		writeStoreError(w, &store.AuthError{Reason: store.NotMember})
		return
	}
	writeJSON(w, http.StatusOK, GroupResponse{Success: true, Group: &g, Members: h.members(g)})
}

func (h *Handlers) members(g models.Group) []models.PublicUser {
	out := make([]models.PublicUser, 0, len(g.Members))
	for _, id := range g.Members {
		if u, ok := h.Store.User(id); ok {
			out = append(out, u.Public())
		}
	}
	return out
}
