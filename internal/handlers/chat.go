package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/company-messenger/internal/models"
	"github.com/AnshRaj112/company-messenger/internal/store"
)

type ListChatsResponse struct {
	Success bool                `json:"success"`
	Chats   []store.ChatSummary `json:"chats"`
	Total   int                 `json:"total"`
}

type ConversationResponse struct {
	Success  bool                 `json:"success"`
	Messages []models.ChatMessage `json:"messages"`
	Total    int                  `json:"total"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

type SendMessageResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Msg     *models.ChatMessage `json:"msg,omitempty"`
}

type MarkReadResponse struct {
	Success     bool `json:"success"`
	UnreadCount int  `json:"unreadCount"`
}

// ListChats handles GET /api/chats?q=
func (h *Handlers) ListChats(w http.ResponseWriter, r *http.Request) {
	chats := h.Store.ListChats(currentUser(r).ID, r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, ListChatsResponse{Success: true, Chats: chats, Total: len(chats)})
}

// isGroupConversation honours an explicit ?group= and otherwise looks the id up.
func (h *Handlers) isGroupConversation(r *http.Request, id string) bool {
	if raw := r.URL.Query().Get("group"); raw != "" {
		isGroup, _ := strconv.ParseBool(raw)
		return isGroup
	}
	_, isGroup := h.Store.Group(id)
	return isGroup
}

// GetConversation handles GET /api/conversations/{id}/messages
func (h *Handlers) GetConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	messages, err := h.Store.ListConversation(currentUser(r).ID, id, h.isGroupConversation(r, id))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ConversationResponse{Success: true, Messages: messages, Total: len(messages)})
}

// SendMessage handles POST /api/conversations/{id}/messages. Blank content is
// ignored and answered with 204.
func (h *Handlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	msg, err := h.Store.SendMessage(r.Context(), currentUser(r).ID, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if msg == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, SendMessageResponse{Success: true, Message: "Message sent", Msg: msg})
}

// MarkRead handles POST /api/conversations/{id}/read
func (h *Handlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	peer := chi.URLParam(r, "id")
	if err := h.Store.MarkConversationRead(r.Context(), peer, user.ID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MarkReadResponse{Success: true, UnreadCount: h.Store.UnreadCount(peer, user.ID)})
}
