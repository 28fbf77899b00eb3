package store

import (
	"strings"

	"github.com/AnshRaj112/company-messenger/internal/models"
)

// Chat kinds.
const (
	ChatKindUser  = "user"
	ChatKindGroup = "group"
)

// ChatSummary is one row of a user's chat list.
type ChatSummary struct {
	ID          string              `json:"id"`
	Kind        string              `json:"type"`
	Name        string              `json:"name"`
	User        *models.PublicUser  `json:"user,omitempty"`
	Group       *models.Group       `json:"group,omitempty"`
	LastMessage *models.ChatMessage `json:"lastMessage,omitempty"`
	UnreadCount int                 `json:"unreadCount"`
}

// ListChats lists every other user followed by every group currentUserID belongs
// to. A non-empty query keeps rows whose name or last message contains it,
// ignoring case.
func (s *Store) ListChats(currentUserID, query string) []ChatSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	query = strings.ToLower(strings.TrimSpace(query))
	out := []ChatSummary{}
	add := func(c ChatSummary) {
		if last, ok := s.lastMessageLocked(c.ID); ok {
			c.LastMessage = &last
		}
		c.UnreadCount = s.unreadCountLocked(c.ID, currentUserID)
		if query != "" && !chatMatches(c, query) {
			return
		}
		out = append(out, c)
	}

	for _, u := range s.users {
		if u.ID == currentUserID {
			continue
		}
		pub := u.Public()
		add(ChatSummary{ID: u.ID, Kind: ChatKindUser, Name: u.Name, User: &pub})
	}
	for _, g := range s.groups {
		if !g.HasMember(currentUserID) {
			continue
		}
		gc := cloneGroup(g)
		add(ChatSummary{ID: g.ID, Kind: ChatKindGroup, Name: g.Name, Group: &gc})
	}
	return out
}

func chatMatches(c ChatSummary, query string) bool {
	if strings.Contains(strings.ToLower(c.Name), query) {
		return true
	}
	return c.LastMessage != nil && strings.Contains(strings.ToLower(c.LastMessage.Content), query)
}
