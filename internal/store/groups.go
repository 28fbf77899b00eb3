package store

import (
	"context"
	"strings"

	"github.com/AnshRaj112/company-messenger/internal/models"
)

// CreateGroup creates a group owned by creatorID. Members are the creator followed
// by memberIDs in order, without duplicates. A welcome message from the creator is
// posted into the new group.
func (s *Store) CreateGroup(ctx context.Context, creatorID, name string, memberIDs []string) (models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Group{}, &ValidationError{Field: "name", Message: "Please enter a group name"}
	}
	if len(memberIDs) == 0 {
		return models.Group{}, &ValidationError{Field: "members", Message: "Please select at least one member"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userIndex(creatorID) < 0 {
		return models.Group{}, &NotFoundError{Kind: "user", ID: creatorID}
	}
	members := []string{creatorID}
	seen := map[string]bool{creatorID: true}
	for _, id := range memberIDs {
		if seen[id] {
			continue
		}
		if s.userIndex(id) < 0 {
			return models.Group{}, &NotFoundError{Kind: "user", ID: id}
		}
		seen[id] = true
		members = append(members, id)
	}

	now := models.At(s.clock.Now())
	g := models.Group{
		ID:        s.nextID("group_"),
		Name:      name,
		Members:   members,
		CreatedBy: creatorID,
		CreatedAt: now,
	}
	s.groups = append(s.groups, g)

	welcome := models.ChatMessage{
		ID:        s.nextID("msg_") + "_welcome",
		Sender:    creatorID,
		Receiver:  g.ID,
		Content:   "Welcome to " + name + "! 🎉",
		Timestamp: now,
		Type:      models.MessageTypeText,
		Status:    models.MessageStatusSent,
		Mentions:  []string{},
	}
	s.messages = append(s.messages, welcome)

	out := cloneGroup(g)
	s.notifier.Publish(Event{Type: EventGroupCreated, Group: &out, Audience: out.Members})
	wm := cloneMessage(welcome)
	s.notifier.Publish(Event{Type: EventMessageCreated, Message: &wm, Audience: out.Members})

	if err := s.saveLocked(ctx); err != nil {
		return models.Group{}, err
	}
	return out, nil
}
