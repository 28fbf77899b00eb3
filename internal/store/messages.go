package store

import (
	"context"
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/AnshRaj112/company-messenger/internal/models"
)

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// ExtractMentions returns the word after every "@", left to right.
func ExtractMentions(content string) []string {
	mentions := []string{}
	for _, m := range mentionPattern.FindAllStringSubmatch(content, -1) {
		mentions = append(mentions, m[1])
	}
	return mentions
}

// statusTimers are the pending delivery/read callbacks of one message.
type statusTimers struct {
	handles   []Timer
	remaining int
}

func (st *statusTimers) stop() {
	for _, h := range st.handles {
		h.Stop()
	}
}

// SendMessage appends a message from senderID to receiverID (a user or group id).
// Blank text is ignored and yields (nil, nil). The message starts as "sent", moves
// to "delivered" after the delivered delay and, for direct messages, to "read"
// after the read delay.
func (s *Store) SendMessage(ctx context.Context, senderID, receiverID, text string) (*models.ChatMessage, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userIndex(senderID) < 0 {
		return nil, &NotFoundError{Kind: "user", ID: senderID}
	}
	isGroup := false
	var audience []string
	if gi := s.groupIndex(receiverID); gi >= 0 {
		if !s.groups[gi].HasMember(senderID) {
			return nil, &AuthError{Reason: NotMember}
		}
		isGroup = true
		audience = append(audience, s.groups[gi].Members...)
	} else if s.userIndex(receiverID) >= 0 {
		audience = []string{senderID, receiverID}
	} else {
		return nil, &NotFoundError{Kind: "conversation", ID: receiverID}
	}

	msg := models.ChatMessage{
		ID:        s.nextID("msg_") + "_" + randomSuffix(),
		Sender:    senderID,
		Receiver:  receiverID,
		Content:   content,
		Timestamp: models.At(s.clock.Now()),
		Type:      models.MessageTypeText,
		Status:    models.MessageStatusSent,
		Mentions:  ExtractMentions(content),
	}
	s.messages = append(s.messages, msg)

	out := cloneMessage(msg)
	s.notifier.Publish(Event{Type: EventMessageCreated, Message: &out, Audience: audience})
	if err := s.saveLocked(ctx); err != nil {
		return nil, err
	}
	s.scheduleStatusLocked(msg.ID, isGroup)
	return &out, nil
}

// scheduleStatusLocked arms the simulated acknowledgement timers for a message.
func (s *Store) scheduleStatusLocked(messageID string, isGroup bool) {
	if s.closed {
		return
	}
	st := &statusTimers{}
	st.handles = append(st.handles, s.scheduler.AfterFunc(s.deliveredDelay, func() {
		s.advanceStatus(messageID, models.MessageStatusDelivered)
	}))
	if !isGroup {
		st.handles = append(st.handles, s.scheduler.AfterFunc(s.readDelay, func() {
			s.advanceStatus(messageID, models.MessageStatusRead)
		}))
	}
	st.remaining = len(st.handles)
	s.statusTimers[messageID] = st
}

// advanceStatus moves a message forward to status. It never moves it back.
func (s *Store) advanceStatus(messageID string, status models.ChatMessageStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, pending := s.statusTimers[messageID]
	if s.closed || !pending {
		return
	}
	st.remaining--
	if st.remaining <= 0 {
		delete(s.statusTimers, messageID)
	}

	i := s.messageIndex(messageID)
	if i < 0 || !s.messages[i].Status.Before(status) {
		return
	}
	s.messages[i].Status = status
	s.publishStatusLocked(i)
	if err := s.saveLocked(context.Background()); err != nil {
		log.Printf("store: saving status of %s: %v", messageID, err)
	}
}

func (s *Store) publishStatusLocked(i int) {
	m := cloneMessage(s.messages[i])
	s.notifier.Publish(Event{Type: EventMessageStatus, Message: &m, Audience: []string{m.Sender, m.Receiver}})
}

// PendingStatusTimers reports how many messages still have acknowledgement timers armed.
func (s *Store) PendingStatusTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.statusTimers)
}

// cancelSentTimersLocked stops the acknowledgement timers of messages sent by
// senderID. Their status stays where it was.
func (s *Store) cancelSentTimersLocked(senderID string) {
	for id, st := range s.statusTimers {
		i := s.messageIndex(id)
		if i >= 0 && s.messages[i].Sender != senderID {
			continue
		}
		st.stop()
		delete(s.statusTimers, id)
	}
}

// MarkConversationRead marks every message from peerID to currentUserID as read.
func (s *Store) MarkConversationRead(ctx context.Context, peerID, currentUserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		m := &s.messages[i]
		if m.Sender != peerID || m.Receiver != currentUserID {
			continue
		}
		if m.Status != models.MessageStatusRead {
			m.Status = models.MessageStatusRead
			s.publishStatusLocked(i)
		}
	}
	return s.saveLocked(ctx)
}

// ListConversation returns the messages of a direct conversation (both directions
// between currentUserID and peerOrGroupID) or of a group, oldest first. Messages
// with equal timestamps keep their insertion order.
func (s *Store) ListConversation(currentUserID, peerOrGroupID string, isGroup bool) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if isGroup {
		gi := s.groupIndex(peerOrGroupID)
		if gi < 0 {
			return nil, &NotFoundError{Kind: "group", ID: peerOrGroupID}
		}
		if !s.groups[gi].HasMember(currentUserID) {
			return nil, &AuthError{Reason: NotMember}
		}
	}

	out := []models.ChatMessage{}
	for _, m := range s.messages {
		var match bool
		if isGroup {
			match = m.Receiver == peerOrGroupID
		} else {
			match = (m.Sender == currentUserID && m.Receiver == peerOrGroupID) ||
				(m.Sender == peerOrGroupID && m.Receiver == currentUserID)
		}
		if match {
			out = append(out, cloneMessage(m))
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Timestamp.Before(out[b].Timestamp.Time)
	})
	return out, nil
}

// LastMessage returns the most recent message sent by or to conversationID. On a
// timestamp tie the earlier inserted message wins.
func (s *Store) LastMessage(conversationID string) (models.ChatMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastMessageLocked(conversationID)
}

func (s *Store) lastMessageLocked(conversationID string) (models.ChatMessage, bool) {
	best := -1
	for i, m := range s.messages {
		if !m.Involves(conversationID) {
			continue
		}
		if best < 0 || m.Timestamp.After(s.messages[best].Timestamp.Time) {
			best = i
		}
	}
	if best < 0 {
		return models.ChatMessage{}, false
	}
	return cloneMessage(s.messages[best]), true
}

// UnreadCount counts messages from conversationID to currentUserID not yet read.
func (s *Store) UnreadCount(conversationID, currentUserID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadCountLocked(conversationID, currentUserID)
}

func (s *Store) unreadCountLocked(conversationID, currentUserID string) int {
	n := 0
	for _, m := range s.messages {
		if m.Sender == conversationID && m.Receiver == currentUserID && m.Status != models.MessageStatusRead {
			n++
		}
	}
	return n
}
