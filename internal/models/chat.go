package models

// ChatMessageStatus represents the delivery/read status of a message.
// Valid values: "sent", "delivered", "read".
type ChatMessageStatus string

const (
	MessageStatusSent      ChatMessageStatus = "sent"
	MessageStatusDelivered ChatMessageStatus = "delivered"
	MessageStatusRead      ChatMessageStatus = "read"
)

// MessageTypeText is the only message type the messenger produces.
const MessageTypeText = "text"

// rank orders statuses so transitions can be checked for monotonicity.
func (s ChatMessageStatus) rank() int {
	switch s {
	case MessageStatusSent:
		return 1
	case MessageStatusDelivered:
		return 2
	case MessageStatusRead:
		return 3
	default:
		return 0
	}
}

// Before reports whether s comes strictly before other in sent -> delivered -> read.
func (s ChatMessageStatus) Before(other ChatMessageStatus) bool {
	return s.rank() < other.rank()
}

// ChatMessage is a single direct or group message. Receiver holds a user id for
// direct messages and a group id for group messages.
type ChatMessage struct {
	ID        string            `json:"id"`
	Sender    string            `json:"sender"`
	Receiver  string            `json:"receiver"`
	Content   string            `json:"content"`
	Timestamp Timestamp         `json:"timestamp"`
	Type      string            `json:"type"`
	Status    ChatMessageStatus `json:"status"`
	Mentions  []string          `json:"mentions"`
}

// Involves reports whether id is the sender or the receiver.
func (m ChatMessage) Involves(id string) bool {
	return m.Sender == id || m.Receiver == id
}
