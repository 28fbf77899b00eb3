package store

import "github.com/AnshRaj112/company-messenger/internal/models"

// Event types published to the Notifier.
const (
	EventMessageCreated  = "message_created"
	EventMessageStatus   = "message_status"
	EventPresence        = "presence"
	EventGroupCreated    = "group_created"
	EventUserCreated     = "user_created"
	EventSettingsUpdated = "settings_updated"
)

// Event describes a state change. Audience lists the user ids that should see it;
// an empty Audience means every connected user.
type Event struct {
	Type     string              `json:"type"`
	Message  *models.ChatMessage `json:"message,omitempty"`
	User     *models.PublicUser  `json:"user,omitempty"`
	Group    *models.Group       `json:"group,omitempty"`
	Settings *models.Settings    `json:"settings,omitempty"`
	Audience []string            `json:"-"`
}

// Notifier receives events while the store lock is held. Implementations must not
// block and must not call back into the Store.
type Notifier interface {
	Publish(Event)
}

type discardNotifier struct{}

func (discardNotifier) Publish(Event) {}
