package store

import (
	"time"

	"github.com/AnshRaj112/company-messenger/internal/models"
)

// Storage keys. They are shared with the browser build and must not change.
const (
	KeyUsers    = "messaging_users"
	KeyGroups   = "messaging_groups"
	KeyMessages = "messaging_messages"
	KeySettings = "messaging_settings"
)

// Demo dataset constants.
const (
	DefaultCompanyName = "GravitiCorp"
	DemoResetPassword  = "newpassword123"
)

// DefaultAllowedIPs is the allowed-network list written on first run.
var DefaultAllowedIPs = []string{"192.168.1.0/24", "10.0.0.0/8", "0.0.0.0/0"}

type dataset struct {
	users    []models.User
	groups   []models.Group
	messages []models.ChatMessage
	settings models.Settings
}

// seedData builds the first-run dataset: one admin, three users, two groups and
// five messages, with timestamps relative to now.
func seedData(now time.Time) dataset {
	at := func(ago time.Duration) models.Timestamp { return models.At(now.Add(-ago)) }
	adminChanged := false

	return dataset{
		users: []models.User{
			{
				ID:              "admin",
				PhoneNumber:     "admin",
				Email:           "admin@company.com",
				Name:            "System Administrator",
				LastSeen:        at(0),
				IsOnline:        true,
				IsAdmin:         true,
				PasswordChanged: &adminChanged,
				Password:        "GravitiAdmin2025!",
			},
			{
				ID:          "user1",
				PhoneNumber: "+1234567890",
				Email:       "john@company.com",
				Name:        "John Smith",
				LastSeen:    at(0),
				IsOnline:    true,
				Password:    "password123",
			},
			{
				ID:          "user2",
				PhoneNumber: "+1234567891",
				Email:       "jane@company.com",
				Name:        "Jane Doe",
				LastSeen:    at(0),
				Password:    "password123",
			},
			{
				ID:          "user3",
				PhoneNumber: "+1234567892",
				Email:       "mike@company.com",
				Name:        "Mike Johnson",
				LastSeen:    at(5 * time.Minute),
				Password:    "password123",
			},
		},
		groups: []models.Group{
			{
				ID:        "group1",
				Name:      "General Discussion",
				Members:   []string{"admin", "user1", "user2", "user3"},
				CreatedBy: "admin",
				CreatedAt: at(0),
			},
			{
				ID:        "group2",
				Name:      "Development Team",
				Members:   []string{"admin", "user1", "user2"},
				CreatedBy: "admin",
				CreatedAt: at(0),
			},
		},
		messages: []models.ChatMessage{
			seedMessage("msg1", "admin", "group1", "Welcome to the company messaging platform! 🎉", at(time.Hour), models.MessageStatusRead, nil),
			seedMessage("msg2", "user1", "group1", "Thanks for setting this up @admin! This looks great 👍", at(55*time.Minute), models.MessageStatusRead, []string{"admin"}),
			seedMessage("msg3", "user2", "group1", "Excited to use this for our team communications!", at(50*time.Minute), models.MessageStatusRead, nil),
			seedMessage("msg4", "admin", "user1", "Hey John, can you review the project proposal?", at(30*time.Minute), models.MessageStatusDelivered, nil),
			seedMessage("msg5", "user1", "admin", "Sure! I'll take a look at it this afternoon 📋", at(25*time.Minute), models.MessageStatusRead, nil),
		},
		settings: models.Settings{
			CompanyName: DefaultCompanyName,
			LogoURL:     "",
			AllowedIPs:  append([]string(nil), DefaultAllowedIPs...),
			AppDisabled: false,
		},
	}
}

func seedMessage(id, sender, receiver, content string, ts models.Timestamp, status models.ChatMessageStatus, mentions []string) models.ChatMessage {
	if mentions == nil {
		mentions = []string{}
	}
	return models.ChatMessage{
		ID:        id,
		Sender:    sender,
		Receiver:  receiver,
		Content:   content,
		Timestamp: ts,
		Type:      models.MessageTypeText,
		Status:    status,
		Mentions:  mentions,
	}
}
