package models

// User is a messenger account. The JSON shape is the persisted document shape and
// must stay stable: existing stores are read back with these field names.
type User struct {
	ID              string    `json:"id"`
	PhoneNumber     string    `json:"phoneNumber"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	ProfilePic      string    `json:"profilePic"`
	LastSeen        Timestamp `json:"lastSeen"`
	IsOnline        bool      `json:"isOnline"`
	IsAdmin         bool      `json:"isAdmin"`
	PasswordChanged *bool     `json:"passwordChanged,omitempty"`
	Password        string    `json:"password"`
}

// HasChangedPassword treats an absent passwordChanged field as false.
func (u User) HasChangedPassword() bool {
	return u.PasswordChanged != nil && *u.PasswordChanged
}

// SetPasswordChanged records whether the user replaced their initial password.
func (u *User) SetPasswordChanged(v bool) {
	u.PasswordChanged = &v
}

// PublicUser is the view of a user handed to clients (no password).
type PublicUser struct {
	ID              string    `json:"id"`
	PhoneNumber     string    `json:"phoneNumber"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	ProfilePic      string    `json:"profilePic"`
	LastSeen        Timestamp `json:"lastSeen"`
	IsOnline        bool      `json:"isOnline"`
	IsAdmin         bool      `json:"isAdmin"`
	PasswordChanged bool      `json:"passwordChanged"`
}

// Public strips the password.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:              u.ID,
		PhoneNumber:     u.PhoneNumber,
		Email:           u.Email,
		Name:            u.Name,
		ProfilePic:      u.ProfilePic,
		LastSeen:        u.LastSeen,
		IsOnline:        u.IsOnline,
		IsAdmin:         u.IsAdmin,
		PasswordChanged: u.HasChangedPassword(),
	}
}
