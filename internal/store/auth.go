package store

import (
	"context"
	"unicode/utf16"

	"github.com/AnshRaj112/company-messenger/internal/models"
)

// MinPasswordLength is enforced by ChangePassword, counted in UTF-16 code units.
const MinPasswordLength = 6

// Authenticate matches identifier against phone number or email together with the
// password. On success the user is marked online and presence ticks start.
func (s *Store) Authenticate(ctx context.Context, identifier, password string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		u := &s.users[i]
		if u.PhoneNumber != identifier && u.Email != identifier {
			continue
		}
		if !s.passwords.Verify(password, u.Password) {
			continue
		}
		u.IsOnline = true
		u.LastSeen = models.At(s.clock.Now())
		pub := u.Public()
		s.notifier.Publish(Event{Type: EventPresence, User: &pub})
		if err := s.saveLocked(ctx); err != nil {
			return models.User{}, err
		}
		if !s.closed && s.presenceInterval > 0 {
			if _, running := s.presenceLoops[u.ID]; !running {
				s.schedulePresenceLocked(u.ID)
			}
		}
		return cloneUser(*u), nil
	}
	return models.User{}, &AuthError{Reason: InvalidCredentials}
}

// Logout marks the user offline, stops their presence ticks and drops the pending
// acknowledgement timers of messages they sent.
func (s *Store) Logout(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopPresenceLocked(userID)
	s.cancelSentTimersLocked(userID)
	i := s.userIndex(userID)
	if i < 0 {
		return &NotFoundError{Kind: "user", ID: userID}
	}
	s.users[i].IsOnline = false
	s.users[i].LastSeen = models.At(s.clock.Now())
	pub := s.users[i].Public()
	s.notifier.Publish(Event{Type: EventPresence, User: &pub})
	return s.saveLocked(ctx)
}

// RegisterUser adds a self-registered account. The new user starts online.
func (s *Store) RegisterUser(ctx context.Context, name, phone, email, password string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(ctx, name, phone, email, password, true)
}

// AdminAddUser adds an account from the admin panel. All fields are required and
// the new user starts offline.
func (s *Store) AdminAddUser(ctx context.Context, actorID, name, phone, email, password string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireAdminLocked(actorID); err != nil {
		return models.User{}, err
	}
	for _, f := range []struct{ field, value string }{
		{"name", name}, {"phoneNumber", phone}, {"email", email}, {"password", password},
	} {
		if f.value == "" {
			return models.User{}, &ValidationError{Field: f.field, Message: "Please fill in all fields"}
		}
	}
	return s.addUserLocked(ctx, name, phone, email, password, false)
}

func (s *Store) addUserLocked(ctx context.Context, name, phone, email, password string, selfRegistered bool) (models.User, error) {
	if err := s.checkUniqueLocked(phone, email, ""); err != nil {
		return models.User{}, err
	}
	stored, err := s.passwords.Hash(password)
	if err != nil {
		return models.User{}, err
	}

	u := models.User{
		ID:          s.nextID("user_"),
		PhoneNumber: phone,
		Email:       email,
		Name:        name,
		LastSeen:    models.At(s.clock.Now()),
		IsOnline:    selfRegistered,
		Password:    stored,
	}
	// self-registered users chose their own password; admin-created ones did not
	u.SetPasswordChanged(selfRegistered)

	s.users = append(s.users, u)
	pub := u.Public()
	s.notifier.Publish(Event{Type: EventUserCreated, User: &pub})
	if err := s.saveLocked(ctx); err != nil {
		return models.User{}, err
	}
	return cloneUser(u), nil
}

// checkUniqueLocked rejects a phone or email already held by a user other than exceptID.
// Phone is checked first.
func (s *Store) checkUniqueLocked(phone, email, exceptID string) error {
	if phone != "" {
		for _, u := range s.users {
			if u.ID != exceptID && u.PhoneNumber == phone {
				return &ConflictError{Reason: DuplicatePhone}
			}
		}
	}
	for _, u := range s.users {
		if u.ID != exceptID && u.Email == email {
			return &ConflictError{Reason: DuplicateEmail}
		}
	}
	return nil
}

// ChangePassword replaces the user's password after checking the current one.
func (s *Store) ChangePassword(ctx context.Context, userID, current, next, confirm string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(userID)
	if i < 0 {
		return &NotFoundError{Kind: "user", ID: userID}
	}
	u := &s.users[i]
	if !s.passwords.Verify(current, u.Password) {
		return &ValidationError{Field: "currentPassword", Message: "Current password is incorrect"}
	}
	if next != confirm {
		return &ValidationError{Field: "confirmPassword", Message: "New passwords do not match"}
	}
	if len(utf16.Encode([]rune(next))) < MinPasswordLength {
		return &ValidationError{Field: "newPassword", Message: "Password must be at least 6 characters long"}
	}

	stored, err := s.passwords.Hash(next)
	if err != nil {
		return err
	}
	u.Password = stored
	u.SetPasswordChanged(true)
	return s.saveLocked(ctx)
}

// ResetPassword overwrites the password of the user matching identifier (phone or
// email) with DemoResetPassword.
func (s *Store) ResetPassword(ctx context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		u := &s.users[i]
		if u.PhoneNumber != identifier && u.Email != identifier {
			continue
		}
		stored, err := s.passwords.Hash(DemoResetPassword)
		if err != nil {
			return err
		}
		u.Password = stored
		return s.saveLocked(ctx)
	}
	return &NotFoundError{Kind: "user", ID: identifier}
}

// UpdateProfile changes the user's display name and email.
func (s *Store) UpdateProfile(ctx context.Context, userID, name, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" || email == "" {
		return models.User{}, &ValidationError{Field: "profile", Message: "Please fill in all fields"}
	}
	i := s.userIndex(userID)
	if i < 0 {
		return models.User{}, &NotFoundError{Kind: "user", ID: userID}
	}
	if err := s.checkUniqueLocked("", email, userID); err != nil {
		return models.User{}, err
	}
	s.users[i].Name = name
	s.users[i].Email = email
	if err := s.saveLocked(ctx); err != nil {
		return models.User{}, err
	}
	return cloneUser(s.users[i]), nil
}
