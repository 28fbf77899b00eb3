package store

import (
	"context"
	"strings"

	"github.com/AnshRaj112/company-messenger/internal/models"
)

// SettingsPatch holds the admin-editable settings. Nil fields are left unchanged;
// an empty DisableUntil clears it.
type SettingsPatch struct {
	AllowedIPs   []string `json:"allowedIPs,omitempty"`
	DisableUntil *string  `json:"disableUntil,omitempty"`
	DarkMode     *bool    `json:"darkMode,omitempty"`
}

// UpdateSettings applies patch. Blank entries in AllowedIPs are dropped.
func (s *Store) UpdateSettings(ctx context.Context, actorID string, patch SettingsPatch) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireAdminLocked(actorID); err != nil {
		return models.Settings{}, err
	}
	if patch.AllowedIPs != nil {
		ips := []string{}
		for _, ip := range patch.AllowedIPs {
			if strings.TrimSpace(ip) != "" {
				ips = append(ips, ip)
			}
		}
		s.settings.AllowedIPs = ips
	}
	if patch.DisableUntil != nil {
		if *patch.DisableUntil == "" {
			s.settings.DisableUntil = nil
		} else {
			v := *patch.DisableUntil
			s.settings.DisableUntil = &v
		}
	}
	if patch.DarkMode != nil {
		s.settings.DarkMode = *patch.DarkMode
	}
	return s.commitSettingsLocked(ctx)
}

// UpdateBranding sets the company name and logo (URL or data URI).
func (s *Store) UpdateBranding(ctx context.Context, actorID, companyName, logo string) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireAdminLocked(actorID); err != nil {
		return models.Settings{}, err
	}
	s.settings.CompanyName = companyName
	s.settings.LogoURL = logo
	return s.commitSettingsLocked(ctx)
}

// ToggleAppDisabled flips the app-disabled flag and returns the new settings.
func (s *Store) ToggleAppDisabled(ctx context.Context, actorID string) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireAdminLocked(actorID); err != nil {
		return models.Settings{}, err
	}
	s.settings.AppDisabled = !s.settings.AppDisabled
	return s.commitSettingsLocked(ctx)
}

// AppDisabled reports whether non-admin use is currently blocked.
func (s *Store) AppDisabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.DisabledAt(s.clock.Now())
}

func (s *Store) commitSettingsLocked(ctx context.Context) (models.Settings, error) {
	out := cloneSettings(s.settings)
	var admins, others []string
	for _, u := range s.users {
		if u.IsAdmin {
			admins = append(admins, u.ID)
		} else {
			others = append(others, u.ID)
		}
	}
	if len(admins) > 0 {
		full := cloneSettings(out)
		s.notifier.Publish(Event{Type: EventSettingsUpdated, Settings: &full, Audience: admins})
	}
	if len(others) > 0 {
		public := out.Redacted()
		s.notifier.Publish(Event{Type: EventSettingsUpdated, Settings: &public, Audience: others})
	}
	if err := s.saveLocked(ctx); err != nil {
		return models.Settings{}, err
	}
	return cloneSettings(out), nil
}
