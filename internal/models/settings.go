package models

import "time"

// Settings is the deployment-wide singleton edited from the admin panel.
type Settings struct {
	CompanyName  string   `json:"companyName"`
	LogoURL      string   `json:"logoUrl"`
	AllowedIPs   []string `json:"allowedIPs"`
	AppDisabled  bool     `json:"appDisabled"`
	DisableUntil *string  `json:"disableUntil"`
	DarkMode     bool     `json:"darkMode,omitempty"`
}

// Redacted drops the allowed-network list, which only admins may see.
func (s Settings) Redacted() Settings {
	s.AllowedIPs = nil
	return s
}

// disableUntilLayouts covers what the admin form sends (datetime-local) and full RFC 3339.
var disableUntilLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"}

// DisabledAt reports whether the app is disabled at now. An unparseable or absent
// DisableUntil leaves the app disabled until an admin re-enables it.
func (s Settings) DisabledAt(now time.Time) bool {
	if !s.AppDisabled {
		return false
	}
	if s.DisableUntil == nil || *s.DisableUntil == "" {
		return true
	}
	for _, layout := range disableUntilLayouts {
		if until, err := time.Parse(layout, *s.DisableUntil); err == nil {
			return now.Before(until)
		}
	}
	return true
}
