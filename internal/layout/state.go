// Package layout owns per-session view state and site navigation
package layout

import (
	"fmt"
	"strings"

	"github.com/ppiankov/clarifai/internal/model"
)

// Theme is the desired color scheme. The browser resolves "system".
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ParseTheme validates a theme name
func ParseTheme(raw string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(raw))); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, nil
	default:
		return "", fmt.Errorf("theme %q: %w", raw, model.ErrUnknownEnumValue)
	}
}

// Notification preference keys
const (
	NotifyNewTopics        = "newTopics"
	NotifyClaimVerified    = "claimVerified"
	NotifyConflictDetected = "conflictDetected"
	NotifyFalseClaimAlert  = "falseClaimAlert"
)

// NotificationKeys lists preference keys in settings-page order
var NotificationKeys = []string{NotifyNewTopics, NotifyClaimVerified, NotifyConflictDetected, NotifyFalseClaimAlert}

// Notifications holds the per-event notification switches
type Notifications struct {
	NewTopics        bool `json:"newTopics"`
	ClaimVerified    bool `json:"claimVerified"`
	ConflictDetected bool `json:"conflictDetected"`
	FalseClaimAlert  bool `json:"falseClaimAlert"`
}

// Enabled reports the switch for key
func (n Notifications) Enabled(key string) bool {
	if p := n.field(key); p != nil {
		return *p
	}
	return false
}

func (n *Notifications) field(key string) *bool {
	switch key {
	case NotifyNewTopics:
		return &n.NewTopics
	case NotifyClaimVerified:
		return &n.ClaimVerified
	case NotifyConflictDetected:
		return &n.ConflictDetected
	case NotifyFalseClaimAlert:
		return &n.FalseClaimAlert
	default:
		return nil
	}
}

// ViewState is everything the page chrome needs to know about one visitor
type ViewState struct {
	SidebarCollapsed bool          `json:"sidebar_collapsed"`
	Theme            Theme         `json:"theme"`
	Notifications    Notifications `json:"notifications"`
}

// DefaultViewState builds the state of a new session from UI config.
// All notifications start enabled.
func DefaultViewState(ui model.UIConfig) ViewState {
	theme, err := ParseTheme(ui.Theme)
	if err != nil {
		theme = ThemeSystem
	}
	return ViewState{
		SidebarCollapsed: ui.SidebarCollapsed,
		Theme:            theme,
		Notifications: Notifications{
			NewTopics:        true,
			ClaimVerified:    true,
			ConflictDetected: true,
			FalseClaimAlert:  true,
		},
	}
}

// ToggleSidebar flips between expanded and collapsed
func (s *ViewState) ToggleSidebar() {
	s.SidebarCollapsed = !s.SidebarCollapsed
}

// SetSidebar sets the collapsed flag explicitly
func (s *ViewState) SetSidebar(collapsed bool) {
	s.SidebarCollapsed = collapsed
}

// SetTheme stores the desired theme
func (s *ViewState) SetTheme(t Theme) {
	s.Theme = t
}

// ToggleTheme is the header quick toggle: dark becomes light, anything else becomes dark
func (s *ViewState) ToggleTheme() {
	if s.Theme == ThemeDark {
		s.Theme = ThemeLight
		return
	}
	s.Theme = ThemeDark
}

// ToggleNotification flips one notification switch
func (s *ViewState) ToggleNotification(key string) error {
	p := s.Notifications.field(key)
	if p == nil {
		return fmt.Errorf("notification %q: %w", key, model.ErrUnknownEnumValue)
	}
	*p = !*p
	return nil
}

// SetNotification sets one notification switch
func (s *ViewState) SetNotification(key string, on bool) error {
	p := s.Notifications.field(key)
	if p == nil {
		return fmt.Errorf("notification %q: %w", key, model.ErrUnknownEnumValue)
	}
	*p = on
	return nil
}
