package models

// DefaultTeamMembers is the roster used when a session does not supply one.
var DefaultTeamMembers = []string{
	"alice@company.com",
	"bob@company.com",
	"charlie@company.com",
	"diana@company.com",
	"eve@company.com",
	"frank@company.com",
}

const (
	DefaultLocation    = "Hyderabad"
	DefaultTargetCount = 6
)

// SessionDefaults is the session-scoped configuration passed to every planning call.
type SessionDefaults struct {
	TeamMembers     []string `json:"teamMembers,omitempty" validate:"omitempty,dive,email"`
	TeamSize        int      `json:"teamSize,omitempty" validate:"gte=0,lte=50"`
	DefaultLocation string   `json:"defaultLocation,omitempty"`
}

// WithFallbacks fills unset fields from the package defaults.
func (s SessionDefaults) WithFallbacks() SessionDefaults {
	if len(s.TeamMembers) == 0 {
		s.TeamMembers = append([]string(nil), DefaultTeamMembers...)
	}
	if s.TeamSize <= 0 {
		s.TeamSize = len(s.TeamMembers)
	}
	if s.DefaultLocation == "" {
		s.DefaultLocation = DefaultLocation
	}
	return s
}

// Merge overlays the fields set in override onto s.
func (s SessionDefaults) Merge(override *SessionDefaults) SessionDefaults {
	if override == nil {
		return s
	}
	if len(override.TeamMembers) > 0 {
		s.TeamMembers = append([]string(nil), override.TeamMembers...)
		if override.TeamSize <= 0 {
			s.TeamSize = len(override.TeamMembers)
		}
	}
	if override.TeamSize > 0 {
		s.TeamSize = override.TeamSize
	}
	if override.DefaultLocation != "" {
		s.DefaultLocation = override.DefaultLocation
	}
	return s
}
