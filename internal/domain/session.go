package domain

// Session is the authenticated identity held for one browser.
// It is either fully populated or empty.
type Session struct {
	Token       string `json:"token"`
	Role        Role   `json:"role"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"name"`
}

// IsEmpty reports whether no one is logged in.
func (s Session) IsEmpty() bool {
	return s.Token == ""
}

// Identity is the part of a session that distinguishes one login from
// another. Two sessions with different identities belong to different
// logins even when they share a user id.
type Identity struct {
	Token  string
	UserID string
}

// Identity returns the identity of s.
func (s Session) Identity() Identity {
	return Identity{Token: s.Token, UserID: s.UserID}
}

// CanPoll reports whether the session qualifies for resolved-report
// notifications.
func (s Session) CanPoll() bool {
	return !s.IsEmpty() && !s.Role.IsAdmin() && s.UserID != ""
}
