package domain

import "time"

// Session is a login session referenced by the session cookie. Flashes
// hold one-shot notifications shown on the next rendered page.
type Session struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	ExpiresAt time.Time         `json:"expires_at"`
	CreatedAt time.Time         `json:"created_at"`
	Flashes   []string          `json:"flashes,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}

// PopFlashes returns pending notifications and clears them.
func (s *Session) PopFlashes() []string {
	if s == nil || len(s.Flashes) == 0 {
		return nil
	}
	out := s.Flashes
	s.Flashes = nil
	return out
}
