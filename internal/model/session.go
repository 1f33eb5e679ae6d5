package model

import "time"

const (
	MaxRecentlyViewed = 8
	// MaxFlash bounds pending messages for clients that never render the home page.
	MaxFlash = 5
)

type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ViewerSession is the per-visitor state threaded through each request.
// RecentlyViewed is most recent first and never holds duplicates.
type ViewerSession struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id,omitempty"`
	Email              string    `json:"email,omitempty"`
	RecentlyViewed     []int64   `json:"recently_viewed,omitempty"`
	RememberedLocation string    `json:"remembered_location,omitempty"`
	Flash              []Flash   `json:"flash,omitempty"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (s ViewerSession) Authenticated() bool { return s.UserID != "" }

// AddFlash queues a message, keeping only the newest MaxFlash.
func (s *ViewerSession) AddFlash(kind, msg string) {
	s.Flash = append(s.Flash, Flash{Kind: kind, Message: msg})
	if n := len(s.Flash); n > MaxFlash {
		s.Flash = append([]Flash(nil), s.Flash[n-MaxFlash:]...)
	}
}

// TakeFlash returns pending messages and clears them.
func (s *ViewerSession) TakeFlash() []Flash {
	out := s.Flash
	s.Flash = nil
	return out
}
