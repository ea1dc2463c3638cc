package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Mode is the top-level conversation mode of a session.
type Mode string

const (
	ModeIdle     Mode = "idle"     // Welcome menu, no flow active
	ModeBrowsing Mode = "browsing" // Catalog Discovery Flow
	ModeOrdering Mode = "ordering" // Ordering Flow (BrowseState is kept)
	ModeMerchant Mode = "merchant" // Merchant Onboarding Flow
)

// Session is the per-customer conversation state.
// At most one sub-state is semantically active, selected by Mode.
type Session struct {
	// ID is the customer identifier (phone number).
	ID string `json:"id"`

	// Mode selects the flow that interprets the next input.
	Mode Mode `json:"mode"`

	Browse   *BrowseState   `json:"browse,omitempty"`
	Order    *OrderState    `json:"order,omitempty"`
	Merchant *MerchantState `json:"merchant,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Sealed carries the encrypted session when it is stored through an encrypting store.
	// A sealed envelope has no sub-states.
	Sealed string `json:"sealed,omitempty"`
}

// NewSession creates an idle session with no sub-states.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Mode:      ModeIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Reset returns the session to idle and drops every sub-state.
// The session keeps its identity and creation time.
func (s *Session) Reset() {
	s.Mode = ModeIdle
	s.Browse = nil
	s.Order = nil
	s.Merchant = nil
}

// Step returns the name of the active flow step, or the mode itself when idle.
func (s *Session) Step() string {
	switch s.Mode {
	case ModeBrowsing:
		if s.Browse != nil {
			return string(s.Browse.Step)
		}
	case ModeOrdering:
		if s.Order != nil {
			return string(s.Order.Step)
		}
	case ModeMerchant:
		if s.Merchant != nil {
			return string(s.Merchant.Step)
		}
	}
	return string(s.Mode)
}

// Clone returns a deep copy of the session.
// Stores use it to keep their contents isolated from callers.
func (s *Session) Clone() (*Session, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	var out Session
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &out, nil
}
