// Package session keeps per-user conversation state. The Registry serializes
// work on a single user's session while leaving different users independent.
package session

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"
)

// State is a conversation position. The zero value is not valid; use StateRoot.
type State string

const (
	StateRoot                     State = "ROOT"
	StateBrowsingTemplates        State = "BROWSING_TEMPLATES"
	StateBrowsingTemplateCategory State = "BROWSING_TEMPLATE_CATEGORY"
	StateViewingTemplateDetail    State = "VIEWING_TEMPLATE_DETAIL"
	StateBrowsingBlocks           State = "BROWSING_BLOCKS"
	StateBrowsingBlockCategory    State = "BROWSING_BLOCK_CATEGORY"
	StateBrowsingStyles           State = "BROWSING_STYLES"
	StateBrowsingStyleCategory    State = "BROWSING_STYLE_CATEGORY"
	StateCustomizing              State = "CUSTOMIZING"
	StateOrdering                 State = "ORDERING"
	StatePricing                  State = "PRICING"
)

// States lists every valid state.
var States = []State{
	StateRoot,
	StateBrowsingTemplates,
	StateBrowsingTemplateCategory,
	StateViewingTemplateDetail,
	StateBrowsingBlocks,
	StateBrowsingBlockCategory,
	StateBrowsingStyles,
	StateBrowsingStyleCategory,
	StateCustomizing,
	StateOrdering,
	StatePricing,
}

// Valid reports whether s is one of States.
func (s State) Valid() bool { return slices.Contains(States, s) }

// ErrUnknownSession is returned when a session is used before it was created.
var ErrUnknownSession = errors.New("unknown session")

// UnknownSessionError names the user whose session is missing.
type UnknownSessionError struct {
	UserID int64
}

func (e *UnknownSessionError) Error() string {
	return fmt.Sprintf("session for user %d does not exist", e.UserID)
}

func (e *UnknownSessionError) Is(target error) bool { return target == ErrUnknownSession }

func (e *UnknownSessionError) Code() string { return "UNKNOWN_SESSION" }

// Profile is the user identity as reported by the transport.
type Profile struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// IsZero reports whether no field is set.
func (p Profile) IsZero() bool { return p == Profile{} }

// DisplayName prefers the full name, then @username.
func (p Profile) DisplayName() string {
	name := p.FirstName
	if p.LastName != "" {
		if name != "" {
			name += " "
		}
		name += p.LastName
	}
	if name == "" && p.Username != "" {
		name = "@" + p.Username
	}
	return name
}

// OrderStatus tracks operator delivery of an order.
type OrderStatus string

const (
	OrderSubmitted OrderStatus = "submitted"
	OrderForwarded OrderStatus = "forwarded"
	OrderFailed    OrderStatus = "failed"
)

// Order is a captured order request. TemplateID is a plain reference and may
// outlive the catalog entry it points to.
type Order struct {
	ID           string      `json:"id"`
	TemplateID   *int64      `json:"template_id,omitempty"`
	Tier         string      `json:"tier"`
	Requirements string      `json:"requirements,omitempty"`
	Status       OrderStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Screen is the position inside the current state, enough to render it again.
type Screen struct {
	Category   string `json:"category,omitempty"`
	Offset     int    `json:"offset,omitempty"`
	TemplateID int64  `json:"template_id,omitempty"`
}

// Session is one user's conversation record.
type Session struct {
	UserID           int64             `json:"user_id"`
	Profile          Profile           `json:"profile"`
	CreatedAt        time.Time         `json:"created_at"`
	LastActivity     time.Time         `json:"last_activity"`
	State            State             `json:"state"`
	Screen           Screen            `json:"screen"`
	SelectedTemplate *int64            `json:"selected_template,omitempty"`
	Customization    map[string]string `json:"customization,omitempty"`
	Requirements     string            `json:"requirements,omitempty"`
	Orders           []Order           `json:"orders,omitempty"`
}

func newSession(userID int64, profile Profile, now time.Time) *Session {
	return &Session{
		UserID:        userID,
		Profile:       profile,
		CreatedAt:     now,
		LastActivity:  now,
		State:         StateRoot,
		Customization: map[string]string{},
	}
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.SelectedTemplate != nil {
		id := *s.SelectedTemplate
		out.SelectedTemplate = &id
	}
	out.Customization = maps.Clone(s.Customization)
	if out.Customization == nil {
		out.Customization = map[string]string{}
	}
	out.Orders = make([]Order, len(s.Orders))
	for i, o := range s.Orders {
		if o.TemplateID != nil {
			id := *o.TemplateID
			o.TemplateID = &id
		}
		out.Orders[i] = o
	}
	return &out
}

// Reset returns the conversation to ROOT and drops in-progress choices.
// Profile, timestamps and order history are kept.
func (s *Session) Reset() {
	s.State = StateRoot
	s.Screen = Screen{}
	s.SelectedTemplate = nil
	s.Customization = map[string]string{}
	s.Requirements = ""
}

// SetOrderStatus updates the status of order id. It reports whether the order exists.
func (s *Session) SetOrderStatus(id string, status OrderStatus) bool {
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			s.Orders[i].Status = status
			return true
		}
	}
	return false
}

// normalize repairs values that can arrive from a persisted snapshot.
func (s *Session) normalize() {
	if !s.State.Valid() {
		s.State = StateRoot
	}
	if s.Customization == nil {
		s.Customization = map[string]string{}
	}
}
