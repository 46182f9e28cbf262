package conversation

import "github.com/m3rciful/themebot/bot/session"

// Kind selects how a descriptor is delivered.
type Kind string

const (
	KindText  Kind = "text"
	KindPhoto Kind = "photo"
)

// ParseModeHTML is the only parse mode the engine emits.
const ParseModeHTML = "HTML"

// Button is one inline keyboard button. URL buttons open a link and carry no action.
type Button struct {
	Text   string
	Action Action
	Param  string
	URL    string
}

// Data returns the callback data for the button.
func (b Button) Data() string {
	return EncodeCallback(b.Action, b.Param)
}

// Descriptor is a transport-agnostic outbound message. For photos Body is the caption.
type Descriptor struct {
	Kind      Kind
	Body      string
	Photo     string
	Markup    [][]Button
	ParseMode string
}

// Buttons flattens the markup.
func (d Descriptor) Buttons() []Button {
	var out []Button
	for _, row := range d.Markup {
		out = append(out, row...)
	}
	return out
}

// Outcome values reported in Result.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeFail     = "fail"
)

// Result is the outcome of one dispatch.
type Result struct {
	UserID      int64
	Action      Action
	From        session.State
	State       session.State
	Descriptors []Descriptor
	Outcome     string
	// Err is the error the dispatch resolved, already rendered into Descriptors.
	Err error
}
