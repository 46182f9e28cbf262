package conversation

import (
	"strings"

	"github.com/m3rciful/themebot/bot/session"
	"github.com/m3rciful/themebot/core/telegram/callbacks"
)

// Action names what an inbound event asks for.
type Action string

const (
	ActionStart         Action = "start"
	ActionTemplates     Action = "templates"
	ActionBlocks        Action = "blocks"
	ActionStyles        Action = "styles"
	ActionCustomization Action = "customization"
	ActionOrder         Action = "order"
	ActionPricing       Action = "pricing"
	ActionHelp          Action = "help"
	ActionContacts      Action = "contacts"
	ActionBackToMain    Action = "back_to_main"
	ActionCategory      Action = "category"
	ActionView          Action = "view"
	ActionSelect        Action = "select"
	ActionCustomize     Action = "customize"
	ActionPreview       Action = "preview"
	ActionSave          Action = "save"
	ActionMore          Action = "more"
	// ActionText carries a free-text message in Param.
	ActionText Action = "text"
	// ActionUnknown is anything the decoder does not recognise.
	ActionUnknown Action = "unknown"
)

// CallbackActions are the actions buttons can carry. The transport registers one
// callback endpoint per entry.
var CallbackActions = []Action{
	ActionStart,
	ActionTemplates,
	ActionBlocks,
	ActionStyles,
	ActionCustomization,
	ActionOrder,
	ActionPricing,
	ActionHelp,
	ActionContacts,
	ActionBackToMain,
	ActionCategory,
	ActionView,
	ActionSelect,
	ActionCustomize,
	ActionPreview,
	ActionSave,
	ActionMore,
}

var knownActions = func() map[Action]struct{} {
	m := make(map[Action]struct{}, len(CallbackActions))
	for _, a := range CallbackActions {
		m[a] = struct{}{}
	}
	return m
}()

// ParseAction maps a raw key to an Action; unrecognised keys yield ActionUnknown.
func ParseAction(raw string) Action {
	a := Action(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := knownActions[a]; ok {
		return a
	}
	return ActionUnknown
}

// Event is one inbound user interaction.
type Event struct {
	UserID  int64
	Profile session.Profile
	Action  Action
	Param   string
	// Entry events come from menu commands. They apply from the main menu
	// whatever state the user is in.
	Entry bool
}

// EncodeCallback renders the callback data for a button.
func EncodeCallback(action Action, param string) string {
	return callbacks.Encode(string(action), param)
}

// DecodeCallback parses callback data. It accepts the button encoding
// (\f<action>|<param>) and the plain <action>:<param> form.
func DecodeCallback(data string) (Action, string) {
	var key, param string
	if rest, ok := strings.CutPrefix(data, "\f"); ok {
		key, param, _ = strings.Cut(rest, "|")
	} else {
		key, param, _ = strings.Cut(data, ":")
	}
	action := ParseAction(key)
	if action == ActionUnknown {
		return ActionUnknown, strings.TrimSpace(data)
	}
	return action, strings.TrimSpace(param)
}

// CallbackEvent builds an event from decoded callback parts.
func CallbackEvent(userID int64, profile session.Profile, key, param string) Event {
	return Event{UserID: userID, Profile: profile, Action: ParseAction(key), Param: strings.TrimSpace(param)}
}

// TextEvent builds a free-text event.
func TextEvent(userID int64, profile session.Profile, text string) Event {
	return Event{UserID: userID, Profile: profile, Action: ActionText, Param: strings.TrimSpace(text)}
}
