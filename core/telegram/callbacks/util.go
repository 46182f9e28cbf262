package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// MaxDataLen is the Telegram limit for callback_data, in bytes.
const MaxDataLen = 64

// Encode renders unique and payload the way telebot encodes tele.Btn data: \f<unique>|<payload>.
func Encode(unique, payload string) string {
	if payload == "" {
		return "\f" + unique
	}
	return "\f" + unique + "|" + payload
}

// Fits reports whether the encoded callback data stays within MaxDataLen.
func Fits(unique, payload string) bool {
	return len(Encode(unique, payload)) <= MaxDataLen
}

// ParseCallbackData splits callback data into unique and payload.
// Callbacks already matched by telebot carry Unique separately; generic OnCallback
// updates still hold the raw \f<unique>|<payload> form.
func ParseCallbackData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	unique, payload, _ := strings.Cut(raw, "|")
	return strings.TrimSpace(unique), payload
}

// CallbackPayload returns the payload part of the current callback.
func CallbackPayload(c tele.Context) string {
	_, p := ParseCallbackData(c.Callback())
	return p
}
