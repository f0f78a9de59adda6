// Package bridge carries notification requests from the web content to the host.
//
// The channel is one-directional and fire-and-forget: content calls send(title, body)
// and never learns what happened next. On the host side every message is handed to a
// Handler exactly once, in the order it was sent.
package bridge

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

// EventName is the web view runtime event the injected bridge emits.
const EventName = "lounge:notification"

var errEmptyPayload = errors.New("empty bridge payload")

// Message is the only shape that crosses the bridge. Page identifies one load of
// the injected script and Seq counts its sends from zero; both are empty for
// messages that do not come from a page.
type Message struct {
	Page  string `json:"page,omitempty"`
	Seq   uint64 `json:"seq"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Decode converts the arguments of a runtime event into a Message. The first
// argument is either the decoded object or its JSON text.
func Decode(data ...interface{}) (Message, error) {
	var m Message
	if len(data) == 0 || data[0] == nil {
		return m, errEmptyPayload
	}

	raw, ok := data[0].(string)
	if !ok {
		b, err := sonic.Marshal(data[0])
		if err != nil {
			return m, fmt.Errorf("re-encode bridge payload: %w", err)
		}
		raw = string(b)
	}
	if err := sonic.UnmarshalString(raw, &m); err != nil {
		return m, fmt.Errorf("decode bridge payload: %w", err)
	}
	return m, nil
}
