package shim

// Envelope is the notification message the hosted application posts to its worker.
// The Lounge sends {type, chanId, timestamp, title, body}; only type, title and
// body matter here.
type Envelope struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// envelope recognizes notification requests among worker messages. Decoded JSON
// objects and Envelope values are understood; everything else passes through.
func (c *Context) envelope(msg any) (Envelope, bool) {
	switch m := msg.(type) {
	case Envelope:
		return m, m.Type == c.opts.Tag
	case *Envelope:
		if m == nil {
			return Envelope{}, false
		}
		return *m, m.Type == c.opts.Tag
	case map[string]any:
		tag, _ := m["type"].(string)
		if tag != c.opts.Tag {
			return Envelope{}, false
		}
		title, _ := m["title"].(string)
		body, _ := m["body"].(string)
		return Envelope{Type: tag, Title: title, Body: body}, true
	}
	return Envelope{}, false
}
