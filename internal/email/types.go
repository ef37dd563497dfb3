package email

import "encoding/json"

// Message is one outbound delivery of a notification.
type Message struct {
	Type     string
	To       string
	Cc       []string
	Subject  string
	Body     string
	Metadata json.RawMessage
}
