package reply

import (
	"context"
	"fmt"
)

// ImageMarker is the reply trigger submitted for an image-only send.
const ImageMarker = "[Image uploaded]"

// Responder produces the assistant's answer to a reply trigger.
type Responder interface {
	Reply(ctx context.Context, content string) (string, error)
}

// Echo answers deterministically by quoting the trigger.
type Echo struct {
	Name string
}

func (e Echo) Reply(_ context.Context, content string) (string, error) {
	return EchoText(e.Name, content), nil
}

// EchoText formats the canned reply for content.
func EchoText(name, content string) string {
	if name == "" {
		name = "Assistant"
	}
	return fmt.Sprintf("%s's reply to: \"%s\"", name, content)
}
