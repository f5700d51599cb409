package whatsapp

import (
	"context"
	"time"
)

// SendLog is one entry of the in-memory send history.
type SendLog struct {
	When    time.Time `json:"when"`
	Contact string    `json:"contact"`
	Kind    string    `json:"kind"`
	Snippet string    `json:"snippet"`
	Channel string    `json:"channel"`
}

// Speaker voices progress and failures to the user.
type Speaker interface {
	Say(ctx context.Context, text string)
}

// ContactResolver turns a spoken name into a phone number when one is
// known, otherwise it returns the name.
type ContactResolver interface {
	ResolveContact(ctx context.Context, name string) string
}

// URLOpener opens links in a browser.
type URLOpener interface {
	Available(preferEdge bool) bool
	OpenURL(ctx context.Context, target string, preferEdge bool) error
}
