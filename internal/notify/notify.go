// Package notify pushes short operational notices to messaging backends.
package notify

import "context"

// Notifier delivers one operational notice.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Multi fans a notice out to every backend. All backends are attempted; the
// first error is returned.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, text string) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, text); err != nil && first == nil {
			first = err
		}
	}
	return first
}
