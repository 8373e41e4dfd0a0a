// Package notifier pushes decision alerts to the back-office channel.
package notifier

// TextNotifier is intentionally small so callers never depend on a concrete
// transport.
type TextNotifier interface {
	SendText(text string) error
}
