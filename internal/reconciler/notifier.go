package reconciler

import "log"

// Notifier receives the user-facing outcome of every cart operation, the
// CLI/UI equivalent of a toast. Implementations must not block.
type Notifier interface {
	Info(msg string)
	Error(msg string)
}

// LogNotifier writes notifications to a standard logger.
type LogNotifier struct {
	Logger *log.Logger
}

func (n LogNotifier) Info(msg string) {
	n.Logger.Printf("%s", msg)
}

func (n LogNotifier) Error(msg string) {
	n.Logger.Printf("error: %s", msg)
}

// NopNotifier drops all notifications.
type NopNotifier struct{}

func (NopNotifier) Info(string)  {}
func (NopNotifier) Error(string) {}
