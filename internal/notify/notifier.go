package notify

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// Notifier delivers one user-facing notification.
type Notifier interface {
	Notify(title, body string) error
}

// DesktopNotifier shows native desktop notifications.
type DesktopNotifier struct{}

func (DesktopNotifier) Notify(title, body string) error {
	return beeep.Notify(title, body, "")
}

// LogNotifier writes notifications to the log instead of the desktop, for
// headless or server runs.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(title, body string) error {
	n.Logger.Info("notification", "title", title, "body", body)
	return nil
}
