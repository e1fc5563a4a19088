package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/google/uuid"
)

// DefaultFeedCapacity bounds the toasts kept per session.
const DefaultFeedCapacity = 50

// Notification is one user-facing toast.
type Notification struct {
	ID        string                  `json:"id"`
	Level     enums.NotificationLevel `json:"level"`
	Message   string                  `json:"message"`
	CreatedAt time.Time               `json:"createdAt"`
}

// Notifier surfaces toasts to the user.
type Notifier interface {
	Notify(ctx context.Context, level enums.NotificationLevel, message string)
}

// Success and Error are shorthands used by the services.
func Success(ctx context.Context, n Notifier, message string) {
	n.Notify(ctx, enums.NotificationLevelSuccess, message)
}

func Error(ctx context.Context, n Notifier, message string) {
	n.Notify(ctx, enums.NotificationLevelError, message)
}

// Feed queues toasts until the UI drains them. When full the oldest toast is dropped.
type Feed struct {
	mu       sync.Mutex
	capacity int
	items    []Notification
	now      func() time.Time
}

// NewFeed returns a feed holding at most capacity toasts.
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultFeedCapacity
	}
	return &Feed{capacity: capacity, now: time.Now}
}

func (f *Feed) Notify(_ context.Context, level enums.NotificationLevel, message string) {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	n := Notification{ID: id.String(), Level: level, Message: message, CreatedAt: f.now().UTC()}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) >= f.capacity {
		f.items = append(f.items[:0], f.items[len(f.items)-f.capacity+1:]...)
	}
	f.items = append(f.items, n)
}

// Pending returns the queued toasts without removing them.
func (f *Feed) Pending() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Notification{}, f.items...)
}

// Drain returns the queued toasts oldest first and empties the feed.
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.items
	f.items = nil
	if out == nil {
		return []Notification{}
	}
	return out
}

// LoggingNotifier logs and counts every toast before passing it on.
type LoggingNotifier struct {
	next    Notifier
	logg    *logger.Logger
	metrics *metrics.Storefront
}

func NewLoggingNotifier(next Notifier, logg *logger.Logger, m *metrics.Storefront) *LoggingNotifier {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LoggingNotifier{next: next, logg: logg, metrics: m}
}

func (l *LoggingNotifier) Notify(ctx context.Context, level enums.NotificationLevel, message string) {
	logCtx := l.logg.WithFields(ctx, map[string]any{"level": level.String(), "toast": message})
	if level == enums.NotificationLevelError {
		l.logg.Warn(logCtx, "error notification")
	} else {
		l.logg.Debug(logCtx, "notification")
	}
	l.metrics.IncNotification(level.String())
	if l.next != nil {
		l.next.Notify(ctx, level, message)
	}
}
