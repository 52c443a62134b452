package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nhle/mcp-todo/internal/model"
	"github.com/nhle/mcp-todo/internal/store"
)

// checkTimeout bounds a single deadline check.
const checkTimeout = 30 * time.Second

// ItemStore is the subset of the store the notifier needs.
type ItemStore interface {
	SearchItems(ctx context.Context, filter store.ItemFilter, sort store.ItemSort, page store.Page) ([]model.TodoItem, error)
	UpdateItem(ctx context.Context, id string, patch model.ItemPatch) (*model.TodoItem, error)
}

// Sender delivers a notification for one item.
type Sender interface {
	Send(ctx context.Context, item model.TodoItem) error
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) { n.now = now }
}

// WithLogger sets the logger used for failures and sends.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) { n.logger = logger }
}

// Notifier periodically looks for open items whose due date falls within
// the window and notifies each one once, snoozing it for the window length.
type Notifier struct {
	store    ItemStore
	sender   Sender
	interval time.Duration
	window   time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
}

// New creates a Notifier. Non-positive durations fall back to one minute
// for the interval and one hour for the window.
func New(s ItemStore, sender Sender, interval, window time.Duration, opts ...Option) *Notifier {
	if interval <= 0 {
		interval = time.Minute
	}
	if window <= 0 {
		window = time.Hour
	}
	n := &Notifier{
		store:    s,
		sender:   sender,
		interval: interval,
		window:   window,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Start launches the background loop. Calling Start on a running notifier
// does nothing.
func (n *Notifier) Start() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	n.running = true
	n.cancel = cancel
	n.doneCh = make(chan struct{})

	n.logger.Info("deadline notifier started", "interval", n.interval, "window", n.window)
	go n.run(ctx, n.doneCh)
}

// Stop halts the loop. An in-flight check sees its context cancelled and
// Stop waits for it to return.
func (n *Notifier) Stop() {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return
	}
	n.cancel()
	done := n.doneCh
	n.running = false
	n.mu.Unlock()

	<-done
	n.logger.Info("deadline notifier stopped")
}

func (n *Notifier) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
			if _, err := n.CheckOnce(checkCtx); err != nil {
				n.logger.Error("checking deadlines", "error", err)
			}
			cancel()
		}
	}
}

// CheckOnce runs a single deadline check and returns how many items were
// notified. A failed send or snooze for one item is logged and does not
// stop the others; only a failed search is returned.
func (n *Notifier) CheckOnce(ctx context.Context) (int, error) {
	now := n.now().UTC()
	until := now.Add(n.window)

	items, err := n.store.SearchItems(ctx,
		store.ItemFilter{
			Statuses:  []model.Status{model.StatusPending, model.StatusInProgress},
			DueAfter:  &now,
			DueBefore: &until,
		},
		store.ItemSort{Field: store.SortByDueDate, Order: store.SortAsc},
		store.Page{},
	)
	if err != nil {
		return 0, fmt.Errorf("searching upcoming items: %w", err)
	}

	sent := 0
	for _, item := range items {
		if item.DueDate == nil || item.SnoozedUntil != nil {
			continue
		}
		if err := n.sender.Send(ctx, item); err != nil {
			n.logger.Warn("sending deadline notification", "item_id", item.ID, "error", err)
			continue
		}
		snooze := until
		if _, err := n.store.UpdateItem(ctx, item.ID, model.ItemPatch{SnoozedUntil: model.Some(&snooze)}); err != nil {
			n.logger.Warn("snoozing notified item", "item_id", item.ID, "error", err)
			continue
		}
		n.logger.Debug("deadline notification sent", "item_id", item.ID, "due_date", item.DueDate)
		sent++
	}
	return sent, nil
}
