package card

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/memorygym-backend/internal/domain"
)

// NotifyChannel is the channel the cards trigger notifies with
// "<user_id>:<subject_id>" payloads.
const NotifyChannel = "cards_changed"

// ErrTooManyWatchers is returned by Watch when a watch limit is reached.
var ErrTooManyWatchers = fmt.Errorf("too many open card streams: %w", domain.ErrConflict)

// Feed streams snapshots of a subject's cards. Each watcher holds one pooled
// connection in LISTEN mode for its whole lifetime, so the number of
// watchers is capped below the pool size.
type Feed struct {
	pool   *pgxpool.Pool
	repo   *Repo
	log    *slog.Logger
	limits *watchLimits
}

// FeedOption configures a Feed.
type FeedOption func(*Feed)

// WithWatchLimits caps concurrent watchers overall and per user. Zero
// leaves a bound unlimited.
func WithWatchLimits(total, perUser int) FeedOption {
	return func(f *Feed) { f.limits = newWatchLimits(total, perUser) }
}

// NewFeed creates a Feed reading snapshots through repo.
func NewFeed(log *slog.Logger, pool *pgxpool.Pool, repo *Repo, opts ...FeedOption) *Feed {
	f := &Feed{
		pool:   pool,
		repo:   repo,
		log:    log.With("component", "card_feed"),
		limits: newWatchLimits(0, 0),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Watch sends the current cards of the subject, then a fresh snapshot after
// every change. A slow reader only sees the latest snapshot. The channel is
// closed when ctx is done or the connection fails.
func (f *Feed) Watch(ctx context.Context, userID, subjectID uuid.UUID) (<-chan []domain.Card, error) {
	done, err := f.limits.acquire(userID)
	if err != nil {
		return nil, err
	}

	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		done()
		return nil, fmt.Errorf("acquire listen conn: %w", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		conn.Release()
		done()
		return nil, fmt.Errorf("listen %s: %w", NotifyChannel, err)
	}

	first, err := f.repo.ListBySubject(ctx, userID, subjectID)
	if err != nil {
		f.release(conn)
		done()
		return nil, err
	}

	out := make(chan []domain.Card, 1)
	out <- first

	go f.loop(ctx, conn, done, userID, subjectID, out)

	return out, nil
}

// loop frees the connection and then the watcher slot before closing out,
// so a reader that saw the close may watch again at once.
func (f *Feed) loop(ctx context.Context, conn *pgxpool.Conn, done func(), userID, subjectID uuid.UUID, out chan []domain.Card) {
	defer close(out)
	defer done()
	defer f.release(conn)

	key := userID.String() + ":" + subjectID.String()

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() == nil {
				f.log.ErrorContext(ctx, "wait for notification",
					slog.String("subject_id", subjectID.String()),
					slog.String("error", err.Error()),
				)
			}
			return
		}
		if n.Payload != key {
			continue
		}

		cards, err := f.repo.ListBySubject(ctx, userID, subjectID)
		if err != nil {
			if ctx.Err() == nil {
				f.log.ErrorContext(ctx, "reload cards",
					slog.String("subject_id", subjectID.String()),
					slog.String("error", err.Error()),
				)
			}
			return
		}
		publishLatest(out, cards)
	}
}

// publishLatest replaces an unread snapshot instead of blocking. out must
// have capacity 1 and a single sender.
func publishLatest(out chan []domain.Card, cards []domain.Card) {
	select {
	case out <- cards:
		return
	default:
	}
	select {
	case <-out:
	default:
	}
	out <- cards
}

func (f *Feed) release(conn *pgxpool.Conn) {
	if !conn.Conn().IsClosed() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, _ = conn.Exec(ctx, "UNLISTEN "+NotifyChannel)
		cancel()
	}
	conn.Release()
}

// watchLimits counts open watchers overall and per user.
type watchLimits struct {
	total   int
	perUser int

	mu     sync.Mutex
	open   int
	byUser map[uuid.UUID]int
}

func newWatchLimits(total, perUser int) *watchLimits {
	return &watchLimits{total: total, perUser: perUser, byUser: make(map[uuid.UUID]int)}
}

// acquire reserves a watcher slot for userID. The returned func frees it and
// is safe to call more than once.
func (l *watchLimits) acquire(userID uuid.UUID) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.total > 0 && l.open >= l.total {
		return nil, ErrTooManyWatchers
	}
	if l.perUser > 0 && l.byUser[userID] >= l.perUser {
		return nil, ErrTooManyWatchers
	}

	l.open++
	l.byUser[userID]++

	var once sync.Once
	return func() { once.Do(func() { l.release(userID) }) }, nil
}

func (l *watchLimits) release(userID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.open--
	l.byUser[userID]--
	if l.byUser[userID] <= 0 {
		delete(l.byUser, userID)
	}
}

func (l *watchLimits) count(userID uuid.UUID) (total, user int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.open, l.byUser[userID]
}
