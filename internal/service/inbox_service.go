package service

import (
	"context"
	"fmt"
	"sync"

	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

// ChangeSource is the subscription side of the realtime feed.
type ChangeSource interface {
	Subscribe(ctx context.Context, email string) (*Subscription, error)
}

// InboxService opens live inbox views for a recipient.
type InboxService struct {
	notificationRepo repository.NotificationRepository
	counter          UnreadCounter
	feed             ChangeSource
	listLimit        int
	log              *logrus.Logger
}

func NewInboxService(notificationRepo repository.NotificationRepository, counter UnreadCounter, feed ChangeSource, listLimit int, log *logrus.Logger) *InboxService {
	return &InboxService{
		notificationRepo: notificationRepo,
		counter:          counter,
		feed:             feed,
		listLimit:        listLimit,
		log:              log,
	}
}

// Open subscribes first and then loads the initial list so no change committed
// in between is missed. The view closes itself when ctx ends.
func (s *InboxService) Open(ctx context.Context, email string) (*InboxView, error) {
	sub, err := s.feed.Subscribe(ctx, email)
	if err != nil {
		return nil, err
	}

	rows, err := s.notificationRepo.FindByUserEmail(ctx, email, s.listLimit)
	if err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("load inbox for %s: %w", email, err)
	}

	unread, err := s.counter.Get(ctx, email)
	if err != nil {
		s.log.Warnf("Failed to read unread count for %s, counting loaded rows: %+v", email, err)
		unread = countUnread(rows)
	}

	view := &InboxView{
		email:   email,
		limit:   s.listLimit,
		rows:    rows,
		unread:  unread,
		sub:     sub,
		updates: make(chan entity.NotificationChange, 64),
		done:    make(chan struct{}),
		log:     s.log,
	}
	go view.run(ctx)

	return view, nil
}

// InboxView is a recipient's notification list kept current by the realtime feed.
type InboxView struct {
	email string
	limit int
	log   *logrus.Logger

	mu     sync.RWMutex
	rows   []entity.Notification
	unread int64

	sub       *Subscription
	updates   chan entity.NotificationChange
	done      chan struct{}
	closeOnce sync.Once
}

// Snapshot returns a copy of the current list and unread count.
func (v *InboxView) Snapshot() ([]entity.Notification, int64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	rows := make([]entity.Notification, len(v.rows))
	copy(rows, v.rows)
	return rows, v.unread
}

// Updates carries every change applied to the view. It is closed with the view.
func (v *InboxView) Updates() <-chan entity.NotificationChange {
	return v.updates
}

// Done is closed once the view has shut down.
func (v *InboxView) Done() <-chan struct{} {
	return v.done
}

func (v *InboxView) Close() {
	v.closeOnce.Do(func() {
		if err := v.sub.Close(); err != nil {
			v.log.Debugf("Failed to close subscription for %s: %+v", v.email, err)
		}
	})
}

func (v *InboxView) run(ctx context.Context) {
	defer close(v.done)
	defer close(v.updates)
	defer v.Close()

	events := v.sub.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-events:
			if !ok {
				return
			}
			v.mu.Lock()
			v.rows, v.unread = ApplyChange(v.rows, v.unread, change, v.limit)
			v.mu.Unlock()

			select {
			case v.updates <- change:
			default:
				v.log.Debugf("Inbox view for %s is not draining updates, dropping one", v.email)
			}
		}
	}
}

// ApplyChange folds one change into a newest-first list and its unread count.
// Inserts of a row already present are ignored. The list is capped at limit
// when limit > 0.
func ApplyChange(rows []entity.Notification, unread int64, change entity.NotificationChange, limit int) ([]entity.Notification, int64) {
	idx := -1
	for i := range rows {
		if rows[i].ID == change.Row.ID {
			idx = i
			break
		}
	}

	switch change.Type {
	case entity.ChangeInsert:
		if idx >= 0 {
			return rows, unread
		}
		rows = append([]entity.Notification{change.Row}, rows...)
		if !change.Row.Read {
			unread++
		}
		if limit > 0 && len(rows) > limit {
			rows = rows[:limit]
		}

	case entity.ChangeUpdate:
		if idx < 0 {
			// Row is outside the loaded window; only the read flag matters.
			if change.Row.Read && unread > 0 {
				unread--
			}
			return rows, unread
		}
		before := rows[idx]
		rows[idx] = change.Row
		switch {
		case !before.Read && change.Row.Read:
			unread--
		case before.Read && !change.Row.Read:
			unread++
		}

	case entity.ChangeDelete:
		if idx < 0 {
			if !change.Row.Read && unread > 0 {
				unread--
			}
			return rows, unread
		}
		if !rows[idx].Read {
			unread--
		}
		rows = append(rows[:idx], rows[idx+1:]...)
	}

	if unread < 0 {
		unread = 0
	}
	return rows, unread
}

func countUnread(rows []entity.Notification) int64 {
	var n int64
	for _, row := range rows {
		if !row.Read {
			n++
		}
	}
	return n
}
