package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/domain/repository"
	"clinic-workflow/pkg/clock"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
)

// NotificationDispatcher delivers notifications in the background. Notify never
// blocks on the store and never reports delivery failures to the caller.
type NotificationDispatcher interface {
	Notify(msg entity.NotificationMessage)
	// Wait blocks until every message accepted so far has been delivered or dropped.
	Wait()
	Stop()
}

type DispatcherConfig struct {
	Shards    int
	QueueSize int
}

// delivery is one message resolved to one concrete recipient.
type delivery struct {
	recipient string
	msg       entity.NotificationMessage
}

// notificationDispatcher is an in-process outbox.
//
// A single router goroutine takes messages in FIFO order and expands role
// targets. Each concrete delivery goes to the shard owning its recipient
// (xxhash of the address), and each shard is drained by one worker, so two
// messages for the same recipient are inserted in the order Notify saw them.
type notificationDispatcher struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	counter          UnreadCounter
	publisher        ChangePublisher
	clock            clock.Clock
	log              *logrus.Logger

	inbox   chan entity.NotificationMessage
	shards  []chan delivery
	pending sync.WaitGroup
	workers conc.WaitGroup

	// Notify holds the read lock while enqueueing; Stop takes the write lock
	// to flip stopped so no message slips in after the final drain.
	mu       sync.RWMutex
	stopChan chan struct{}
	stopped  atomic.Bool
}

func NewNotificationDispatcher(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	counter UnreadCounter,
	publisher ChangePublisher,
	clk clock.Clock,
	cfg DispatcherConfig,
	log *logrus.Logger,
) NotificationDispatcher {
	if cfg.Shards <= 0 {
		cfg.Shards = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}

	d := &notificationDispatcher{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		counter:          counter,
		publisher:        publisher,
		clock:            clk,
		log:              log,
		inbox:            make(chan entity.NotificationMessage, cfg.QueueSize),
		shards:           make([]chan delivery, cfg.Shards),
		stopChan:         make(chan struct{}),
	}

	for i := range d.shards {
		shard := make(chan delivery, cfg.QueueSize)
		d.shards[i] = shard
		d.workers.Go(func() { d.runShard(shard) })
	}
	d.workers.Go(d.route)

	return d
}

func (d *notificationDispatcher) Notify(msg entity.NotificationMessage) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped.Load() {
		d.log.Warnf("Dispatcher stopped, dropping notification %q for %s", msg.Title, msg.Target)
		return
	}

	d.pending.Add(1)
	d.inbox <- msg
}

func (d *notificationDispatcher) Wait() {
	d.pending.Wait()
}

// Stop drains everything already accepted, then shuts the workers down.
// Safe to call multiple times.
func (d *notificationDispatcher) Stop() {
	d.mu.Lock()
	first := d.stopped.CompareAndSwap(false, true)
	d.mu.Unlock()
	if !first {
		return
	}

	d.pending.Wait()
	close(d.stopChan)
	d.workers.Wait()
	d.log.Info("NotificationDispatcher stopped")
}

func (d *notificationDispatcher) route() {
	for {
		select {
		case <-d.stopChan:
			return
		case msg := <-d.inbox:
			for _, recipient := range d.expand(msg.Target) {
				d.pending.Add(1)
				d.shards[d.shardFor(recipient)] <- delivery{recipient: recipient, msg: msg}
			}
			d.pending.Done()
		}
	}
}

func (d *notificationDispatcher) runShard(shard chan delivery) {
	for {
		select {
		case <-d.stopChan:
			return
		case job := <-shard:
			d.deliver(job)
			d.pending.Done()
		}
	}
}

func (d *notificationDispatcher) shardFor(recipient string) int {
	return int(xxhash.Sum64String(recipient) % uint64(len(d.shards)))
}

// expand resolves a target to concrete addresses. Anything containing "@" is an
// address; everything else is a role token looked up at dispatch time.
func (d *notificationDispatcher) expand(target string) []string {
	target = strings.TrimSpace(target)
	if target == "" {
		d.log.Warn("Dropping notification with empty target")
		return nil
	}
	if strings.Contains(target, "@") {
		return []string{normalizeEmail(target)}
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	emails, err := d.userRepo.FindEmailsByRole(ctx, target)
	if err != nil {
		d.log.Warnf("Failed to resolve recipients for role %q: %+v", target, err)
		return nil
	}
	if len(emails) == 0 {
		d.log.Debugf("No active users hold role %q", target)
		return nil
	}

	// Stored addresses may carry capitals; readers look rows up by the
	// lowercased address.
	seen := make(map[string]bool, len(emails))
	out := make([]string, 0, len(emails))
	for _, email := range emails {
		email = normalizeEmail(email)
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		out = append(out, email)
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (d *notificationDispatcher) deliver(job delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	row := &entity.Notification{
		ID:        uuid.New(),
		UserEmail: job.recipient,
		Title:     job.msg.Title,
		Message:   job.msg.Message,
		Type:      job.msg.Type,
		RelatedID: SanitizeRelatedID(job.msg.RelatedID),
		CreatedAt: d.clock.Now(),
	}
	if !row.Type.Valid() {
		row.Type = entity.NotificationTypeInfo
	}
	if job.msg.RelatedTable != "" {
		table := job.msg.RelatedTable
		row.RelatedTable = &table
	}

	if err := d.notificationRepo.Create(ctx, row); err != nil {
		d.log.Warnf("Failed to create notification for %s: %+v", job.recipient, err)
		return
	}

	if err := d.counter.Incr(ctx, job.recipient); err != nil {
		d.log.Warnf("Failed to bump unread counter: %+v", err)
	}

	change := entity.NotificationChange{
		Type:      entity.ChangeInsert,
		Recipient: job.recipient,
		Row:       *row,
		At:        row.CreatedAt,
	}
	if err := d.publisher.Publish(ctx, change); err != nil {
		d.log.Warnf("Failed to publish notification insert: %+v", err)
	}
}

// SanitizeRelatedID keeps id only when it is a canonical 36-character UUID.
// Request ids are integers and would be rejected by the uuid column.
func SanitizeRelatedID(id string) *string {
	if len(id) != 36 {
		return nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	return &id
}
