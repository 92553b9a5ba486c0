package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"clinic-workflow/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const realtimeChannelPrefix = "notifications:feed:"

// ErrDuplicateSubscription is returned when a subscription key is already registered.
var ErrDuplicateSubscription = errors.New("subscription key already registered")

// ChangePublisher broadcasts notification row changes to live subscribers.
type ChangePublisher interface {
	Publish(ctx context.Context, change entity.NotificationChange) error
}

// RealtimeFeed is a per-recipient change feed over Redis Pub/Sub. Each recipient
// address has its own channel so a subscriber only ever sees its own rows.
type RealtimeFeed struct {
	redisClient *redis.Client
	log         *logrus.Logger

	mu   sync.Mutex
	subs map[string]*Subscription
}

func NewRealtimeFeed(redisClient *redis.Client, log *logrus.Logger) *RealtimeFeed {
	return &RealtimeFeed{
		redisClient: redisClient,
		log:         log,
		subs:        make(map[string]*Subscription),
	}
}

func feedChannel(email string) string {
	return realtimeChannelPrefix + email
}

func (f *RealtimeFeed) Publish(ctx context.Context, change entity.NotificationChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if err := f.redisClient.Publish(ctx, feedChannel(change.Recipient), payload).Err(); err != nil {
		return fmt.Errorf("publish change for %s: %w", change.Recipient, err)
	}
	return nil
}

// Subscribe opens a subscription for email under a fresh "email:nonce" key.
func (f *RealtimeFeed) Subscribe(ctx context.Context, email string) (*Subscription, error) {
	return f.SubscribeKey(ctx, email, email+":"+uuid.NewString())
}

// SubscribeKey opens a subscription under an explicit key. A key that is
// already open is rejected with ErrDuplicateSubscription.
func (f *RealtimeFeed) SubscribeKey(ctx context.Context, email, key string) (*Subscription, error) {
	f.mu.Lock()
	if _, exists := f.subs[key]; exists {
		f.mu.Unlock()
		return nil, ErrDuplicateSubscription
	}
	sub := &Subscription{
		Key:    key,
		Email:  email,
		feed:   f,
		events: make(chan entity.NotificationChange, 64),
		done:   make(chan struct{}),
	}
	f.subs[key] = sub
	f.mu.Unlock()

	ps := f.redisClient.Subscribe(ctx, feedChannel(email))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		f.remove(key)
		return nil, fmt.Errorf("subscribe %s: %w", key, err)
	}
	sub.pubsub = ps

	go sub.pump()

	f.log.Debugf("Opened realtime subscription %s", key)
	return sub, nil
}

// Active returns the number of open subscriptions.
func (f *RealtimeFeed) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *RealtimeFeed) remove(key string) {
	f.mu.Lock()
	delete(f.subs, key)
	f.mu.Unlock()
}

// Subscription is one live listener on a recipient's channel.
type Subscription struct {
	Key   string
	Email string

	feed      *RealtimeFeed
	pubsub    *redis.PubSub
	events    chan entity.NotificationChange
	done      chan struct{}
	closeOnce sync.Once
}

// Events delivers decoded changes until the subscription is closed.
func (s *Subscription) Events() <-chan entity.NotificationChange {
	return s.events
}

// Close unsubscribes and releases the key. Safe to call more than once.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
		s.feed.remove(s.Key)
		s.feed.log.Debugf("Closed realtime subscription %s", s.Key)
	})
	return err
}

func (s *Subscription) pump() {
	defer close(s.events)

	for msg := range s.pubsub.Channel() {
		var change entity.NotificationChange
		if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
			s.feed.log.Warnf("Failed to decode change on %s: %+v", msg.Channel, err)
			continue
		}
		if change.Recipient != s.Email {
			continue
		}
		select {
		case s.events <- change:
		case <-s.done:
			return
		}
	}
}
