package usecase

import (
	"context"
	"io"
	"sync"
	"time"

	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var testNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

var (
	secretary = entity.Actor{ID: uuid.New(), Email: "secretary@clinic.test", Role: entity.RoleSecretary}
	admin     = entity.Actor{ID: uuid.New(), Email: "admin@clinic.test", Role: entity.RoleAdmin}
	labTech   = entity.Actor{ID: uuid.New(), Email: "lab@clinic.test", Role: entity.RoleLab}
	xrayTech  = entity.Actor{ID: uuid.New(), Email: "xray@clinic.test", Role: entity.RoleXRay}
)

func createRequest(patient entity.Actor, serviceType entity.ServiceType, price *decimal.Decimal) *dto.CreateServiceRequestRequest {
	return &dto.CreateServiceRequestRequest{
		PatientID:    patient.ID.String(),
		PatientEmail: patient.Email,
		PatientName:  "Maya Haddad",
		DoctorID:     uuid.NewString(),
		DoctorName:   "Dr. Nasser",
		ServiceType:  string(serviceType),
		Price:        price,
	}
}

// recordingDispatcher captures messages synchronously instead of delivering them.
type recordingDispatcher struct {
	mu   sync.Mutex
	msgs []entity.NotificationMessage
}

func (d *recordingDispatcher) Notify(msg entity.NotificationMessage) {
	d.mu.Lock()
	d.msgs = append(d.msgs, msg)
	d.mu.Unlock()
}

func (d *recordingDispatcher) Wait() {}
func (d *recordingDispatcher) Stop() {}

func (d *recordingDispatcher) Messages() []entity.NotificationMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]entity.NotificationMessage, len(d.msgs))
	copy(out, d.msgs)
	return out
}

func (d *recordingDispatcher) Targets() []string {
	var out []string
	for _, m := range d.Messages() {
		out = append(out, m.Target)
	}
	return out
}

type recordingEvents struct {
	mu     sync.Mutex
	events []entity.StatusChangedEvent
	err    error
}

func (p *recordingEvents) PublishStatusChanged(_ context.Context, event entity.StatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingEvents) Close() error { return nil }

func (p *recordingEvents) Events() []entity.StatusChangedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]entity.StatusChangedEvent, len(p.events))
	copy(out, p.events)
	return out
}

// fakePricing is a catalog without a cache.
type fakePricing struct {
	mu          sync.Mutex
	prices      map[string]*entity.ServicePrice
	err         error
	invalidated []string
}

func newFakePricing() *fakePricing {
	return &fakePricing{prices: make(map[string]*entity.ServicePrice)}
}

func (p *fakePricing) add(price entity.ServicePrice) {
	sub := ""
	if price.ServiceSubtype != nil {
		sub = *price.ServiceSubtype
	}
	p.mu.Lock()
	p.prices[string(price.ServiceType)+"|"+sub] = &price
	p.mu.Unlock()
}

func (p *fakePricing) Lookup(_ context.Context, t entity.ServiceType, subtype string) (*entity.ServicePrice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	price, ok := p.prices[string(t)+"|"+subtype]
	if !ok {
		return nil, nil
	}
	cp := *price
	return &cp, nil
}

func (p *fakePricing) Invalidate(_ context.Context, t entity.ServiceType, subtype string) {
	p.mu.Lock()
	p.invalidated = append(p.invalidated, string(t)+"|"+subtype)
	p.mu.Unlock()
}

// mapCounter is an in-process UnreadCounter with the same floor-at-zero rule.
type mapCounter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newMapCounter() *mapCounter {
	return &mapCounter{counts: make(map[string]int64)}
}

func (c *mapCounter) Incr(_ context.Context, email string) error {
	c.mu.Lock()
	c.counts[email]++
	c.mu.Unlock()
	return nil
}

func (c *mapCounter) Decr(_ context.Context, email string, by int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[email] -= by
	if c.counts[email] < 0 {
		c.counts[email] = 0
	}
	return nil
}

func (c *mapCounter) Reset(_ context.Context, email string) error {
	c.mu.Lock()
	c.counts[email] = 0
	c.mu.Unlock()
	return nil
}

func (c *mapCounter) Get(_ context.Context, email string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[email], nil
}

type recordingChanges struct {
	mu      sync.Mutex
	changes []entity.NotificationChange
}

func (p *recordingChanges) Publish(_ context.Context, change entity.NotificationChange) error {
	p.mu.Lock()
	p.changes = append(p.changes, change)
	p.mu.Unlock()
	return nil
}

func (p *recordingChanges) Changes() []entity.NotificationChange {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]entity.NotificationChange, len(p.changes))
	copy(out, p.changes)
	return out
}
