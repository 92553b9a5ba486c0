// Package memory provides thread-safe, in-memory implementations of the domain
// repositories for tests and local development. They follow the gorm
// implementations' contracts: lookups of missing rows return nil, nil and
// conditional updates report affected rows.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/domain/repository"

	"github.com/google/uuid"
)

var (
	_ repository.ServiceRequestRepository       = (*ServiceRequestRepository)(nil)
	_ repository.NotificationRepository         = (*NotificationRepository)(nil)
	_ repository.UserRepository                 = (*UserRepository)(nil)
	_ repository.ServicePriceRepository         = (*ServicePriceRepository)(nil)
	_ repository.AuditLogRepository             = (*AuditLogRepository)(nil)
	_ repository.AppointmentChangeLogRepository = (*AppointmentChangeLogRepository)(nil)
	_ repository.DeletionRequestRepository      = (*DeletionRequestRepository)(nil)
)

// ServiceRequestRepository

type ServiceRequestRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]entity.ServiceRequest
	// Err, when set, is returned by every call.
	Err error
}

func NewServiceRequestRepository() *ServiceRequestRepository {
	return &ServiceRequestRepository{rows: make(map[int64]entity.ServiceRequest)}
}

func (r *ServiceRequestRepository) Create(_ context.Context, request *entity.ServiceRequest) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	request.ID = r.nextID
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now
	r.rows[request.ID] = *request
	return nil
}

func (r *ServiceRequestRepository) FindByID(_ context.Context, id int64) (*entity.ServiceRequest, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *ServiceRequestRepository) FindAll(_ context.Context, filter *entity.ServiceRequestFilter) ([]entity.ServiceRequest, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []entity.ServiceRequest
	for _, row := range r.rows {
		if filter != nil {
			if filter.ServiceType != nil && row.ServiceType != *filter.ServiceType {
				continue
			}
			if filter.PatientID != nil && row.PatientID != *filter.PatientID {
				continue
			}
			if len(filter.StatusIn) > 0 && !containsStatus(filter.StatusIn, row.Status) {
				continue
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ServiceRequestRepository) UpdateStatus(_ context.Context, id int64, expected entity.ServiceRequestStatus, patch *entity.StatusPatch) (int64, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.Status != expected {
		return 0, nil
	}
	patch.Apply(&row)
	row.UpdatedAt = time.Now().UTC()
	r.rows[id] = row
	return 1, nil
}

func (r *ServiceRequestRepository) UpdatePaymentStatus(_ context.Context, id int64, status entity.PaymentStatus) (int64, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return 0, nil
	}
	row.PaymentStatus = &status
	r.rows[id] = row
	return 1, nil
}

func containsStatus(list []entity.ServiceRequestStatus, s entity.ServiceRequestStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// NotificationRepository

type NotificationRepository struct {
	mu   sync.RWMutex
	rows []entity.Notification
	Err  error
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Create(_ context.Context, n *entity.Notification) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	r.rows = append(r.rows, *n)
	return nil
}

func (r *NotificationRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Notification, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, row := range r.rows {
		if row.ID == id {
			row := row
			return &row, nil
		}
	}
	return nil, nil
}

// FindByUserEmail returns newest first; rows with equal timestamps keep reverse insertion order.
func (r *NotificationRepository) FindByUserEmail(_ context.Context, email string, limit int) ([]entity.Notification, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.Notification
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].UserEmail == email {
			out = append(out, r.rows[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, id uuid.UUID) (int64, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id && !r.rows[i].Read {
			r.rows[i].Read = true
			return 1, nil
		}
	}
	return 0, nil
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, email string) ([]entity.Notification, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var changed []entity.Notification
	for i := range r.rows {
		if r.rows[i].UserEmail == email && !r.rows[i].Read {
			r.rows[i].Read = true
			changed = append(changed, r.rows[i])
		}
	}
	return changed, nil
}

func (r *NotificationRepository) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *NotificationRepository) CountUnread(_ context.Context, email string) (int64, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, row := range r.rows {
		if row.UserEmail == email && !row.Read {
			n++
		}
	}
	return n, nil
}

func (r *NotificationRepository) CountUnreadGrouped(_ context.Context, limit, offset int) ([]entity.UnreadCount, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	counts := make(map[string]int64)
	for _, row := range r.rows {
		if !row.Read {
			counts[row.UserEmail]++
		}
	}
	r.mu.RUnlock()

	emails := make([]string, 0, len(counts))
	for email := range counts {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	if offset >= len(emails) {
		return nil, nil
	}
	emails = emails[offset:]
	if limit > 0 && len(emails) > limit {
		emails = emails[:limit]
	}
	out := make([]entity.UnreadCount, 0, len(emails))
	for _, email := range emails {
		out = append(out, entity.UnreadCount{UserEmail: email, Unread: counts[email]})
	}
	return out, nil
}

// All returns every stored row in insertion order.
func (r *NotificationRepository) All() []entity.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.Notification, len(r.rows))
	copy(out, r.rows)
	return out
}

// UserRepository

type UserRepository struct {
	mu    sync.RWMutex
	users []entity.User
	Err   error
}

func NewUserRepository(users ...entity.User) *UserRepository {
	return &UserRepository{users: users}
}

// Add registers an active user holding role.
func (r *UserRepository) Add(email, role string) {
	active := true
	r.mu.Lock()
	r.users = append(r.users, entity.User{
		ID:       uuid.New(),
		Email:    email,
		FullName: email,
		IsActive: &active,
		Role:     entity.Role{RoleName: role},
	})
	r.mu.Unlock()
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) FindEmailsByRole(_ context.Context, role string) ([]string, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, u := range r.users {
		if u.Role.RoleName != role || (u.IsActive != nil && !*u.IsActive) || seen[u.Email] {
			continue
		}
		seen[u.Email] = true
		out = append(out, u.Email)
	}
	sort.Strings(out)
	return out, nil
}

// ServicePriceRepository

type ServicePriceRepository struct {
	mu    sync.RWMutex
	rows  map[string]entity.ServicePrice
	Calls int
	Err   error
}

func NewServicePriceRepository() *ServicePriceRepository {
	return &ServicePriceRepository{rows: make(map[string]entity.ServicePrice)}
}

func priceKey(t entity.ServiceType, subtype string) string {
	return string(t) + "|" + subtype
}

func (r *ServicePriceRepository) FindByTypeAndSubtype(_ context.Context, t entity.ServiceType, subtype string) (*entity.ServicePrice, error) {
	r.mu.Lock()
	r.Calls++
	r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[priceKey(t, subtype)]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *ServicePriceRepository) FindAll(_ context.Context, t *entity.ServiceType) ([]entity.ServicePrice, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.ServicePrice
	for _, row := range r.rows {
		if t != nil && row.ServiceType != *t {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ServiceType != out[j].ServiceType {
			return out[i].ServiceType < out[j].ServiceType
		}
		return derefString(out[i].ServiceSubtype) < derefString(out[j].ServiceSubtype)
	})
	return out, nil
}

func (r *ServicePriceRepository) Upsert(_ context.Context, price *entity.ServicePrice) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := priceKey(price.ServiceType, derefString(price.ServiceSubtype))
	if existing, ok := r.rows[key]; ok {
		price.ID = existing.ID
		price.CreatedAt = existing.CreatedAt
	} else if price.ID == uuid.Nil {
		price.ID = uuid.New()
	}
	r.rows[key] = *price
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// AuditLogRepository

type AuditLogRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   []entity.AuditLog
	Err    error
}

func NewAuditLogRepository() *AuditLogRepository {
	return &AuditLogRepository{}
}

func (r *AuditLogRepository) Create(_ context.Context, log *entity.AuditLog) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	log.ID = r.nextID
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	r.rows = append(r.rows, *log)
	return nil
}

func (r *AuditLogRepository) FindAll(_ context.Context, limit int) ([]entity.AuditLog, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.AuditLog
	for i := len(r.rows) - 1; i >= 0; i-- {
		out = append(out, r.rows[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *AuditLogRepository) FindByID(_ context.Context, id int64) (*entity.AuditLog, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, row := range r.rows {
		if row.ID == id {
			row := row
			return &row, nil
		}
	}
	return nil, nil
}

// Actions returns the recorded actions in insertion order.
func (r *AuditLogRepository) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row.Action)
	}
	return out
}

// AppointmentChangeLogRepository

type AppointmentChangeLogRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   []entity.AppointmentChangeLog
	Err    error
}

func NewAppointmentChangeLogRepository() *AppointmentChangeLogRepository {
	return &AppointmentChangeLogRepository{}
}

func (r *AppointmentChangeLogRepository) Create(_ context.Context, log *entity.AppointmentChangeLog) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	log.ID = r.nextID
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	r.rows = append(r.rows, *log)
	return nil
}

func (r *AppointmentChangeLogRepository) FindByID(_ context.Context, id int64) (*entity.AppointmentChangeLog, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, row := range r.rows {
		if row.ID == id {
			row := row
			return &row, nil
		}
	}
	return nil, nil
}

func (r *AppointmentChangeLogRepository) FindAll(_ context.Context, kind *entity.ChangeKind, limit int) ([]entity.AppointmentChangeLog, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.AppointmentChangeLog
	for _, row := range r.rows {
		if kind != nil && row.Kind != *kind {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *AppointmentChangeLogRepository) MarkAdminNotified(_ context.Context, id int64) (int64, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows[i].AdminNotified = true
			return 1, nil
		}
	}
	return 0, nil
}

// DeletionRequestRepository

type DeletionRequestRepository struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]entity.DeletionRequest
	Err  error
}

func NewDeletionRequestRepository() *DeletionRequestRepository {
	return &DeletionRequestRepository{rows: make(map[uuid.UUID]entity.DeletionRequest)}
}

func (r *DeletionRequestRepository) Create(_ context.Context, request *entity.DeletionRequest) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	r.rows[request.ID] = *request
	return nil
}

func (r *DeletionRequestRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.DeletionRequest, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *DeletionRequestRepository) FindPendingByUser(_ context.Context, userID uuid.UUID) (*entity.DeletionRequest, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, row := range r.rows {
		if row.UserID == userID && row.IsPending() {
			row := row
			return &row, nil
		}
	}
	return nil, nil
}

func (r *DeletionRequestRepository) FindAll(_ context.Context, status *entity.DeletionRequestStatus) ([]entity.DeletionRequest, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.DeletionRequest
	for _, row := range r.rows {
		if status != nil && row.Status != *status {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return strings.Compare(out[i].ID.String(), out[j].ID.String()) < 0
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *DeletionRequestRepository) Review(_ context.Context, id uuid.UUID, status entity.DeletionRequestStatus, reviewer string, at time.Time) (int64, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || !row.IsPending() {
		return 0, nil
	}
	row.Status = status
	row.ReviewedBy = &reviewer
	row.ReviewedAt = &at
	r.rows[id] = row
	return 1, nil
}
