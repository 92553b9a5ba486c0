package usecase

import (
	"context"
	"errors"
	"strings"

	"clinic-workflow/internal/converter"
	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/internal/domain/repository"
	"clinic-workflow/internal/service"
	"clinic-workflow/pkg/apperror"
	"clinic-workflow/pkg/clock"
	"clinic-workflow/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var errInboxUnavailable = errors.New("live inbox is not configured")

type NotificationUsecase interface {
	Send(ctx context.Context, actor entity.Actor, req *dto.SendNotificationRequest) error
	List(ctx context.Context, actor entity.Actor) (*dto.NotificationListResponse, error)
	UnreadCount(ctx context.Context, actor entity.Actor) (*dto.UnreadCountResponse, error)
	MarkRead(ctx context.Context, actor entity.Actor, id uuid.UUID) error
	MarkAllRead(ctx context.Context, actor entity.Actor) (*dto.MarkAllReadResponse, error)
	Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) error
	OpenInbox(ctx context.Context, actor entity.Actor) (*service.InboxView, error)
}

type notificationUsecase struct {
	log              *logrus.Logger
	validate         *validator.CustomValidator
	clock            clock.Clock
	notificationRepo repository.NotificationRepository
	dispatcher       service.NotificationDispatcher
	counter          service.UnreadCounter
	publisher        service.ChangePublisher
	inbox            *service.InboxService
	listLimit        int
}

func NewNotificationUsecase(
	log *logrus.Logger,
	clk clock.Clock,
	notificationRepo repository.NotificationRepository,
	dispatcher service.NotificationDispatcher,
	counter service.UnreadCounter,
	publisher service.ChangePublisher,
	inbox *service.InboxService,
	listLimit int,
) NotificationUsecase {
	if listLimit <= 0 {
		listLimit = 50
	}
	return &notificationUsecase{
		log:              log,
		validate:         validator.NewValidator(),
		clock:            clk,
		notificationRepo: notificationRepo,
		dispatcher:       dispatcher,
		counter:          counter,
		publisher:        publisher,
		inbox:            inbox,
		listLimit:        listLimit,
	}
}

// Send enqueues a notification to an address or role. Staff only; the call
// returns once the message is queued.
func (u *notificationUsecase) Send(ctx context.Context, actor entity.Actor, req *dto.SendNotificationRequest) error {
	const op = "send notification"

	if actor.Role == entity.RolePatient || actor.Role == "" {
		return apperror.Permission(op, "patients may not send notifications")
	}
	if err := u.validate.Check(op, req); err != nil {
		return err
	}

	u.dispatcher.Notify(entity.NotificationMessage{
		Target:       strings.TrimSpace(req.Target),
		Title:        req.Title,
		Message:      req.Message,
		Type:         entity.NotificationType(req.Type),
		RelatedTable: req.RelatedTable,
		RelatedID:    req.RelatedID,
	})
	return nil
}

// List returns the caller's newest notifications with the unread total.
func (u *notificationUsecase) List(ctx context.Context, actor entity.Actor) (*dto.NotificationListResponse, error) {
	const op = "list notifications"

	if err := requireIdentity(op, actor); err != nil {
		return nil, err
	}

	rows, err := u.notificationRepo.FindByUserEmail(ctx, actor.Email, u.listLimit)
	if err != nil {
		u.log.Warnf("Failed to list notifications for %s: %+v", actor.Email, err)
		return nil, apperror.Dependency(op, err)
	}
	unread, err := u.counter.Get(ctx, actor.Email)
	if err != nil {
		u.log.Warnf("Failed to read unread count for %s: %+v", actor.Email, err)
		return nil, apperror.Dependency(op, err)
	}

	return &dto.NotificationListResponse{
		Notifications: converter.NotificationsToResponses(rows),
		Total:         len(rows),
		Unread:        unread,
	}, nil
}

func (u *notificationUsecase) UnreadCount(ctx context.Context, actor entity.Actor) (*dto.UnreadCountResponse, error) {
	const op = "count unread notifications"

	if err := requireIdentity(op, actor); err != nil {
		return nil, err
	}
	unread, err := u.counter.Get(ctx, actor.Email)
	if err != nil {
		u.log.Warnf("Failed to read unread count for %s: %+v", actor.Email, err)
		return nil, apperror.Dependency(op, err)
	}
	return &dto.UnreadCountResponse{Unread: unread}, nil
}

// MarkRead flips one of the caller's notifications to read. Marking an already
// read row is a no-op.
func (u *notificationUsecase) MarkRead(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	const op = "mark notification read"

	row, err := u.loadOwned(ctx, op, actor, id)
	if err != nil {
		return err
	}

	affected, err := u.notificationRepo.MarkRead(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to mark notification %s read: %+v", id, err)
		return apperror.Dependency(op, err)
	}
	if affected == 0 {
		return nil
	}

	row.Read = true
	u.afterChange(row.UserEmail, []entity.Notification{*row}, entity.ChangeUpdate, func(ctx context.Context) error {
		return u.counter.Decr(ctx, row.UserEmail, 1)
	})
	return nil
}

func (u *notificationUsecase) MarkAllRead(ctx context.Context, actor entity.Actor) (*dto.MarkAllReadResponse, error) {
	const op = "mark all notifications read"

	if err := requireIdentity(op, actor); err != nil {
		return nil, err
	}

	changed, err := u.notificationRepo.MarkAllRead(ctx, actor.Email)
	if err != nil {
		u.log.Warnf("Failed to mark all notifications read for %s: %+v", actor.Email, err)
		return nil, apperror.Dependency(op, err)
	}

	u.afterChange(actor.Email, changed, entity.ChangeUpdate, func(ctx context.Context) error {
		return u.counter.Reset(ctx, actor.Email)
	})
	return &dto.MarkAllReadResponse{Updated: len(changed)}, nil
}

func (u *notificationUsecase) Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	const op = "delete notification"

	row, err := u.loadOwned(ctx, op, actor, id)
	if err != nil {
		return err
	}

	affected, err := u.notificationRepo.Delete(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to delete notification %s: %+v", id, err)
		return apperror.Dependency(op, err)
	}
	if affected == 0 {
		return nil
	}

	var adjust func(ctx context.Context) error
	if !row.Read {
		adjust = func(ctx context.Context) error {
			return u.counter.Decr(ctx, row.UserEmail, 1)
		}
	}
	u.afterChange(row.UserEmail, []entity.Notification{*row}, entity.ChangeDelete, adjust)
	return nil
}

// OpenInbox starts a live view of the caller's notifications. The view closes
// when ctx ends.
func (u *notificationUsecase) OpenInbox(ctx context.Context, actor entity.Actor) (*service.InboxView, error) {
	const op = "open notification stream"

	if err := requireIdentity(op, actor); err != nil {
		return nil, err
	}
	if u.inbox == nil {
		return nil, apperror.Dependency(op, errInboxUnavailable)
	}
	view, err := u.inbox.Open(ctx, actor.Email)
	if err != nil {
		u.log.Warnf("Failed to open inbox for %s: %+v", actor.Email, err)
		return nil, apperror.Dependency(op, err)
	}
	return view, nil
}

func (u *notificationUsecase) loadOwned(ctx context.Context, op string, actor entity.Actor, id uuid.UUID) (*entity.Notification, error) {
	if err := requireIdentity(op, actor); err != nil {
		return nil, err
	}
	row, err := u.notificationRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find notification %s: %+v", id, err)
		return nil, apperror.Dependency(op, err)
	}
	if row == nil {
		return nil, apperror.NotFound(op, "notification not found")
	}
	if !strings.EqualFold(row.UserEmail, actor.Email) {
		return nil, apperror.Permission(op, "notification belongs to another user")
	}
	return row, nil
}

// afterChange updates the unread counter and then publishes one change event per
// row. Both run on background contexts; failures are logged and swallowed.
func (u *notificationUsecase) afterChange(email string, rows []entity.Notification, changeType entity.ChangeType, adjust func(ctx context.Context) error) {
	if adjust != nil {
		counterCtx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		if err := adjust(counterCtx); err != nil {
			u.log.Warnf("Failed to adjust unread counter for %s (non-fatal): %+v", email, err)
		}
		cancel()
	}

	if u.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()
	now := u.clock.Now().UTC()
	for _, row := range rows {
		change := entity.NotificationChange{Type: changeType, Recipient: email, Row: row, At: now}
		if err := u.publisher.Publish(pubCtx, change); err != nil {
			u.log.Warnf("Failed to publish %s of notification %s (non-fatal): %+v", changeType, row.ID, err)
		}
	}
}
