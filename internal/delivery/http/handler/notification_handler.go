package handler

import (
	"net/http"
	"time"

	"clinic-workflow/internal/converter"
	"clinic-workflow/internal/delivery/dto"
	"clinic-workflow/internal/usecase"
	"clinic-workflow/pkg/response"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10
)

type NotificationHandler struct {
	notificationUsecase usecase.NotificationUsecase
	upgrader            websocket.Upgrader
	log                 *logrus.Logger
}

// NewNotificationHandler takes the origin check used for the stream handshake.
func NewNotificationHandler(notificationUsecase usecase.NotificationUsecase, checkOrigin func(*http.Request) bool, log *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationUsecase: notificationUsecase,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		log: log,
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	notifications, err := h.notificationUsecase.List(r.Context(), actor)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Notifications retrieved successfully", notifications)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	count, err := h.notificationUsecase.UnreadCount(r.Context(), actor)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Unread count retrieved successfully", count)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "notification")
	if !ok {
		return
	}

	if err := h.notificationUsecase.MarkRead(r.Context(), actor, id); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Notification marked as read", nil)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	result, err := h.notificationUsecase.MarkAllRead(r.Context(), actor)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Notifications marked as read", result)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}
	id, ok := uuidVar(w, r, "id", "notification")
	if !ok {
		return
	}

	if err := h.notificationUsecase.Delete(r.Context(), actor, id); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Notification deleted successfully", nil)
}

// Send queues a notification; delivery happens after the response is written.
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	var req dto.SendNotificationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.notificationUsecase.Send(r.Context(), actor, &req); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusAccepted, "Notification queued", nil)
}

// Stream upgrades to a websocket. The first frame is the current list, every
// later frame is a dto.NotificationEvent.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	inbox, err := h.notificationUsecase.OpenInbox(r.Context(), actor)
	if err != nil {
		response.FromError(w, err)
		return
	}
	defer inbox.Close()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.Debugf("Failed to upgrade notification stream for %s: %+v", actor.Email, err)
		return
	}
	defer conn.Close()

	// The client only sends control frames; reading keeps pongs flowing and
	// notices a closed socket.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	rows, unread := inbox.Snapshot()
	snapshot := dto.NotificationListResponse{
		Notifications: converter.NotificationsToResponses(rows),
		Total:         len(rows),
		Unread:        unread,
	}
	if err := h.write(conn, snapshot); err != nil {
		return
	}

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case change, ok := <-inbox.Updates():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "inbox closed"),
					time.Now().Add(streamWriteWait))
				return
			}
			_, unread := inbox.Snapshot()
			if err := h.write(conn, converter.NotificationChangeToEvent(change, unread)); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		}
	}
}

func (h *NotificationHandler) write(conn *websocket.Conn, v interface{}) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	if err := conn.WriteJSON(v); err != nil {
		h.log.Debugf("Failed to write notification frame: %+v", err)
		return err
	}
	return nil
}
