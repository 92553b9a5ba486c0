package entity

import "time"

// StatusChangedEvent is published to the event bus after a transition commits.
type StatusChangedEvent struct {
	RequestID   int64                `json:"request_id"`
	ServiceType ServiceType          `json:"service_type"`
	From        ServiceRequestStatus `json:"from"`
	To          ServiceRequestStatus `json:"to"`
	Actor       string               `json:"actor"`
	At          time.Time            `json:"at"`
}
