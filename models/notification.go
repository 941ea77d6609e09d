package models

import "time"

// Notification is a users/{uid}/notifications/{id} document.
type Notification struct {
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	IsRead        bool      `json:"isRead"`
	RequisitionID string    `json:"requisitionId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
