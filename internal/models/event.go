package models

import (
	"time"

	"github.com/google/uuid"
)

// Product event types, also used as routing keys.
const (
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"
)

// ProductEvent describes a committed change to a product.
type ProductEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	ProductID  int       `json:"product_id"`
	Product    *Product  `json:"product,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewProductEvent builds an event with a fresh id. product may be nil for deletions.
func NewProductEvent(eventType string, productID int, product *Product) ProductEvent {
	return ProductEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		ProductID:  productID,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	}
}
