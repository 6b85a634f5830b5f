package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderOrigin marks which submit path created the order. Unverified orders
// are trusted client input and only become paid through the webhook or the
// reconciliation sweep.
type OrderOrigin string

const (
	OriginUnverified OrderOrigin = "unverified"
	OriginVerified   OrderOrigin = "verified"
)

// CartItem is a snapshot of a purchased item at order time. It is never
// re-validated against a live catalog.
type CartItem struct {
	ProductID string  `json:"product_id,omitempty"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type Order struct {
	ID               uuid.UUID   `json:"id"`
	CustomerName     string      `json:"customer_name"`
	CustomerEmail    string      `json:"customer_email"`
	Address          string      `json:"address"`
	Cart             []CartItem  `json:"cart"`
	Total            string      `json:"total"`
	PaymentReference string      `json:"payment_reference"`
	Paid             bool        `json:"paid"`
	Origin           OrderOrigin `json:"origin"`
	CreatedAt        time.Time   `json:"createdAt"`
}
