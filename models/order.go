package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment statuses. An order starts Pending and may move to Paid or
// Failed exactly once; Paid and Failed are terminal.
const (
	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "Paid"
	PaymentStatusFailed  = "Failed"
)

// Payment methods.
const (
	PaymentMethodCOD     = "COD"
	PaymentMethodGateway = "Gateway"
)

// Order is an immutable snapshot of a checkout. Only the payment
// status field ever changes after creation, and orders are never
// deleted.
type Order struct {
	ID            uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"_id"`
	UserID        uuid.UUID   `gorm:"type:uuid;not null;index" json:"user"`
	Amount        float64     `gorm:"not null" json:"amount"`
	PaymentMethod string      `gorm:"type:varchar(20);not null;default:'COD'" json:"-"`
	PaymentStatus string      `gorm:"type:varchar(20);not null;default:'Pending'" json:"-"`
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"createdAt"`
	Items         []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is one line of an order snapshot. ProductID is a weak
// reference into the catalog; the referenced product may no longer
// exist.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"-"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ProductID string    `gorm:"not null" json:"productId"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
}

// PaymentInfo is the wire shape of an order's payment state.
type PaymentInfo struct {
	Method string `json:"method"`
	Status string `json:"status"`
}

// CanTransition reports whether a payment status change is legal.
func CanTransition(from, to string) bool {
	if from != PaymentStatusPending {
		return false
	}
	return to == PaymentStatusPaid || to == PaymentStatusFailed
}
