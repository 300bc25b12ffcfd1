package domain

import "time"

type OrderStatus string

const (
	OrderStatusNotProcessed OrderStatus = "Not Processed"
	OrderStatusProcessing   OrderStatus = "Processing"
	OrderStatusShipped      OrderStatus = "Shipped"
	OrderStatusDelivered    OrderStatus = "Delivered"
	OrderStatusCancelled    OrderStatus = "Cancelled"
)

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

type Payment struct {
	Method  string `json:"method"`
	Success bool   `json:"success"`
}

// Order is created exactly once per successful checkout and owned by the
// server afterwards; this engine never mutates one.
type Order struct {
	ID        string      `json:"_id"`
	Buyer     string      `json:"buyer"`
	Address   string      `json:"address"`
	Products  []Product   `json:"products"`
	Payment   Payment     `json:"payment"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}
