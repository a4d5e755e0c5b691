package entity

import "time"

type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

type OrderItem struct {
	ProductID string
	Quantity  int
	Price     float64
}

type Order struct {
	ID              string
	UserID          string
	Items           []OrderItem
	TotalAmount     float64
	Status          OrderStatus
	ShippingAddress string
	OrderDate       time.Time
}

// Total sums price times quantity, rounded to cents.
func (o *Order) Total() float64 {
	var cents int64
	for _, it := range o.Items {
		cents += int64(it.Price*100+0.5) * int64(it.Quantity)
	}
	return float64(cents) / 100
}
