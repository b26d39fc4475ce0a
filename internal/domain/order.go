package domain

import "time"

// Order statuses. Transitions are admin driven: pending -> confirmed ->
// shipped; cancelled is reachable from pending and confirmed.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusCancelled = "cancelled"
)

// Order is created once at checkout submission and afterwards mutated only
// by status transitions. UserId is zero for pure guest orders.
type Order struct {
	ID             int64       `json:"id,string" form:"id"`
	UserId         int64       `gorm:"index" json:"user_id,string" form:"user_id"`
	IdempotencyKey string      `gorm:"uniqueIndex;size:64" json:"idempotency_key"`
	CustomerEmail  string      `gorm:"index;size:255" json:"customer_email" form:"customer_email"`
	CustomerName   string      `json:"customer_name" form:"customer_name"`
	CustomerPhone  string      `json:"customer_phone" form:"customer_phone"`
	Address        string      `json:"address" form:"address"`
	City           string      `json:"city" form:"city"`
	Department     string      `json:"department" form:"department"`
	Country        string      `json:"country" form:"country"`
	Total          float64     `json:"total" form:"total"`
	Status         string      `gorm:"index;size:16;default:'pending'" json:"status" form:"status"`
	PaymentMethod  string      `gorm:"size:32" json:"payment_method" form:"payment_method"`
	PaymentProof   string      `gorm:"size:1024" json:"payment_proof" form:"payment_proof"`
	AdditionalInfo string      `gorm:"type:text" json:"additional_info" form:"additional_info"`
	Items          []OrderItem `gorm:"foreignKey:OrderId" json:"items"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "orders"
}

// OrderItem is an immutable snapshot taken from the cart line item at
// submission time, decoupled from the live catalog.
type OrderItem struct {
	ID        int64   `json:"id,string"`
	OrderId   int64   `gorm:"index" json:"order_id,string"`
	ProductId string  `gorm:"size:64" json:"product_id"`
	Name      string  `gorm:"size:255" json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `gorm:"default:1" json:"quantity"`
	Color     string  `gorm:"size:64" json:"color"`
	Size      string  `gorm:"size:64" json:"size"`
	Brand     string  `gorm:"size:64" json:"brand"`
	Image     string  `gorm:"size:1024" json:"image"`
}

// TableName Specify table name
func (OrderItem) TableName() string {
	return "order_items"
}
