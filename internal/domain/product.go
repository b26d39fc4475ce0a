package domain

import "time"

// Product is an immutable catalog record; cart line items snapshot its
// fields at add time rather than referencing it.
type Product struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id" form:"id"`
	Name        string    `gorm:"index;size:255" json:"name" form:"name"`
	Description string    `gorm:"type:text" json:"description" form:"description"`
	Price       float64   `json:"price" form:"price"` // COP, whole units
	Image       string    `gorm:"size:1024" json:"image" form:"image"`
	Category    string    `gorm:"size:64;default:'General'" json:"category" form:"category"`
	Stock       int       `json:"stock" form:"stock"`
	Active      bool      `json:"active" form:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}
