package domain

import "time"

// User is a storefront customer account. Guest checkouts auto-register a
// user with a temporary password so the order history stays reachable.
// Admin operators are users with Role = "admin".
type User struct {
	ID                int64     `json:"id,string" form:"id"`
	Email             string    `gorm:"uniqueIndex;size:255" json:"email" form:"email"`
	Password          string    `json:"-" form:"password"`
	Name              string    `json:"name" form:"name"`
	Address           string    `json:"address" form:"address"`
	City              string    `json:"city" form:"city"`
	Department        string    `json:"department" form:"department"`
	WhatsappNumber    string    `json:"whatsapp_number" form:"whatsapp_number"`
	Role              string    `gorm:"size:16;default:'user'" json:"role" form:"role"`
	Status            string    `gorm:"size:16;default:'enabled'" json:"status" form:"status"`
	// TempPassword carries the generated plaintext only on the in-memory
	// value returned from guest auto-registration, for the welcome mail.
	TempPassword      string    `gorm:"-" json:"-"`
	ResetToken        string    `gorm:"index;size:64" json:"-"`
	ResetTokenExpires time.Time `json:"-"`
	LastLogin         time.Time `json:"last_login"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName Specify table name
func (User) TableName() string {
	return "users"
}
