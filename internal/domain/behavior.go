package domain

import "time"

// BehaviorSample is one tracked browsing session snapshot posted by the
// storefront client.
type BehaviorSample struct {
	ID        int64     `json:"id,string"`
	SessionId string    `gorm:"index;size:64" json:"session_id" form:"session_id"`
	Scroll    float64   `json:"scroll" form:"scroll"` // max scroll depth, 0..1
	Time      int64     `json:"time" form:"time"`     // seconds on page
	Clicks    int       `json:"clicks" form:"clicks"`
	CtaSeen   bool      `json:"cta_seen" form:"cta_seen"`
	Converted bool      `gorm:"index" json:"converted" form:"converted"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName Specify table name
func (BehaviorSample) TableName() string {
	return "behavior"
}
