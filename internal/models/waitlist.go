package models

import "time"

// WaitlistEntry is one accepted signup. Entries are create-only; the
// email column is not unique.
type WaitlistEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Email       string    `gorm:"type:text;not null;index" json:"email"`
	SubmittedAt time.Time `gorm:"column:created_at;not null;autoCreateTime" json:"submitted_at"`
}

func (WaitlistEntry) TableName() string {
	return "emails"
}
