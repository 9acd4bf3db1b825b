package models

import "time"

// Activity statuses. An activity only rewards completions while ACTIVE and
// inside its [StartTime, EndTime] window. Once it leaves DRAFT it can no
// longer be edited or deleted.
const (
	ActivityStatusDraft  = "DRAFT"
	ActivityStatusActive = "ACTIVE"
	ActivityStatusEnded  = "ENDED"
)

type Activity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	StartTime time.Time `gorm:"not null" json:"startTime"`
	EndTime   time.Time `gorm:"not null" json:"endTime"`
	Status    string    `gorm:"size:20;not null;default:'DRAFT'" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Activity) TableName() string {
	return "activities"
}
