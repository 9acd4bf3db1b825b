package models

import (
	"strings"
	"time"
)

// Task is a rewardable action inside an activity. DailyLimit/TotalLimit of 0
// mean unlimited. A task with TargetTaskName set is an invite bonus: it pays
// its points to the inviter whenever an invitee completes the named task.
type Task struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ActivityID     uint      `gorm:"not null;uniqueIndex:uniq_activity_name_key" json:"activityId"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	NameKey        string    `gorm:"size:100;not null;uniqueIndex:uniq_activity_name_key" json:"-"`
	Points         int       `gorm:"not null;default:0" json:"points"`
	DailyLimit     int       `gorm:"not null;default:0" json:"dailyLimit"`
	TotalLimit     int       `gorm:"not null;default:0" json:"totalLimit"`
	TargetTaskName *string   `gorm:"size:100" json:"targetTaskName"`
	DescJSON       string    `gorm:"column:desc_json;type:text" json:"descJson"`
	JumpURL        *string   `gorm:"size:500" json:"jumpUrl"`
	Category       *string   `gorm:"size:100" json:"category"`
	Platform       string    `gorm:"size:50" json:"platform"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Task) TableName() string {
	return "tasks"
}

// TaskNameKey normalizes a task name for the case-insensitive uniqueness
// constraint and for lookups.
func TaskNameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
