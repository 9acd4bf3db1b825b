package models

import "time"

// UserActivity is the running balance of one user inside one activity,
// created lazily on first completion. TotalPoints must always equal the sum
// of PointsEarned over the user's task logs; the reward engine maintains both
// inside a single transaction.
type UserActivity struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Email       string    `gorm:"size:255;not null;uniqueIndex:uniq_email_activity" json:"email"`
	ActivityID  uint      `gorm:"not null;uniqueIndex:uniq_email_activity" json:"activityId"`
	TotalPoints int       `gorm:"not null;default:0" json:"totalPoints"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (UserActivity) TableName() string {
	return "user_activities"
}

// TaskLog is the immutable audit record of one rewarded completion. The
// reward path only ever appends; limit checks count these rows.
type TaskLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserActivityID uint      `gorm:"not null;index:idx_user_activity_task" json:"userActivityId"`
	TaskID         uint      `gorm:"not null;index:idx_user_activity_task" json:"taskId"`
	PointsEarned   int       `gorm:"not null" json:"pointsEarned"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
}

func (TaskLog) TableName() string {
	return "task_logs"
}
