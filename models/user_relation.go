package models

import "time"

// UserRelation records who invited whom within an activity. It is created at
// most once per (inviter, invitee, activity) and never mutated afterwards.
type UserRelation struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	InviterEmail string    `gorm:"size:255;not null;uniqueIndex:uniq_relation" json:"inviterEmail"`
	InviteeEmail string    `gorm:"size:255;not null;uniqueIndex:uniq_relation" json:"inviteeEmail"`
	ActivityID   uint      `gorm:"not null;uniqueIndex:uniq_relation" json:"activityId"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (UserRelation) TableName() string {
	return "user_relations"
}
