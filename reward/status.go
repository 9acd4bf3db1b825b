package reward

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/shiyao1122/activity-system/models"
	"github.com/shiyao1122/activity-system/utils"
)

type Progress struct {
	Total int `json:"total"`
	Daily int `json:"daily"`
}

type TaskStatus struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Points      int      `json:"points"`
	JumpURL     *string  `json:"jumpUrl"`
	Platform    string   `json:"platform"`
	Category    *string  `json:"category"`
	Completed   Progress `json:"completed"`
	Limits      Progress `json:"limits"`
	IsFinished  bool     `json:"isFinished"`
}

type StatusResult struct {
	TotalPoints int          `json:"totalPoints"`
	Tasks       []TaskStatus `json:"tasks"`
}

// UserStatus builds the read-only projection of a user's progress inside an
// activity from the same task log the limit checks count. A user who never
// completed anything gets zero totals, not an error.
func (e *Engine) UserStatus(email string, activityID uint, lang string) (*StatusResult, error) {
	var activity models.Activity
	if err := e.db.First(&activity, activityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}

	var ua models.UserActivity
	hasBalance := true
	if err := e.db.Where("email = ? AND activity_id = ?", email, activityID).First(&ua).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		hasBalance = false
	}

	var tasks []models.Task
	if err := e.db.Where("activity_id = ?", activityID).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	var logs []models.TaskLog
	if hasBalance {
		if err := e.db.Where("user_activity_id = ?", ua.ID).Find(&logs).Error; err != nil {
			return nil, err
		}
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	totalByTask := make(map[uint]int)
	dailyByTask := make(map[uint]int)
	for _, l := range logs {
		totalByTask[l.TaskID]++
		if !l.CreatedAt.Before(dayStart) {
			dailyByTask[l.TaskID]++
		}
	}

	out := &StatusResult{Tasks: make([]TaskStatus, 0, len(tasks))}
	if hasBalance {
		out.TotalPoints = ua.TotalPoints
	}
	for _, t := range tasks {
		done := totalByTask[t.ID]
		out.Tasks = append(out.Tasks, TaskStatus{
			ID:          t.ID,
			Name:        t.Name,
			Description: utils.LocalizedDesc(t.DescJSON, lang),
			Points:      t.Points,
			JumpURL:     t.JumpURL,
			Platform:    t.Platform,
			Category:    t.Category,
			Completed:   Progress{Total: done, Daily: dailyByTask[t.ID]},
			Limits:      Progress{Total: t.TotalLimit, Daily: t.DailyLimit},
			IsFinished:  t.TotalLimit > 0 && done >= t.TotalLimit,
		})
	}
	return out, nil
}

type ActivityHeader struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Status    string    `json:"status"`
}

type ActivityTask struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Points      int      `json:"points"`
	JumpURL     *string  `json:"jumpUrl"`
	Platform    string   `json:"platform"`
	Category    *string  `json:"category"`
	Limits      Progress `json:"limits"`
}

type ActivityDetails struct {
	Activity ActivityHeader `json:"activity"`
	Tasks    []ActivityTask `json:"tasks"`
}

// ActivityDetails returns the public view of an activity and its tasks with
// localized descriptions.
func (e *Engine) ActivityDetails(activityID uint, lang string) (*ActivityDetails, error) {
	var activity models.Activity
	if err := e.db.First(&activity, activityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	var tasks []models.Task
	if err := e.db.Where("activity_id = ?", activityID).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	out := &ActivityDetails{
		Activity: ActivityHeader{
			ID:        activity.ID,
			Name:      activity.Name,
			StartTime: activity.StartTime,
			EndTime:   activity.EndTime,
			Status:    activity.Status,
		},
		Tasks: make([]ActivityTask, 0, len(tasks)),
	}
	for _, t := range tasks {
		out.Tasks = append(out.Tasks, ActivityTask{
			ID:          t.ID,
			Name:        t.Name,
			Description: utils.LocalizedDesc(t.DescJSON, lang),
			Points:      t.Points,
			JumpURL:     t.JumpURL,
			Platform:    t.Platform,
			Category:    t.Category,
			Limits:      Progress{Total: t.TotalLimit, Daily: t.DailyLimit},
		})
	}
	return out, nil
}
