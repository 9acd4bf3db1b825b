package reward

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shiyao1122/activity-system/models"
)

// Tagged failures surfaced to the caller. Limit exhaustion is deliberately
// not among them: a capped completion is a successful zero-point result.
var (
	ErrActivityNotFound    = errors.New("activity not found")
	ErrActivityNotActive   = errors.New("activity not active")
	ErrActivityNotInWindow = errors.New("activity not in progress")
	ErrTaskNotFound        = errors.New("task not found")
)

// Engine is the reward ledger core. Every Report invocation runs as one
// database transaction: eligibility check, limit counts, log append, balance
// increment and the invite cascade either all commit or none do.
type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

type ReportResult struct {
	Points  int
	Message string
	Cascade []CascadeAward
}

// CascadeAward is one invite bonus paid to an inviter during a report.
type CascadeAward struct {
	InviterEmail string
	TaskID       uint
	Points       int
}

// Report records a task completion for email in the given activity and, when
// an inviter is named, cascades any invite-bonus tasks targeting the
// completed task. A completion blocked by its daily or total cap yields
// Points 0 with the reason in Message.
func (e *Engine) Report(email string, activityID uint, taskName, inviterEmail string) (*ReportResult, error) {
	res := &ReportResult{}
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var activity models.Activity
		if err := tx.First(&activity, activityID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrActivityNotActive
			}
			return err
		}
		if activity.Status != models.ActivityStatusActive {
			return ErrActivityNotActive
		}
		now := time.Now()
		if now.Before(activity.StartTime) || now.After(activity.EndTime) {
			return ErrActivityNotInWindow
		}
		// One day floor per invocation, reused by every limit check below so
		// the invitee and all cascade steps agree on what "today" is.
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		var task models.Task
		if err := tx.Where("activity_id = ? AND name_key = ?", activityID, models.TaskNameKey(taskName)).
			First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		ua, err := lockUserActivity(tx, email, activityID)
		if err != nil {
			return err
		}

		awarded, decision, err := recordCompletion(tx, dayStart, ua.ID, &task)
		if err != nil {
			return err
		}
		res.Points = awarded
		if decision != Allowed {
			res.Message = decision.String()
		}

		// The cascade runs whenever an inviter is named, even if the invitee
		// hit a cap: the invitee acting at all is what triggers the bonus.
		if inviterEmail != "" && inviterEmail != email {
			cascade, err := cascadeInvite(tx, dayStart, email, inviterEmail, activityID, task.NameKey)
			if err != nil {
				return err
			}
			res.Cascade = cascade
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"email":      email,
		"activityId": activityID,
		"task":       taskName,
		"points":     res.Points,
		"cascades":   len(res.Cascade),
	}).Info("task completion reported")
	return res, nil
}

// lockUserActivity fetches the balance row for (email, activity), creating it
// on first completion. On MySQL the row is read FOR UPDATE so concurrent
// completions for the same user serialize ahead of the limit counts; the
// sqlite test driver has no row locks and relies on its single writer.
func lockUserActivity(tx *gorm.DB, email string, activityID uint) (*models.UserActivity, error) {
	for attempt := 0; attempt < 2; attempt++ {
		q := tx.Where("email = ? AND activity_id = ?", email, activityID)
		if tx.Dialector.Name() == "mysql" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var ua models.UserActivity
		err := q.First(&ua).Error
		if err == nil {
			return &ua, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		created := models.UserActivity{Email: email, ActivityID: activityID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&created).Error; err != nil {
			return nil, err
		}
		if created.ID != 0 {
			return &created, nil
		}
		// Lost the insert race to a concurrent creator; re-read under the lock.
	}
	return nil, gorm.ErrRecordNotFound
}

// recordCompletion runs the limit checks for one (balance row, task) pair
// and, when allowed, appends the log entry and bumps the running total. The
// daily count query is skipped entirely for tasks without a daily cap.
func recordCompletion(tx *gorm.DB, dayStart time.Time, userActivityID uint, task *models.Task) (int, Decision, error) {
	var totalCount int64
	if err := tx.Model(&models.TaskLog{}).
		Where("user_activity_id = ? AND task_id = ?", userActivityID, task.ID).
		Count(&totalCount).Error; err != nil {
		return 0, Allowed, err
	}
	var dailyCount int64
	if task.DailyLimit > 0 {
		if err := tx.Model(&models.TaskLog{}).
			Where("user_activity_id = ? AND task_id = ? AND created_at >= ?", userActivityID, task.ID, dayStart).
			Count(&dailyCount).Error; err != nil {
			return 0, Allowed, err
		}
	}
	decision := Evaluate(task.DailyLimit, task.TotalLimit, totalCount, dailyCount)
	if decision != Allowed {
		return 0, decision, nil
	}
	entry := models.TaskLog{UserActivityID: userActivityID, TaskID: task.ID, PointsEarned: task.Points}
	if err := tx.Create(&entry).Error; err != nil {
		return 0, Allowed, err
	}
	if err := tx.Model(&models.UserActivity{}).Where("id = ?", userActivityID).
		Update("total_points", gorm.Expr("total_points + ?", task.Points)).Error; err != nil {
		return 0, Allowed, err
	}
	return task.Points, Allowed, nil
}

// cascadeInvite pays invite-bonus tasks targeting the completed task to the
// inviter. The relation row is created idempotently against its unique index.
// A bonus task at its cap is skipped, never fatal for the remaining ones.
func cascadeInvite(tx *gorm.DB, dayStart time.Time, inviteeEmail, inviterEmail string, activityID uint, completedNameKey string) ([]CascadeAward, error) {
	relation := models.UserRelation{InviterEmail: inviterEmail, InviteeEmail: inviteeEmail, ActivityID: activityID}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&relation).Error; err != nil {
		return nil, err
	}

	var bonusTasks []models.Task
	if err := tx.Where("activity_id = ? AND target_task_name IS NOT NULL AND LOWER(target_task_name) = ?",
		activityID, completedNameKey).Find(&bonusTasks).Error; err != nil {
		return nil, err
	}

	var awards []CascadeAward
	for i := range bonusTasks {
		bonus := &bonusTasks[i]
		ua, err := lockUserActivity(tx, inviterEmail, activityID)
		if err != nil {
			return nil, err
		}
		points, decision, err := recordCompletion(tx, dayStart, ua.ID, bonus)
		if err != nil {
			return nil, err
		}
		if decision != Allowed {
			logrus.WithFields(logrus.Fields{
				"inviter": inviterEmail,
				"task":    bonus.Name,
				"reason":  decision.String(),
			}).Debug("invite bonus skipped")
			continue
		}
		awards = append(awards, CascadeAward{InviterEmail: inviterEmail, TaskID: bonus.ID, Points: points})
	}
	return awards, nil
}
