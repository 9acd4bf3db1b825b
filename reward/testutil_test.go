package reward

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shiyao1122/activity-system/models"
)

// openTestDB returns an isolated in-memory database with the full schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// one connection so every session sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&models.Activity{},
		&models.Task{},
		&models.UserActivity{},
		&models.TaskLog{},
		&models.UserRelation{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedActivity creates an ACTIVE activity whose window covers now.
func seedActivity(t *testing.T, db *gorm.DB) *models.Activity {
	t.Helper()
	activity := &models.Activity{
		Name:      "Launch Campaign",
		StartTime: time.Now().Add(-time.Hour),
		EndTime:   time.Now().Add(time.Hour),
		Status:    models.ActivityStatusActive,
	}
	if err := db.Create(activity).Error; err != nil {
		t.Fatalf("seed activity: %v", err)
	}
	return activity
}

func seedTask(t *testing.T, db *gorm.DB, activityID uint, name string, points, dailyLimit, totalLimit int, target string) *models.Task {
	t.Helper()
	task := &models.Task{
		ActivityID: activityID,
		Name:       name,
		NameKey:    models.TaskNameKey(name),
		Points:     points,
		DailyLimit: dailyLimit,
		TotalLimit: totalLimit,
		DescJSON:   `{"en":"` + name + `"}`,
		Platform:   "web",
	}
	if target != "" {
		task.TargetTaskName = &target
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("seed task %s: %v", name, err)
	}
	return task
}

func balanceOf(t *testing.T, db *gorm.DB, email string, activityID uint) int {
	t.Helper()
	var ua models.UserActivity
	if err := db.Where("email = ? AND activity_id = ?", email, activityID).First(&ua).Error; err != nil {
		t.Fatalf("load balance for %s: %v", email, err)
	}
	return ua.TotalPoints
}

func logCount(t *testing.T, db *gorm.DB, email string, activityID uint) int64 {
	t.Helper()
	var ua models.UserActivity
	if err := db.Where("email = ? AND activity_id = ?", email, activityID).First(&ua).Error; err != nil {
		t.Fatalf("load balance for %s: %v", email, err)
	}
	var n int64
	if err := db.Model(&models.TaskLog{}).Where("user_activity_id = ?", ua.ID).Count(&n).Error; err != nil {
		t.Fatalf("count logs: %v", err)
	}
	return n
}
