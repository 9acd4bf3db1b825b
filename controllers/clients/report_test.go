package clients

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shiyao1122/activity-system/database"
	"github.com/shiyao1122/activity-system/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
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
	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
	return db
}

func seedActiveActivity(t *testing.T, db *gorm.DB) *models.Activity {
	t.Helper()
	activity := &models.Activity{
		Name:      "Launch",
		StartTime: time.Now().Add(-time.Hour),
		EndTime:   time.Now().Add(time.Hour),
		Status:    models.ActivityStatusActive,
	}
	if err := db.Create(activity).Error; err != nil {
		t.Fatalf("seed activity: %v", err)
	}
	return activity
}

func TestTaskReportHandlerSuccess(t *testing.T) {
	db := setupTestDB(t)
	activity := seedActiveActivity(t, db)
	task := models.Task{
		ActivityID: activity.ID,
		Name:       "login",
		NameKey:    models.TaskNameKey("login"),
		Points:     100,
	}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}

	body := `{"email":"u@example.com","activityId":` + itoa(activity.ID) + `,"taskName":"login"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/task/report", strings.NewReader(body))
	rec := httptest.NewRecorder()
	TaskReportHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool `json:"success"`
		Points  int  `json:"points"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Points != 100 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestTaskReportHandlerMissingFields(t *testing.T) {
	setupTestDB(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/task/report", strings.NewReader(`{"email":"u@example.com"}`))
	rec := httptest.NewRecorder()
	TaskReportHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTaskReportHandlerUnknownTask(t *testing.T) {
	db := setupTestDB(t)
	activity := seedActiveActivity(t, db)

	body := `{"email":"u@example.com","activityId":` + itoa(activity.ID) + `,"taskName":"nope"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/task/report", strings.NewReader(body))
	rec := httptest.NewRecorder()
	TaskReportHandler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestTaskReportHandlerDraftActivity(t *testing.T) {
	db := setupTestDB(t)
	activity := &models.Activity{
		Name:      "Draft",
		StartTime: time.Now().Add(-time.Hour),
		EndTime:   time.Now().Add(time.Hour),
		Status:    models.ActivityStatusDraft,
	}
	if err := db.Create(activity).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := `{"email":"u@example.com","activityId":` + itoa(activity.ID) + `,"taskName":"login"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/task/report", strings.NewReader(body))
	rec := httptest.NewRecorder()
	TaskReportHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUserStatusHandler(t *testing.T) {
	db := setupTestDB(t)
	activity := seedActiveActivity(t, db)
	task := models.Task{
		ActivityID: activity.ID,
		Name:       "login",
		NameKey:    models.TaskNameKey("login"),
		Points:     100,
		DescJSON:   `{"en":"Sign in"}`,
	}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/status?email=u@example.com&activityId="+itoa(activity.ID), nil)
	rec := httptest.NewRecorder()
	UserStatusHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		TotalPoints int `json:"totalPoints"`
		Tasks       []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalPoints != 0 || len(resp.Tasks) != 1 || resp.Tasks[0].Description != "Sign in" {
		t.Fatalf("resp = %+v", resp)
	}
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
