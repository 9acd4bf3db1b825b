package admins

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/shiyao1122/activity-system/database"
	"github.com/shiyao1122/activity-system/models"
	"github.com/shiyao1122/activity-system/utils"
)

type taskPayload struct {
	ActivityID     uint            `json:"activityId" validate:"required"`
	Name           string          `json:"name" validate:"required,max=100"`
	Points         int             `json:"points" validate:"gte=0"`
	DailyLimit     int             `json:"dailyLimit" validate:"gte=0"`
	TotalLimit     int             `json:"totalLimit" validate:"gte=0"`
	TargetTaskName *string         `json:"targetTaskName"`
	DescJSON       json.RawMessage `json:"descJson"`
	JumpURL        *string         `json:"jumpUrl"`
	Category       *string         `json:"category"`
	Platform       string          `json:"platform"`
}

// descString accepts both an object ({"en": "..."}) and a pre-encoded string.
func descString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// POST /api/admin/task
// Name uniqueness is case-insensitive per activity; the existence check and
// the insert run in the same transaction so concurrent creates cannot race
// past each other (the unique index on name_key backstops it either way).
func TaskCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req taskPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request"})
		return
	}
	if err := utils.Validate.Struct(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Missing required fields"})
		return
	}

	var activity models.Activity
	if err := database.DB.First(&activity, req.ActivityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Activity not found"})
		} else {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		}
		return
	}

	task := models.Task{
		ActivityID:     req.ActivityID,
		Name:           req.Name,
		NameKey:        models.TaskNameKey(req.Name),
		Points:         req.Points,
		DailyLimit:     req.DailyLimit,
		TotalLimit:     req.TotalLimit,
		TargetTaskName: req.TargetTaskName,
		DescJSON:       descString(req.DescJSON),
		JumpURL:        req.JumpURL,
		Category:       req.Category,
		Platform:       req.Platform,
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Task{}).
			Where("activity_id = ? AND name_key = ?", task.ActivityID, task.NameKey).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errDuplicateTaskName
		}
		return tx.Create(&task).Error
	})
	if err != nil {
		if errors.Is(err, errDuplicateTaskName) {
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Task name already exists in this activity"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Task created", Data: task})
}

var errDuplicateTaskName = errors.New("duplicate task name")

// GET /api/admin/task?activityId=
func TaskListHandler(w http.ResponseWriter, r *http.Request) {
	activityID, err := strconv.ParseUint(r.URL.Query().Get("activityId"), 10, 32)
	if err != nil || activityID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid activity id"})
		return
	}
	var tasks []models.Task
	if err := database.DB.Where("activity_id = ?", uint(activityID)).Order("id ASC").Find(&tasks).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: tasks})
}

// PUT /api/admin/task/{id}
// Tasks can only change while their activity is still DRAFT.
func TaskUpdateHandler(w http.ResponseWriter, r *http.Request) {
	task, activity, ok := findTaskWithActivity(w, r)
	if !ok {
		return
	}
	if activity.Status != models.ActivityStatusDraft {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Only tasks in DRAFT activities can be updated"})
		return
	}
	var req taskPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request"})
		return
	}
	if req.Name == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Missing required fields"})
		return
	}

	nameKey := models.TaskNameKey(req.Name)
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Task{}).
			Where("activity_id = ? AND name_key = ? AND id <> ?", task.ActivityID, nameKey, task.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errDuplicateTaskName
		}
		return tx.Model(task).Updates(map[string]interface{}{
			"name":             req.Name,
			"name_key":         nameKey,
			"points":           req.Points,
			"daily_limit":      req.DailyLimit,
			"total_limit":      req.TotalLimit,
			"target_task_name": req.TargetTaskName,
			"desc_json":        descString(req.DescJSON),
			"jump_url":         req.JumpURL,
			"category":         req.Category,
			"platform":         req.Platform,
		}).Error
	})
	if err != nil {
		if errors.Is(err, errDuplicateTaskName) {
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Task name already exists in this activity"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task updated", Data: task})
}

// DELETE /api/admin/task/{id}
func TaskDeleteHandler(w http.ResponseWriter, r *http.Request) {
	task, activity, ok := findTaskWithActivity(w, r)
	if !ok {
		return
	}
	if activity.Status != models.ActivityStatusDraft {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Only tasks in DRAFT activities can be deleted"})
		return
	}
	if err := database.DB.Delete(task).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task deleted"})
}

func findTaskWithActivity(w http.ResponseWriter, r *http.Request) (*models.Task, *models.Activity, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || id == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return nil, nil, false
	}
	var task models.Task
	if err := database.DB.First(&task, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
		} else {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		}
		return nil, nil, false
	}
	var activity models.Activity
	if err := database.DB.First(&activity, task.ActivityID).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return nil, nil, false
	}
	return &task, &activity, true
}
