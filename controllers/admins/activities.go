package admins

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/shiyao1122/activity-system/database"
	"github.com/shiyao1122/activity-system/models"
	"github.com/shiyao1122/activity-system/utils"
)

type activityPayload struct {
	Name      string    `json:"name" validate:"required"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required"`
	Status    string    `json:"status" validate:"omitempty,oneof=DRAFT ACTIVE ENDED"`
}

// POST /api/admin/activity
func ActivityCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req activityPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request"})
		return
	}
	if err := utils.Validate.Struct(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Missing required fields"})
		return
	}
	status := req.Status
	if status == "" {
		status = models.ActivityStatusDraft
	}
	activity := models.Activity{
		Name:      req.Name,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    status,
	}
	if err := database.DB.Create(&activity).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Activity created", Data: activity})
}

// GET /api/admin/activity
func ActivityListHandler(w http.ResponseWriter, r *http.Request) {
	var activities []models.Activity
	if err := database.DB.Order("id ASC").Find(&activities).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: activities})
}

// GET /api/admin/activity/{id}
func ActivityGetHandler(w http.ResponseWriter, r *http.Request) {
	activity, ok := findActivity(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: activity})
}

// PUT /api/admin/activity/{id}
// Activities are permanently locked once they leave DRAFT.
func ActivityUpdateHandler(w http.ResponseWriter, r *http.Request) {
	activity, ok := findActivity(w, r)
	if !ok {
		return
	}
	if activity.Status != models.ActivityStatusDraft {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Only DRAFT activities can be updated"})
		return
	}
	var req activityPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request"})
		return
	}
	if err := utils.Validate.Struct(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Missing required fields"})
		return
	}
	updates := map[string]interface{}{
		"name":       req.Name,
		"start_time": req.StartTime,
		"end_time":   req.EndTime,
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if err := database.DB.Model(activity).Updates(updates).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Activity updated", Data: activity})
}

// DELETE /api/admin/activity/{id}
func ActivityDeleteHandler(w http.ResponseWriter, r *http.Request) {
	activity, ok := findActivity(w, r)
	if !ok {
		return
	}
	if activity.Status != models.ActivityStatusDraft {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Only DRAFT activities can be deleted"})
		return
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("activity_id = ?", activity.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("activity_id = ?", activity.ID).Delete(&models.UserActivity{}).Error; err != nil {
			return err
		}
		return tx.Delete(activity).Error
	})
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Activity deleted"})
}

// POST /api/admin/activity/{id}/clone
// Copies the activity and every task into a fresh DRAFT.
func ActivityCloneHandler(w http.ResponseWriter, r *http.Request) {
	source, ok := findActivity(w, r)
	if !ok {
		return
	}
	var tasks []models.Task
	if err := database.DB.Where("activity_id = ?", source.ID).Find(&tasks).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}

	clone := models.Activity{
		Name:      source.Name + " (Copy)",
		StartTime: source.StartTime,
		EndTime:   source.EndTime,
		Status:    models.ActivityStatusDraft,
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&clone).Error; err != nil {
			return err
		}
		for _, t := range tasks {
			copied := models.Task{
				ActivityID:     clone.ID,
				Name:           t.Name,
				NameKey:        t.NameKey,
				Points:         t.Points,
				DailyLimit:     t.DailyLimit,
				TotalLimit:     t.TotalLimit,
				TargetTaskName: t.TargetTaskName,
				DescJSON:       t.DescJSON,
				JumpURL:        t.JumpURL,
				Category:       t.Category,
				Platform:       t.Platform,
			}
			if err := tx.Create(&copied).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Activity cloned", Data: clone})
}

func findActivity(w http.ResponseWriter, r *http.Request) (*models.Activity, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || id == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid activity id"})
		return nil, false
	}
	var activity models.Activity
	if err := database.DB.First(&activity, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Activity not found"})
		} else {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		}
		return nil, false
	}
	return &activity, true
}
