package clients

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/shiyao1122/activity-system/database"
	"github.com/shiyao1122/activity-system/reward"
	"github.com/shiyao1122/activity-system/utils"
)

type reportRequest struct {
	Email        string `json:"email" validate:"required,email"`
	ActivityID   uint   `json:"activityId" validate:"required"`
	TaskName     string `json:"taskName" validate:"required"`
	InviterEmail string `json:"inviterEmail" validate:"omitempty,email"`
}

// POST /api/v1/task/report
func TaskReportHandler(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteRaw(w, http.StatusBadRequest, map[string]interface{}{"error": "Missing required fields"})
		return
	}
	if err := utils.Validate.Struct(&req); err != nil {
		utils.WriteRaw(w, http.StatusBadRequest, map[string]interface{}{"error": "Missing required fields"})
		return
	}

	engine := reward.NewEngine(database.DB)
	res, err := engine.Report(req.Email, req.ActivityID, req.TaskName, req.InviterEmail)
	if err != nil {
		switch {
		case errors.Is(err, reward.ErrTaskNotFound):
			utils.WriteRaw(w, http.StatusNotFound, map[string]interface{}{"error": err.Error()})
		case errors.Is(err, reward.ErrActivityNotActive), errors.Is(err, reward.ErrActivityNotInWindow):
			utils.WriteRaw(w, http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
		default:
			logrus.WithError(err).Error("task report failed")
			utils.WriteRaw(w, http.StatusInternalServerError, map[string]interface{}{"error": "Internal server error"})
		}
		return
	}

	payload := map[string]interface{}{"success": true, "points": res.Points}
	if res.Message != "" {
		payload["message"] = res.Message
	}
	utils.WriteRaw(w, http.StatusOK, payload)
}
