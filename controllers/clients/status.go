package clients

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/shiyao1122/activity-system/database"
	"github.com/shiyao1122/activity-system/reward"
	"github.com/shiyao1122/activity-system/utils"
)

// GET /api/v1/user/status?email=&activityId=&lang=
func UserStatusHandler(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	activityIDStr := r.URL.Query().Get("activityId")
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = "en"
	}
	activityID, err := strconv.ParseUint(activityIDStr, 10, 32)
	if email == "" || err != nil || activityID == 0 {
		utils.WriteRaw(w, http.StatusBadRequest, map[string]interface{}{"error": "Missing required fields"})
		return
	}

	engine := reward.NewEngine(database.DB)
	res, err := engine.UserStatus(email, uint(activityID), lang)
	if err != nil {
		if errors.Is(err, reward.ErrActivityNotFound) {
			utils.WriteRaw(w, http.StatusNotFound, map[string]interface{}{"error": "Activity not found"})
			return
		}
		logrus.WithError(err).Error("user status failed")
		utils.WriteRaw(w, http.StatusInternalServerError, map[string]interface{}{"error": "Internal server error"})
		return
	}
	utils.WriteRaw(w, http.StatusOK, res)
}
