package clients

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/shiyao1122/activity-system/database"
	"github.com/shiyao1122/activity-system/reward"
	"github.com/shiyao1122/activity-system/utils"
)

// GET /api/v1/activity/{id}?lang=
func ActivityDetailsHandler(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		utils.WriteRaw(w, http.StatusBadRequest, map[string]interface{}{"error": "Invalid activity id"})
		return
	}
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = "en"
	}

	engine := reward.NewEngine(database.DB)
	res, err := engine.ActivityDetails(uint(id), lang)
	if err != nil {
		if errors.Is(err, reward.ErrActivityNotFound) {
			utils.WriteRaw(w, http.StatusNotFound, map[string]interface{}{"error": "Activity not found"})
			return
		}
		logrus.WithError(err).Error("activity details failed")
		utils.WriteRaw(w, http.StatusInternalServerError, map[string]interface{}{"error": "Internal server error"})
		return
	}
	utils.WriteRaw(w, http.StatusOK, res)
}
