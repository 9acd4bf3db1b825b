package admins

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/shiyao1122/activity-system/utils"
)

type translateRequest struct {
	Text        string   `json:"text" validate:"required"`
	TargetLangs []string `json:"targetLangs" validate:"required,min=1"`
}

// POST /api/admin/translate
// Translation assist for task descriptions; returns a language-code map.
func TranslateHandler(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request"})
		return
	}
	if err := utils.Validate.Struct(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Missing text or targetLangs"})
		return
	}

	translations, err := utils.TranslateText(req.Text, req.TargetLangs)
	if err != nil {
		logrus.WithError(err).Error("translation failed")
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Translation failed"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: translations})
}
