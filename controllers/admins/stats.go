package admins

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/shiyao1122/activity-system/database"
	"github.com/shiyao1122/activity-system/models"
	"github.com/shiyao1122/activity-system/utils"
)

type leaderboardEntry struct {
	Email       string    `json:"email"`
	TotalPoints int       `json:"totalPoints"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GET /api/admin/stats/{activityId}
// The top-100 leaderboard is cached in Redis for a short TTL when a client is
// configured; a nil client or a miss falls through to the database.
func StatsHandler(w http.ResponseWriter, r *http.Request) {
	activityID, err := strconv.ParseUint(mux.Vars(r)["activityId"], 10, 32)
	if err != nil || activityID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid activity id"})
		return
	}
	db := database.DB

	var totalUsers int64
	if err := db.Model(&models.UserActivity{}).Where("activity_id = ?", uint(activityID)).Count(&totalUsers).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}
	var totalPoints int64
	if err := db.Model(&models.UserActivity{}).Where("activity_id = ?", uint(activityID)).
		Select("COALESCE(SUM(total_points), 0)").Scan(&totalPoints).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}

	leaderboard, err := topLeaderboard(uint(activityID))
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{
		"totalUsers":  totalUsers,
		"totalPoints": totalPoints,
		"leaderboard": leaderboard,
	}})
}

func topLeaderboard(activityID uint) ([]leaderboardEntry, error) {
	cacheKey := fmt.Sprintf("leaderboard:%d", activityID)
	if utils.RedisClient != nil {
		if raw, err := utils.RedisClient.Get(context.Background(), cacheKey).Result(); err == nil {
			var cached []leaderboardEntry
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		}
	}

	var leaderboard []leaderboardEntry
	if err := database.DB.Model(&models.UserActivity{}).
		Where("activity_id = ?", activityID).
		Select("email, total_points, updated_at").
		Order("total_points DESC").
		Limit(100).
		Scan(&leaderboard).Error; err != nil {
		return nil, err
	}

	if utils.RedisClient != nil {
		if raw, err := json.Marshal(leaderboard); err == nil {
			ttl := 30 * time.Second
			if err := utils.RedisClient.Set(context.Background(), cacheKey, raw, ttl).Err(); err != nil {
				logrus.WithError(err).Warn("leaderboard cache write failed")
			}
		}
	}
	return leaderboard, nil
}

type adjustRequest struct {
	Email      string `json:"email" validate:"required,email"`
	ActivityID uint   `json:"activityId" validate:"required"`
	Points     int    `json:"points" validate:"required"`
	Reason     string `json:"reason"`
}

// POST /api/admin/task/adjust
// Adjusts a balance directly without a task log entry, so the adjustment is
// excluded from limit counting. The reason is only logged.
func AdjustPointsHandler(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request"})
		return
	}
	if err := utils.Validate.Struct(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Missing required fields"})
		return
	}

	var ua models.UserActivity
	if err := database.DB.Where("email = ? AND activity_id = ?", req.Email, req.ActivityID).First(&ua).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found in this activity"})
		} else {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		}
		return
	}
	if err := database.DB.Model(&ua).
		Update("total_points", gorm.Expr("total_points + ?", req.Points)).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}
	logrus.WithFields(logrus.Fields{
		"email":      req.Email,
		"activityId": req.ActivityID,
		"points":     req.Points,
		"reason":     req.Reason,
	}).Info("manual point adjustment")
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Points adjusted"})
}

// GET /api/admin/export/rank?activityId=
// Streams the full ranking as CSV and, when R2 is configured, archives a copy
// to object storage best-effort.
func ExportRankHandler(w http.ResponseWriter, r *http.Request) {
	activityID, err := strconv.ParseUint(r.URL.Query().Get("activityId"), 10, 32)
	if err != nil || activityID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid activity id"})
		return
	}

	type rankRow struct {
		Email       string
		TotalPoints int
	}
	var rows []rankRow
	if err := database.DB.Model(&models.UserActivity{}).
		Where("activity_id = ?", uint(activityID)).
		Select("email, total_points").
		Order("total_points DESC").
		Scan(&rows).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "DB error"})
		return
	}

	var buf []byte
	{
		b := &strings.Builder{}
		cw := csv.NewWriter(b)
		_ = cw.Write([]string{"Email", "Points"})
		for _, row := range rows {
			_ = cw.Write([]string{row.Email, strconv.Itoa(row.TotalPoints)})
		}
		cw.Flush()
		buf = []byte(b.String())
	}

	if utils.ExportArchiveConfigured() {
		name := fmt.Sprintf("rank-activity-%d.csv", activityID)
		if key, err := utils.ArchiveExport(r.Context(), name, "text/csv", buf); err != nil {
			logrus.WithError(err).Warn("rank export archive failed")
		} else {
			logrus.WithField("key", key).Info("rank export archived")
		}
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="rank.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf)
}
