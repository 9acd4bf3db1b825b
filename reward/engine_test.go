package reward

import (
	"errors"
	"testing"
	"time"

	"github.com/shiyao1122/activity-system/models"
)

func TestReportAwardsPoints(t *testing.T) {
	db := openTestDB(t)
	activity := seedActivity(t, db)
	seedTask(t, db, activity.ID, "login", 100, 0, 0, "")

	res, err := NewEngine(db).Report("u@example.com", activity.ID, "login", "")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if res.Points != 100 {
		t.Fatalf("points = %d, want 100", res.Points)
	}
	if got := balanceOf(t, db, "u@example.com", activity.ID); got != 100 {
		t.Fatalf("balance = %d, want 100", got)
	}
}

func TestReportTaskNameIsCaseInsensitive(t *testing.T) {
	db := openTestDB(t)
	activity := seedActivity(t, db)
	seedTask(t, db, activity.ID, "Daily-Login", 10, 0, 0, "")

	res, err := NewEngine(db).Report("u@example.com", activity.ID, "daily-login", "")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if res.Points != 10 {
		t.Fatalf("points = %d, want 10", res.Points)
	}
}

func TestReportDailyLimitSkipsWithoutError(t *testing.T) {
	db := openTestDB(t)
	activity := seedActivity(t, db)
	seedTask(t, db, activity.ID, "login", 100, 1, 0, "")
	engine := NewEngine(db)

	first, err := engine.Report("u@example.com", activity.ID, "login", "")
	if err != nil || first.Points != 100 {
		t.Fatalf("first report: points=%d err=%v", first.Points, err)
	}
	second, err := engine.Report("u@example.com", activity.ID, "login", "")
	if err != nil {
		t.Fatalf("second report should be a no-op, got error: %v", err)
	}
	if second.Points != 0 {
		t.Fatalf("second report points = %d, want 0", second.Points)
	}
	if second.Message != "Daily limit reached" {
		t.Fatalf("message = %q", second.Message)
	}
	if got := balanceOf(t, db, "u@example.com", activity.ID); got != 100 {
		t.Fatalf("balance = %d, want 100", got)
	}
	if n := logCount(t, db, "u@example.com", activity.ID); n != 1 {
		t.Fatalf("log count = %d, want 1", n)
	}
}

func TestReportTotalLimitNeverExceeded(t *testing.T) {
	db := openTestDB(t)
	activity := seedActivity(t, db)
	seedTask(t, db, activity.ID, "share", 5, 0, 3, "")
	engine := NewEngine(db)

	for i := 0; i < 6; i++ {
		if _, err := engine.Report("u@example.com", activity.ID, "share", ""); err != nil {
			t.Fatalf("report %d: %v", i, err)
		}
	}
	if n := logCount(t, db, "u@example.com", activity.ID); n != 3 {
		t.Fatalf("log count = %d, want 3", n)
	}
	if got := balanceOf(t, db, "u@example.com", activity.ID); got != 15 {
		t.Fatalf("balance = %d, want 15", got)
	}
}

func TestReportDraftActivityRejectedWithoutWrites(t *testing.T) {
	db := openTestDB(t)
	activity := &models.Activity{
		Name:      "Pending",
		StartTime: time.Now().Add(-time.Hour),
		EndTime:   time.Now().Add(time.Hour),
		Status:    models.ActivityStatusDraft,
	}
	if err := db.Create(activity).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	seedTask(t, db, activity.ID, "login", 100, 0, 0, "")

	_, err := NewEngine(db).Report("u@example.com", activity.ID, "login", "")
	if !errors.Is(err, ErrActivityNotActive) {
		t.Fatalf("err = %v, want ErrActivityNotActive", err)
	}
	var count int64
	db.Model(&models.UserActivity{}).Count(&count)
	if count != 0 {
		t.Fatalf("user activity rows = %d, want 0", count)
	}
}

func TestReportOutsideWindowRejected(t *testing.T) {
	db := openTestDB(t)
	activity := &models.Activity{
		Name:      "Finished",
		StartTime: time.Now().Add(-48 * time.Hour),
		EndTime:   time.Now().Add(-24 * time.Hour),
		Status:    models.ActivityStatusActive,
	}
	if err := db.Create(activity).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	seedTask(t, db, activity.ID, "login", 100, 0, 0, "")

	_, err := NewEngine(db).Report("u@example.com", activity.ID, "login", "")
	if !errors.Is(err, ErrActivityNotInWindow) {
		t.Fatalf("err = %v, want ErrActivityNotInWindow", err)
	}
}

func TestReportUnknownTask(t *testing.T) {
	db := openTestDB(t)
	activity := seedActivity(t, db)

	_, err := NewEngine(db).Report("u@example.com", activity.ID, "missing", "")
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("err = %v, want ErrTaskNotFound", err)
	}
}

func TestInviteCascadePaysInviter(t *testing.T) {
	db := openTestDB(t)
	activity := seedActivity(t, db)
	seedTask(t, db, activity.ID, "register", 100, 0, 1, "")
	bonus := seedTask(t, db, activity.ID, "invite-reward", 50, 0, 0, "register")
	engine := NewEngine(db)

	res, err := engine.Report("invitee@example.com", activity.ID, "register", "inviter@example.com")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if res.Points != 100 {
		t.Fatalf("invitee points = %d, want 100", res.Points)
	}
	if len(res.Cascade) != 1 || res.Cascade[0].TaskID != bonus.ID || res.Cascade[0].Points != 50 {
		t.Fatalf("cascade = %+v", res.Cascade)
	}
	if got := balanceOf(t, db, "inviter@example.com", activity.ID); got != 50 {
		t.Fatalf("inviter balance = %d, want 50", got)
	}
}

func TestInviteRelationIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	activity := seedActivity(t, db)
	seedTask(t, db, activity.ID, "register", 100, 0, 0, "")
	seedTask(t, db, activity.ID, "invite-reward", 50, 0, 0, "register")
	engine := NewEngine(db)

	for i := 0; i < 3; i++ {
		if _, err := engine.Report("invitee@example.com", activity.ID, "register", "inviter@example.com"); err != nil {
			t.Fatalf("report %d: %v", i, err)
		}
	}
	var relations int64
	db.Model(&models.UserRelation{}).
		Where("inviter_email = ? AND invitee_email = ? AND activity_id = ?",
			"inviter@example.com", "invitee@example.com", activity.ID).
		Count(&relations)
	if relations != 1 {
		t.Fatalf("relation rows = %d, want 1", relations)
	}
}

func TestInviteCascadeRespectsInviterLimits(t *testing.T) {
	db := openTestDB(t)
	activity := seedActivity(t, db)
	seedTask(t, db, activity.ID, "register", 100, 0, 0, "")
	seedTask(t, db, activity.ID, "invite-reward", 50, 0, 1, "register")
	engine := NewEngine(db)

	if _, err := engine.Report("a@example.com", activity.ID, "register", "inviter@example.com"); err != nil {
		t.Fatalf("first invitee: %v", err)
	}
	res, err := engine.Report("b@example.com", activity.ID, "register", "inviter@example.com")
	if err != nil {
		t.Fatalf("second invitee: %v", err)
	}
	// The second invitee is unaffected by the inviter's exhausted bonus.
	if res.Points != 100 {
		t.Fatalf("second invitee points = %d, want 100", res.Points)
	}
	if len(res.Cascade) != 0 {
		t.Fatalf("cascade = %+v, want empty", res.Cascade)
	}
	if got := balanceOf(t, db, "inviter@example.com", activity.ID); got != 50 {
		t.Fatalf("inviter balance = %d, want 50", got)
	}
}

func TestSelfInviteDoesNotCascade(t *testing.T) {
	db := openTestDB(t)
	activity := seedActivity(t, db)
	seedTask(t, db, activity.ID, "register", 100, 0, 0, "")
	seedTask(t, db, activity.ID, "invite-reward", 50, 0, 0, "register")

	res, err := NewEngine(db).Report("u@example.com", activity.ID, "register", "u@example.com")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(res.Cascade) != 0 {
		t.Fatalf("cascade = %+v, want empty", res.Cascade)
	}
	var relations int64
	db.Model(&models.UserRelation{}).Count(&relations)
	if relations != 0 {
		t.Fatalf("relation rows = %d, want 0", relations)
	}
}

func TestMultipleBonusTasksAllPay(t *testing.T) {
	db := openTestDB(t)
	activity := seedActivity(t, db)
	seedTask(t, db, activity.ID, "register", 100, 0, 0, "")
	seedTask(t, db, activity.ID, "invite-reward-a", 50, 0, 0, "register")
	seedTask(t, db, activity.ID, "invite-reward-b", 25, 0, 0, "register")

	res, err := NewEngine(db).Report("invitee@example.com", activity.ID, "register", "inviter@example.com")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(res.Cascade) != 2 {
		t.Fatalf("cascade awards = %d, want 2", len(res.Cascade))
	}
	if got := balanceOf(t, db, "inviter@example.com", activity.ID); got != 75 {
		t.Fatalf("inviter balance = %d, want 75", got)
	}
}

// The running balance must always equal the sum of the log entries.
func TestBalanceMatchesLogSum(t *testing.T) {
	db := openTestDB(t)
	activity := seedActivity(t, db)
	seedTask(t, db, activity.ID, "login", 10, 0, 0, "")
	seedTask(t, db, activity.ID, "share", 20, 2, 0, "")
	seedTask(t, db, activity.ID, "register", 100, 0, 1, "")
	seedTask(t, db, activity.ID, "invite-reward", 50, 0, 0, "register")
	engine := NewEngine(db)

	emails := []string{"a@example.com", "b@example.com"}
	for _, email := range emails {
		for i := 0; i < 4; i++ {
			if _, err := engine.Report(email, activity.ID, "login", ""); err != nil {
				t.Fatalf("login: %v", err)
			}
			if _, err := engine.Report(email, activity.ID, "share", ""); err != nil {
				t.Fatalf("share: %v", err)
			}
		}
		if _, err := engine.Report(email, activity.ID, "register", "inviter@example.com"); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	var balances []models.UserActivity
	if err := db.Find(&balances).Error; err != nil {
		t.Fatalf("load balances: %v", err)
	}
	for _, ua := range balances {
		var sum int64
		if err := db.Model(&models.TaskLog{}).
			Where("user_activity_id = ?", ua.ID).
			Select("COALESCE(SUM(points_earned), 0)").Scan(&sum).Error; err != nil {
			t.Fatalf("sum logs: %v", err)
		}
		if int64(ua.TotalPoints) != sum {
			t.Fatalf("%s: balance %d != log sum %d", ua.Email, ua.TotalPoints, sum)
		}
	}
}
