package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bulletlog/internal/db"
	"github.com/bulletlog/internal/router"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testUsername = "demo"
	testPassword = "demo123"
	baseURL      = "http://bulletlog.test"
)

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(handler http.Handler) *localClient {
	jar, _ := cookiejar.New(nil)
	return &localClient{handler: handler, jar: jar}
}

func (c *localClient) Do(req *http.Request) (*http.Response, error) {
	if c.jar != nil {
		for _, cookie := range c.jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	if c.jar != nil {
		c.jar.SetCookies(req.URL, resp.Cookies())
	}
	return resp, nil
}

func (c *localClient) postJSON(t *testing.T, path string, payload any) map[string]any {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req, _ := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST %s returned %d: %s", path, resp.StatusCode, raw)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode response of %s: %v", path, err)
	}
	return decoded
}

func (c *localClient) getJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, baseURL+path, nil)

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s returned %d: %s", path, resp.StatusCode, raw)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode response of %s: %v", path, err)
	}
	return decoded
}

func setupE2E(t *testing.T) *localClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := gdb.AutoMigrate(
		&db.User{},
		&db.Note{},
		&db.NoteImage{},
		&db.Label{},
		&db.Task{},
		&db.Habit{},
		&db.HabitLog{},
	); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	db.DB = gdb

	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := gdb.Create(&db.User{Username: testUsername, Password: string(hashed)}).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	engine := router.SetupRouter(gdb, "e2e-secret", t.TempDir(), "/uploads")

	t.Cleanup(func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return newLocalClient(engine)
}

func login(t *testing.T, client *localClient) {
	t.Helper()
	client.postJSON(t, "/api/login", map[string]string{
		"username": testUsername,
		"password": testPassword,
	})
}

func TestE2E_LoginRequired(t *testing.T) {
	client := setupE2E(t)

	req, _ := http.NewRequest(http.MethodGet, baseURL+"/api/habits", nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("GET /api/habits: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 before login, got %d", resp.StatusCode)
	}
}

func TestE2E_HabitFlow(t *testing.T) {
	client := setupE2E(t)
	login(t, client)

	created := client.postJSON(t, "/api/habits", map[string]any{
		"label":            "晨跑",
		"habit_type":       "amount",
		"frequency_days":   3,
		"frequency_period": "week",
		"amount_target":    5,
		"units":            "km",
	})

	habitMap, ok := created["habit"].(map[string]any)
	if !ok {
		t.Fatalf("unexpected create response: %v", created)
	}
	habitID := int(habitMap["id"].(float64))

	// 最近三天各打一次卡
	for daysAgo := 2; daysAgo >= 0; daysAgo-- {
		date := time.Now().AddDate(0, 0, -daysAgo).Format("2006-01-02")
		client.postJSON(t, fmt.Sprintf("/api/habits/%d/logs", habitID), map[string]any{
			"log_date":             date,
			"percentage_completed": 100,
			"amount":               5,
			"amount_target":        5,
		})
	}

	status := client.getJSON(t, fmt.Sprintf("/api/habits/%d/status", habitID))
	logs, ok := status["logs"].([]any)
	if !ok || len(logs) == 0 {
		t.Fatalf("expected computed logs in status payload: %v", status)
	}
	summary, ok := status["summary"].(map[string]any)
	if !ok {
		t.Fatalf("expected summary in status payload: %v", status)
	}
	if summary["overall_completed"].(float64) != 3 {
		t.Fatalf("expected 3 overall completions, got %v", summary["overall_completed"])
	}
	if summary["current_streak"].(float64) != 3 {
		t.Fatalf("expected current streak 3, got %v", summary["current_streak"])
	}

	charts := client.getJSON(t, fmt.Sprintf("/api/habits/%d/charts?year=%d", habitID, time.Now().Year()))
	if _, ok := charts["monthly_completions"]; !ok {
		t.Fatalf("expected chart series: %v", charts)
	}

	list := client.getJSON(t, "/api/habits")
	habits, ok := list["habits"].([]any)
	if !ok || len(habits) != 1 {
		t.Fatalf("expected a single habit in list: %v", list)
	}
}

func TestE2E_NoteAndLabelFlow(t *testing.T) {
	client := setupE2E(t)
	login(t, client)

	label := client.postJSON(t, "/api/labels", map[string]string{"name": "工作", "color": "#60a5fa"})
	labelMap := label["label"].(map[string]any)
	labelID := int(labelMap["id"].(float64))

	note := client.postJSON(t, "/api/notes", map[string]any{
		"title":     "周会纪要",
		"content":   "# 发布计划\n\n下周三发布。",
		"note_date": time.Now().Format("2006-01-02"),
		"label_ids": []int{labelID},
	})
	noteMap := note["note"].(map[string]any)
	noteID := int(noteMap["id"].(float64))

	detail := client.getJSON(t, fmt.Sprintf("/api/notes/%d", noteID))
	detailMap := detail["note"].(map[string]any)
	if html, ok := detailMap["html"].(string); !ok || html == "" {
		t.Fatalf("expected rendered html in note detail: %v", detail)
	}

	filtered := client.getJSON(t, "/api/notes?label=工作")
	if filtered["total"].(float64) != 1 {
		t.Fatalf("expected 1 note with label, got %v", filtered["total"])
	}
}

func TestE2E_TaskFlow(t *testing.T) {
	client := setupE2E(t)
	login(t, client)

	task := client.postJSON(t, "/api/tasks", map[string]any{
		"title":    "写季度总结",
		"due_date": time.Now().AddDate(0, 0, 3).Format("2006-01-02"),
	})
	taskMap := task["task"].(map[string]any)
	taskID := int(taskMap["id"].(float64))

	done := client.postJSON(t, fmt.Sprintf("/api/tasks/%d/complete", taskID), map[string]any{})
	doneMap := done["task"].(map[string]any)
	if doneMap["completed"] != true {
		t.Fatalf("expected task to be completed: %v", done)
	}

	pending := client.getJSON(t, "/api/tasks?status=pending")
	if tasks, ok := pending["tasks"].([]any); !ok || len(tasks) != 0 {
		t.Fatalf("expected no pending tasks: %v", pending)
	}
}
