package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/bulletlog/internal/db"
	"github.com/bulletlog/internal/service"
	"github.com/gin-gonic/gin"
)

type taskPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
	DueDate     string `json:"due_date"` // 2006-01-02
	ParentID    *uint  `json:"parent_id"`
}

// ListTasks 返回顶层任务及其子任务
func (a *API) ListTasks(c *gin.Context) {
	filter := service.TaskFilter{Search: c.Query("search")}

	switch c.Query("status") {
	case "completed":
		completed := true
		filter.Completed = &completed
	case "pending":
		pending := false
		filter.Completed = &pending
	}

	duePtr, ok := parseOptionalDate(c.Query("due_before"))
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的截止日期")
		return
	}
	filter.DueBefore = duePtr

	tasks, err := a.tasks.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取任务列表失败")
		return
	}

	items := make([]gin.H, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, taskToPayload(task))
	}

	c.JSON(http.StatusOK, gin.H{"tasks": items})
}

// GetTask 返回任务详情
func (a *API) GetTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的任务ID")
		return
	}

	task, err := a.tasks.Get(id)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": taskToPayload(*task)})
}

// CreateTask 创建任务
func (a *API) CreateTask(c *gin.Context) {
	input, ok := a.parseTaskInput(c)
	if !ok {
		return
	}

	task, err := a.tasks.Create(input)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": taskToPayload(*task)})
}

// UpdateTask 更新任务
func (a *API) UpdateTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的任务ID")
		return
	}

	input, ok := a.parseTaskInput(c)
	if !ok {
		return
	}

	task, err := a.tasks.Update(id, input)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": taskToPayload(*task)})
}

// CompleteTask 标记任务完成
func (a *API) CompleteTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的任务ID")
		return
	}

	task, err := a.tasks.Complete(id, time.Now())
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": taskToPayload(*task)})
}

// ReopenTask 重新打开任务
func (a *API) ReopenTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的任务ID")
		return
	}

	task, err := a.tasks.Reopen(id)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": taskToPayload(*task)})
}

// DeleteTask 删除任务及其子任务
func (a *API) DeleteTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的任务ID")
		return
	}

	if err := a.tasks.Delete(id); err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ListOverdueTasks 返回逾期未完成的任务
func (a *API) ListOverdueTasks(c *gin.Context) {
	tasks, err := a.tasks.Overdue(time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取逾期任务失败")
		return
	}

	items := make([]gin.H, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, taskToPayload(task))
	}

	c.JSON(http.StatusOK, gin.H{"tasks": items})
}

func (a *API) parseTaskInput(c *gin.Context) (service.TaskInput, bool) {
	var payload taskPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return service.TaskInput{}, false
	}

	duePtr, ok := parseOptionalDate(payload.DueDate)
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的截止日期")
		return service.TaskInput{}, false
	}

	return service.TaskInput{
		Title:       payload.Title,
		Description: payload.Description,
		Color:       payload.Color,
		DueDate:     duePtr,
		ParentID:    payload.ParentID,
	}, true
}

func taskToPayload(task db.Task) gin.H {
	item := gin.H{
		"id":          task.ID,
		"title":       task.Title,
		"description": task.Description,
		"color":       task.Color,
		"completed":   task.CompletedAt != nil,
	}

	if task.DueDate != nil {
		item["due_date"] = task.DueDate.Format(dateFormat)
	}
	if task.CompletedAt != nil {
		item["completed_at"] = task.CompletedAt.Format(time.RFC3339)
	}
	if task.ParentID != nil {
		item["parent_id"] = *task.ParentID
	}

	if len(task.Subtasks) > 0 {
		subtasks := make([]gin.H, 0, len(task.Subtasks))
		for _, sub := range task.Subtasks {
			subtasks = append(subtasks, taskToPayload(sub))
		}
		item["subtasks"] = subtasks
	}

	return item
}

func handleTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		respondError(c, http.StatusNotFound, "任务不存在")
	case errors.Is(err, service.ErrTaskTitleEmpty):
		respondError(c, http.StatusBadRequest, "任务标题不能为空")
	case errors.Is(err, service.ErrTaskBadParent):
		respondError(c, http.StatusBadRequest, "父任务无效")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
