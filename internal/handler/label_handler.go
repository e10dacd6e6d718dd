package handler

import (
	"errors"
	"net/http"

	"github.com/bulletlog/internal/service"
	"github.com/gin-gonic/gin"
)

type labelPayload struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ListLabels 返回全部标签及其笔记数
func (a *API) ListLabels(c *gin.Context) {
	labels, err := a.labels.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取标签列表失败")
		return
	}

	items := make([]gin.H, 0, len(labels))
	for _, label := range labels {
		items = append(items, gin.H{
			"id":         label.ID,
			"name":       label.Name,
			"color":      label.Color,
			"note_count": label.NoteCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{"labels": items})
}

// CreateLabel 创建标签
func (a *API) CreateLabel(c *gin.Context) {
	var payload labelPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	label, err := a.labels.Create(payload.Name, payload.Color)
	if err != nil {
		handleLabelError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"label": gin.H{"id": label.ID, "name": label.Name, "color": label.Color}})
}

// UpdateLabel 重命名标签或修改颜色
func (a *API) UpdateLabel(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的标签ID")
		return
	}

	var payload labelPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	label, err := a.labels.Update(id, payload.Name, payload.Color)
	if err != nil {
		handleLabelError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"label": gin.H{"id": label.ID, "name": label.Name, "color": label.Color}})
}

// DeleteLabel 删除未被笔记引用的标签
func (a *API) DeleteLabel(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的标签ID")
		return
	}

	if err := a.labels.Delete(id); err != nil {
		handleLabelError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func handleLabelError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLabelNotFound):
		respondError(c, http.StatusNotFound, "标签不存在")
	case errors.Is(err, service.ErrLabelExists):
		respondError(c, http.StatusConflict, "标签名已存在")
	case errors.Is(err, service.ErrLabelInUse):
		respondError(c, http.StatusConflict, "标签仍被笔记使用")
	case errors.Is(err, service.ErrLabelNameEmpty):
		respondError(c, http.StatusBadRequest, "标签名不能为空")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
