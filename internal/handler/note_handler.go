package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/bulletlog/internal/db"
	"github.com/bulletlog/internal/service"
	"github.com/gin-gonic/gin"
)

type notePayload struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Color     string   `json:"color"`
	IsStarred bool     `json:"is_starred"`
	NoteDate  string   `json:"note_date"` // 2006-01-02
	LabelIDs  []uint   `json:"label_ids"`
	ImageURLs []string `json:"image_urls"`
}

// ListNotes 返回分页的笔记列表，支持关键字、标签、收藏与日期过滤
func (a *API) ListNotes(c *gin.Context) {
	filter := service.NoteFilter{
		Search:     c.Query("search"),
		LabelNames: c.QueryArray("label"),
		Starred:    c.Query("starred") == "true",
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "20")); err == nil {
		filter.PerPage = perPage
	}

	startPtr, ok := parseOptionalDate(c.Query("start"))
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的开始日期")
		return
	}
	endPtr, ok := parseOptionalDate(c.Query("end"))
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的结束日期")
		return
	}
	filter.StartDate = startPtr
	filter.EndDate = endPtr

	result, err := a.notes.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取笔记列表失败")
		return
	}

	items := make([]gin.H, 0, len(result.Notes))
	for _, note := range result.Notes {
		items = append(items, noteToPayload(note, false))
	}

	c.JSON(http.StatusOK, gin.H{
		"notes":       items,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
		"per_page":    result.PerPage,
	})
}

// GetNote 返回笔记详情，包含渲染后的 HTML 正文
func (a *API) GetNote(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的笔记ID")
		return
	}

	note, err := a.notes.Get(id)
	if err != nil {
		handleNoteError(c, err)
		return
	}

	payload := noteToPayload(*note, true)
	c.JSON(http.StatusOK, gin.H{"note": payload})
}

// CreateNote 创建笔记
func (a *API) CreateNote(c *gin.Context) {
	input, ok := a.parseNoteInput(c)
	if !ok {
		return
	}

	note, err := a.notes.Create(input)
	if err != nil {
		handleNoteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"note": noteToPayload(*note, false)})
}

// UpdateNote 更新笔记
func (a *API) UpdateNote(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的笔记ID")
		return
	}

	input, ok := a.parseNoteInput(c)
	if !ok {
		return
	}

	note, err := a.notes.Update(id, input)
	if err != nil {
		handleNoteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"note": noteToPayload(*note, false)})
}

// DeleteNote 删除笔记
func (a *API) DeleteNote(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的笔记ID")
		return
	}

	if err := a.notes.Delete(id); err != nil {
		respondError(c, http.StatusInternalServerError, "删除笔记失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GetNotesCalendar 返回指定月份的笔记，用于日历视图。
// 省略参数时取当前月份。
func (a *API) GetNotesCalendar(c *gin.Context) {
	now := time.Now()
	year := now.Year()
	month := int(now.Month())

	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的年份")
			return
		}
		year = parsed
	}
	if raw := c.Query("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			respondError(c, http.StatusBadRequest, "无效的月份")
			return
		}
		month = parsed
	}

	notes, err := a.notes.ListByMonth(year, time.Month(month))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取笔记日历失败")
		return
	}

	items := make([]gin.H, 0, len(notes))
	for _, note := range notes {
		items = append(items, noteToPayload(note, false))
	}

	c.JSON(http.StatusOK, gin.H{"year": year, "month": month, "notes": items})
}

func (a *API) parseNoteInput(c *gin.Context) (service.NoteInput, bool) {
	var payload notePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return service.NoteInput{}, false
	}

	notePtr, ok := parseOptionalDate(payload.NoteDate)
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的笔记日期")
		return service.NoteInput{}, false
	}

	input := service.NoteInput{
		Title:     payload.Title,
		Content:   payload.Content,
		Color:     payload.Color,
		IsStarred: payload.IsStarred,
		LabelIDs:  payload.LabelIDs,
		ImageURLs: payload.ImageURLs,
	}
	if notePtr != nil {
		input.NoteDate = *notePtr
	}

	return input, true
}

func noteToPayload(note db.Note, withHTML bool) gin.H {
	labels := make([]gin.H, 0, len(note.Labels))
	for _, label := range note.Labels {
		labels = append(labels, gin.H{"id": label.ID, "name": label.Name, "color": label.Color})
	}

	images := make([]gin.H, 0, len(note.Images))
	for _, image := range note.Images {
		item := gin.H{"id": image.ID, "url": image.URL}
		if image.ThumbnailURL != "" {
			item["thumbnail_url"] = image.ThumbnailURL
		}
		images = append(images, item)
	}

	item := gin.H{
		"id":         note.ID,
		"title":      note.Title,
		"content":    note.Content,
		"color":      note.Color,
		"is_starred": note.IsStarred,
		"note_date":  note.NoteDate.Format(dateFormat),
		"word_count": note.WordCount,
		"labels":     labels,
		"images":     images,
	}

	if withHTML {
		if rendered, err := service.RenderHTML(note.Content); err == nil {
			item["html"] = rendered
		}
	}

	return item
}

func handleNoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoteNotFound):
		respondError(c, http.StatusNotFound, "笔记不存在")
	case errors.Is(err, service.ErrLabelNotFound):
		respondError(c, http.StatusBadRequest, "引用了不存在的标签")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
