package router

import (
	"github.com/bulletlog/internal/handler"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(gdb *gorm.DB, sessionSecret, uploadDir, uploadURL string) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("bulletlog_session", store))

	// 上传文件静态服务
	r.Static(uploadURL, uploadDir)

	api := handler.NewAPI(gdb, uploadDir, uploadURL)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	r.POST("/api/login", api.Login)
	r.POST("/api/logout", api.Logout)

	// 需要认证的业务路由
	auth := r.Group("/api")
	auth.Use(handler.AuthRequired())
	{
		auth.GET("/habits", api.ListHabits)
		auth.GET("/habits/:id", api.GetHabit)
		auth.POST("/habits", api.CreateHabit)
		auth.PUT("/habits/:id", api.UpdateHabit)
		auth.DELETE("/habits/:id", api.DeleteHabit)

		auth.GET("/habits/:id/status", api.GetHabitStatus)
		auth.GET("/habits/:id/streaks", api.GetHabitStreaks)
		auth.GET("/habits/:id/charts", api.GetHabitCharts)
		auth.GET("/habits/:id/logs", api.ListHabitLogs)
		auth.POST("/habits/:id/logs", api.LogHabit)
		auth.DELETE("/habits/:id/logs/:logId", api.DeleteHabitLog)

		auth.GET("/notes", api.ListNotes)
		auth.GET("/notes/calendar", api.GetNotesCalendar)
		auth.GET("/notes/:id", api.GetNote)
		auth.POST("/notes", api.CreateNote)
		auth.PUT("/notes/:id", api.UpdateNote)
		auth.DELETE("/notes/:id", api.DeleteNote)

		auth.GET("/labels", api.ListLabels)
		auth.POST("/labels", api.CreateLabel)
		auth.PUT("/labels/:id", api.UpdateLabel)
		auth.DELETE("/labels/:id", api.DeleteLabel)

		auth.GET("/tasks", api.ListTasks)
		auth.GET("/tasks/overdue", api.ListOverdueTasks)
		auth.GET("/tasks/:id", api.GetTask)
		auth.POST("/tasks", api.CreateTask)
		auth.PUT("/tasks/:id", api.UpdateTask)
		auth.POST("/tasks/:id/complete", api.CompleteTask)
		auth.POST("/tasks/:id/reopen", api.ReopenTask)
		auth.DELETE("/tasks/:id", api.DeleteTask)

		auth.POST("/upload/image", api.UploadImage)
	}

	return r
}
