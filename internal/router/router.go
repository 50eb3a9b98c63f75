package router

import (
	"llm-tracker/internal/handler"
	"llm-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRouter(svcCtx *service.ServiceContext, maxMessageLen int) *gin.Engine {
	r := gin.Default()

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// 初始化handlers
	chatHandler := handler.NewChatHandler(svcCtx.ChatService, maxMessageLen)
	taskHandler := handler.NewTaskHandler(svcCtx.TaskService)
	adminHandler := handler.NewAdminHandler(svcCtx.Store)

	// API路由
	api := r.Group("/api")
	{
		api.POST("/chat", chatHandler.ProcessMessage)

		tasks := api.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id/status", taskHandler.UpdateStatus)
		}
	}

	admin := r.Group("/admin")
	{
		admin.POST("/reset", adminHandler.ResetAll)
	}

	return r
}
