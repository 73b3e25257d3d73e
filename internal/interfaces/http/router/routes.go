package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes 注册 /api 路由，storyLimit 只作用于生成与目录接口
func RegisterAPIRoutes(api *gin.RouterGroup, h Handlers, storyLimit gin.HandlerFunc) {
	api.GET("/auth/session", h.Session.Get)
	api.GET("/motd", h.MOTD.Get)
	api.GET("/tokens", h.Token.Get)

	library := api.Group("/library")
	{
		library.GET("", h.Library.List)
		library.POST("", h.Library.RecordExport)
	}

	story := api.Group("/story", storyLimit)
	{
		story.GET("/types", h.Story.ListTypes)
		story.GET("/cards", h.Story.ListCards)
		story.POST("/generate", h.Story.Generate)
		story.POST("/images", h.Story.GenerateImages)
		story.POST("/stage", h.Story.GenerateStage)
	}
}
