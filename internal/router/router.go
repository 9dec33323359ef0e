package router

import (
	"net/http"

	"github.com/brightsite/internal/handler"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret, uploadDir, uploadURL string) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("brightsite_session", store))

	// 上传资源的静态文件服务
	r.Static(uploadURL, uploadDir)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/posts", api.GetPosts)
		apiGroup.GET("/posts/:slug", api.GetPostBySlug)
		apiGroup.POST("/posts/:slug/view", api.RecordPostView)
		apiGroup.GET("/search", api.SearchPosts)
		apiGroup.GET("/categories", api.GetCategories)
		apiGroup.GET("/authors", api.GetAuthors)
		apiGroup.GET("/authors/:id", api.GetAuthor)
		apiGroup.GET("/pages", api.GetPages)
		apiGroup.GET("/pages/:slug", api.GetPage)

		auth := apiGroup.Group("/auth")
		{
			auth.POST("/signup", api.SignUp)
			auth.POST("/login", api.Login)
			auth.POST("/logout", api.Logout)
			auth.GET("/me", api.Me)
			auth.POST("/reset-password", api.ResetPassword)
			auth.POST("/reset-password/confirm", api.ConfirmResetPassword)
			auth.PUT("/profile", api.AuthRequired(), api.UpdateOwnProfile)
		}

		// 需要编辑角色的后台路由
		admin := apiGroup.Group("/admin")
		admin.Use(api.AuthRequired(), api.RequireEditor())
		{
			admin.POST("/posts", api.CreatePost)
			admin.PUT("/posts/:id", api.UpdatePost)
			admin.DELETE("/posts/:id", api.DeletePost)
			admin.POST("/uploads", api.UploadImage)
			admin.PUT("/pages/:slug", api.SavePage)
			admin.PUT("/users/:id/profile", api.RequireAdmin(), api.UpdateUserProfile)
		}
	}

	return r
}
