package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/cuervo/pkg/logger"
)

type Handlers struct {
	Auth    *AuthHandler
	Profile *ProfileHandler
	Public  *PublicHandler
}

type RouterOptions struct {
	Authenticator   Authenticator
	PublicRateLimit float64
	PublicRateBurst int
}

func NewRouter(h Handlers, opts RouterOptions, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log), ErrorMiddleware(log))

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

	authMiddleware := AuthMiddleware(opts.Authenticator, log)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", h.Auth.SignUp)
			authGroup.POST("/login", h.Auth.Login)
			authGroup.POST("/logout", authMiddleware, h.Auth.Logout)
			authGroup.GET("/session", authMiddleware, h.Auth.Session)
		}

		profiles := api.Group("/profiles")
		profiles.Use(authMiddleware)
		{
			profiles.GET("", h.Profile.Load)
			profiles.GET("/workspace", h.Profile.Workspace)
			profiles.GET("/qr", h.Profile.QR)
			profiles.POST("/drafts", h.Profile.AddDraft)
			profiles.PATCH("/:ref", h.Profile.Edit)
			profiles.POST("/:ref/toggle", h.Profile.Toggle)
			profiles.POST("/:ref/save", h.Profile.Save)
			profiles.POST("/:ref/choose", h.Profile.Choose)
			profiles.DELETE("/:ref", h.Profile.Delete)
		}
	}

	public := router.Group("/public")
	if opts.PublicRateLimit > 0 {
		public.Use(RateLimitMiddleware(opts.PublicRateLimit, opts.PublicRateBurst, log))
	}
	{
		public.GET("/:token", h.Public.Resolve)
		public.GET("/:token/qr", h.Public.QR)
	}

	return router
}
