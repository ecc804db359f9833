package handler

import (
	"complaintdesk/backend/internal/auth"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter wires every route. All routes except /health require a bearer
// token.
func NewRouter(h *Handler, issuer *auth.Issuer, roles auth.RoleResolver, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = corsOrigins
	}
	r.Use(cors.New(corsConfig))

	r.GET("/health", h.Health)

	api := r.Group("/", auth.Middleware(issuer, roles))
	{
		api.GET("/me", h.Me)
		api.GET("/categories", h.Categories)

		api.GET("/complaints", h.ListComplaints)
		api.POST("/complaints", h.CreateComplaint)
		api.GET("/complaints/:id", h.GetComplaint)
		api.PATCH("/complaints/:id/status", h.UpdateStatus)
		api.PATCH("/complaints/:id/assign", h.Assign)
		api.PATCH("/complaints/:id/resolve", h.Resolve)

		api.GET("/complaints/:id/comments", h.ListComments)
		api.POST("/complaints/:id/comments", h.AddComment)
		api.GET("/complaints/:id/messages", h.ListMessages)
		api.POST("/complaints/:id/messages", h.PostMessage)

		api.GET("/admin/users", h.ListUsers)
		api.PATCH("/admin/users/:id/role", h.SetRole)
		api.DELETE("/admin/users/:id", h.DeleteUser)

		api.GET("/ws", h.ServeWebSocket(newUpgrader(corsOrigins)))
	}
	return r
}
