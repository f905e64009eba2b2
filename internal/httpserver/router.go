package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"contractpay/pkg/rbac"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *AuthHandler,
	contractHandler *ContractHandler,
	templateHandler *TemplateHandler,
	jwtSecret string,
	db *pgxpool.Pool,
) *Router {
	r := gin.Default()
	r.Use(MetricsMiddleware())

	// Public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected
	auth := r.Group("/api")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.GET("/contracts", contractHandler.ListContracts)
		auth.POST("/contracts", RequirePermission(rbac.PermissionCreateContract), contractHandler.CreateContract)
		auth.GET("/contracts/:id", contractHandler.GetContract)
		auth.PATCH("/contracts/:id/status", RequirePermission(rbac.PermissionUpdateContract), contractHandler.UpdateContractStatus)
		auth.GET("/contracts/:id/milestones", contractHandler.ListMilestones)

		auth.POST("/milestones", RequirePermission(rbac.PermissionCreateMilestone), contractHandler.CreateMilestone)
		auth.PATCH("/milestones/:id/status", RequirePermission(rbac.PermissionUpdateMilestone), contractHandler.UpdateMilestoneStatus)
		auth.POST("/milestones/:id/complete", RequirePermission(rbac.PermissionUpdateMilestone), contractHandler.CompleteMilestone)

		auth.GET("/payments", contractHandler.Payments)
		auth.GET("/stats", contractHandler.Stats)

		auth.GET("/templates", templateHandler.ListTemplates)
		auth.POST("/templates", RequirePermission(rbac.PermissionCreateTemplate), templateHandler.CreateTemplate)
		auth.DELETE("/templates/:id", RequirePermission(rbac.PermissionDeleteTemplate), templateHandler.DeleteTemplate)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
