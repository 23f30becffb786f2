package api

import (
	stdhttp "net/http"

	intconfig "phonecalls/internal/config"
	h "phonecalls/internal/http/handlers"
	"phonecalls/internal/http/middleware"
	"phonecalls/internal/http/views"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(env intconfig.Env, handler *h.Handler, log *zap.Logger) (*gin.Engine, error) {
	tmpl, err := views.Load()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(log), gin.Recovery(), middleware.CORS(env.AllowedOrigins()))
	r.SetHTMLTemplate(tmpl)

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	r.GET("/", h.RootRedirect)

	calls := r.Group("/calls")
	{
		calls.GET("/", handler.ListCallsPage)
		calls.GET("/export.pdf", handler.ExportCallsPDF)
		calls.GET("/:id", handler.CallDetailPage)
		calls.POST("/page-size", handler.SetPageSize)
		calls.POST("/filter", handler.SetFilter)
	}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/calls", handler.ListCallsAPI)
		api.GET("/calls/:id", handler.GetCallAPI)
	}

	return r, nil
}
