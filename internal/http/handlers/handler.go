package handlers

import (
	"time"

	"phonecalls/internal/config"
	"phonecalls/internal/http/middleware"
	"phonecalls/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Source is what the handlers need from a call repository.
type Source interface {
	services.CallSource
	services.CallGetter
}

type Handler struct {
	Source       Source
	Logger       *zap.Logger
	Paging       config.PagingEnv
	CookieSecure bool
	Location     *time.Location
}

func (h *Handler) formatters() services.Formatters {
	return services.DefaultFormatters(h.Location)
}

func (h *Handler) log(c *gin.Context) *zap.Logger {
	l := h.Logger
	if l == nil {
		l = zap.NewNop()
	}
	return l.With(zap.String("request_id", middleware.GetRequestID(c)))
}

// redirectNavigator turns controller navigation into an HTTP redirect.
type redirectNavigator struct {
	target string
}

func (n *redirectNavigator) Navigate(path string) { n.target = path }
