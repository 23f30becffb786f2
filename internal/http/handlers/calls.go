package handlers

import (
	"net/http"
	"strconv"

	"phonecalls/internal/domain"
	"phonecalls/internal/http/middleware"
	"phonecalls/internal/http/views"
	"phonecalls/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type listParams struct {
	route    services.RouteParams
	pageSize int
	filter   domain.CallFilter
	nav      services.Navigator
}

func (h *Handler) newListPage(c *gin.Context, p listParams) *services.CallsListPage {
	return services.NewCallsListPage(services.CallsListOptions{
		Source:    h.Source,
		Navigator: p.nav,
		Format:    h.formatters(),
		RequestID: middleware.GetRequestID(c),
		Route:     p.route,
		PageSize:  p.pageSize,
		Filter:    p.filter,
	})
}

// sessionListPage builds the list controller from the URL page and the
// session page size and filter.
func (h *Handler) sessionListPage(c *gin.Context, nav services.Navigator) *services.CallsListPage {
	return h.newListPage(c, listParams{
		route:    services.RouteParamsFromQuery(c.Request.URL.Query()),
		pageSize: h.sessionPageSize(c),
		filter:   h.sessionFilter(c),
		nav:      nav,
	})
}

func viewStatus(v services.CallsListView) int {
	switch v.Status {
	case services.StatusReady:
		return http.StatusOK
	case services.StatusNotFound:
		return http.StatusNotFound
	case services.StatusError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ListCallsPage renders GET /calls/.
func (h *Handler) ListCallsPage(c *gin.Context) {
	page := h.sessionListPage(c, nil)
	page.Load(c.Request.Context())
	if err := page.Err(); err != nil {
		h.log(c).Warn("calls fetch failed", zap.Error(err))
	}

	view := page.View()
	c.HTML(viewStatus(view), views.CallsList, view)
}

// formPage reads the page the form was submitted from.
func formPage(c *gin.Context) services.RouteParams {
	if raw, ok := c.GetPostForm("page"); ok {
		return services.RouteParams{Page: raw}
	}
	return services.RouteParamsFromQuery(c.Request.URL.Query())
}

// SetPageSize handles POST /calls/page-size. The active page is kept.
func (h *Handler) SetPageSize(c *gin.Context) {
	size, err := h.parsePageSize(c.PostForm("page_size"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	nav := &redirectNavigator{}
	page := h.newListPage(c, listParams{
		route:    formPage(c),
		pageSize: h.sessionPageSize(c),
		filter:   h.sessionFilter(c),
		nav:      nav,
	})
	if err := page.HandlePageSize(size); err != nil {
		RespondDomainError(c, err)
		return
	}

	h.setSessionCookie(c, cookiePageSize, strconv.Itoa(page.State().PageSize))
	page.HandlePageChange(page.State().ActivePage)
	c.Redirect(http.StatusSeeOther, nav.target)
}

// SetFilter handles POST /calls/filter.
func (h *Handler) SetFilter(c *gin.Context) {
	nav := &redirectNavigator{}
	page := h.newListPage(c, listParams{
		route:    formPage(c),
		pageSize: h.sessionPageSize(c),
		filter:   h.sessionFilter(c),
		nav:      nav,
	})
	if err := page.HandleFilter(domain.CallFilter(c.PostForm("filter"))); err != nil {
		RespondDomainError(c, err)
		return
	}

	h.setSessionCookie(c, cookieFilter, string(page.State().Filter))
	page.HandlePageChange(page.State().ActivePage)
	c.Redirect(http.StatusSeeOther, nav.target)
}

// CallDetailPage renders GET /calls/:id.
func (h *Handler) CallDetailPage(c *gin.Context) {
	svc := services.CallDetailService{
		Source:    h.Source,
		Format:    h.formatters(),
		RequestID: middleware.GetRequestID(c),
	}
	v, err := svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		msg := services.MessageError
		if domain.IsNotFound(err) {
			msg = services.MessageNotFound
		} else if domain.IsValidation(err) {
			msg = err.Error()
		}
		c.HTML(statusFor(err), views.CallDetail, gin.H{"Message": msg})
		return
	}
	c.HTML(http.StatusOK, views.CallDetail, gin.H{"Call": v})
}

// ExportCallsPDF handles GET /calls/export.pdf for the displayed page.
func (h *Handler) ExportCallsPDF(c *gin.Context) {
	page := h.sessionListPage(c, nil)
	page.Load(c.Request.Context())
	view := page.View()
	if view.Status != services.StatusReady {
		c.HTML(viewStatus(view), views.CallsList, view)
		return
	}

	svc := services.ExportService{RequestID: middleware.GetRequestID(c)}
	pdfBytes, filename, err := svc.CallsListPDF(view)
	if err != nil {
		h.log(c).Error("calls pdf export failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "export_failed", "ERROR", nil)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// ListCallsAPI handles GET /api/calls. API clients carry page size and filter
// in the query string.
func (h *Handler) ListCallsAPI(c *gin.Context) {
	pageSize := h.defaultPageSize()
	if raw := c.Query("page_size"); raw != "" {
		n, err := h.parsePageSize(raw)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		pageSize = n
	}
	filter := domain.FilterAll
	if raw := c.Query("filter"); raw != "" {
		f, err := domain.ParseCallFilter(raw)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		filter = f
	}

	page := h.newListPage(c, listParams{
		route:    services.RouteParamsFromQuery(c.Request.URL.Query()),
		pageSize: pageSize,
		filter:   filter,
	})
	page.Load(c.Request.Context())

	view := page.View()
	switch view.Status {
	case services.StatusReady:
		c.JSON(http.StatusOK, view)
	case services.StatusNotFound:
		RespondDomainError(c, domain.NotFoundError{Resource: "calls"})
	default:
		h.log(c).Warn("calls fetch failed", zap.Error(page.Err()))
		RespondDomainError(c, page.Err())
	}
}

// GetCallAPI handles GET /api/calls/:id.
func (h *Handler) GetCallAPI(c *gin.Context) {
	svc := services.CallDetailService{
		Source:    h.Source,
		Format:    h.formatters(),
		RequestID: middleware.GetRequestID(c),
	}
	v, err := svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}
