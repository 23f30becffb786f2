package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	intconfig "phonecalls/internal/config"
	"phonecalls/internal/domain"
	"phonecalls/internal/domain/models"
	h "phonecalls/internal/http/handlers"
	"phonecalls/internal/services"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	page     *models.CallPage
	err      error
	calls    map[string]models.Call
	requests []domain.PageRequest
}

func (f *fakeSource) ListPage(_ context.Context, req domain.PageRequest) (*models.CallPage, error) {
	f.requests = append(f.requests, req)
	return f.page, f.err
}

func (f *fakeSource) GetByID(_ context.Context, id string) (*models.Call, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.calls[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func fixtureCalls() []models.Call {
	at := time.Date(2022, time.March, 7, 9, 5, 0, 0, time.UTC)
	return []models.Call{
		{ID: "in-1", Direction: models.DirectionInbound, CallType: models.CallTypeMissed, From: "+33 1 11", To: "+33 2 22",
			Duration: 65000, CreatedAt: at, Notes: []models.Note{{ID: "n1", Content: "call back"}, {ID: "n2", Content: "urgent"}}},
		{ID: "out-1", Direction: models.DirectionOutbound, CallType: models.CallTypeAnswered, From: "+33 3 33", To: "+33 4 44",
			Duration: 120000, CreatedAt: at},
		{ID: "in-2", Direction: models.DirectionInbound, CallType: "voicemail", From: "+33 5 55", To: "+33 6 66",
			Duration: 3000, CreatedAt: at},
	}
}

func newTestRouter(t *testing.T, src *fakeSource) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	env := intconfig.Env{CORSAllowedOrigins: []string{"http://localhost:5173"}}
	handler := &h.Handler{
		Source:   src,
		Logger:   zap.NewNop(),
		Paging:   intconfig.PagingEnv{DefaultPageSize: 5, MaxPageSize: 100},
		Location: time.UTC,
	}
	r, err := NewRouter(env, handler, zap.NewNop())
	require.NoError(t, err)
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r http.Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return do(r, req)
}

func postForm(r http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(r, req)
}

func parseHTML(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	return doc
}

func TestListPageRendersRows(t *testing.T) {
	src := &fakeSource{page: &models.CallPage{TotalCount: 42, Nodes: fixtureCalls()}}
	w := get(newTestRouter(t, src), "/calls/?page=3")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []domain.PageRequest{{Offset: 10, Limit: 5}}, src.requests)

	doc := parseHTML(t, w)
	assert.Equal(t, "Calls History", doc.Find("h1").Text())

	rows := doc.Find("a.call")
	require.Equal(t, 3, rows.Length())

	first := rows.First()
	href, _ := first.Attr("href")
	assert.Equal(t, "/calls/in-1", href)
	assert.Equal(t, "Missed call", first.Find(".title").Text())
	assert.Equal(t, "from +33 1 11", first.Find(".subtitle").Text())
	assert.Equal(t, "1 minute 5 seconds", first.Find(".duration").Text())
	assert.Equal(t, "Mar 07 - 09:05", first.Find(".date").Text())
	assert.Equal(t, "Call has 2 notes", first.Find(".notes").Text())
	assert.True(t, first.Find(".icon").HasClass("diagonal-down"))

	second := rows.Eq(1)
	assert.Equal(t, "Call answered", second.Find(".title").Text())
	assert.Equal(t, "to +33 4 44", second.Find(".subtitle").Text())
	assert.Equal(t, "", second.Find(".notes").Text())
	assert.True(t, second.Find(".icon").HasClass("diagonal-up"))

	assert.Equal(t, "Voicemail", rows.Eq(2).Find(".title").Text())

	nav := doc.Find("nav.pagination")
	require.Equal(t, 1, nav.Length())
	total, _ := nav.Attr("data-total")
	assert.Equal(t, "42", total)
	assert.Equal(t, "3", nav.Find("a.page.active").Text())
}

func TestListPageAppliesSessionState(t *testing.T) {
	src := &fakeSource{page: &models.CallPage{TotalCount: 42, Nodes: fixtureCalls()}}
	w := get(newTestRouter(t, src), "/calls/?page=2",
		&http.Cookie{Name: "calls_page_size", Value: "10"},
		&http.Cookie{Name: "calls_filter", Value: "outbound"},
	)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []domain.PageRequest{{Offset: 10, Limit: 10}}, src.requests)

	doc := parseHTML(t, w)
	rows := doc.Find("a.call")
	require.Equal(t, 1, rows.Length())
	dir, _ := rows.Attr("data-direction")
	assert.Equal(t, "outbound", dir)
	total, _ := doc.Find("nav.pagination").Attr("data-total")
	assert.Equal(t, "42", total)
}

func TestListPageTamperedCookiesFallBack(t *testing.T) {
	src := &fakeSource{page: &models.CallPage{TotalCount: 3, Nodes: fixtureCalls()}}
	w := get(newTestRouter(t, src), "/calls/?page=abc",
		&http.Cookie{Name: "calls_page_size", Value: "-3"},
		&http.Cookie{Name: "calls_filter", Value: "sideways"},
	)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []domain.PageRequest{{Offset: 0, Limit: 5}}, src.requests)
	assert.Equal(t, 3, parseHTML(t, w).Find("a.call").Length())
}

func TestListPageWithoutTotalHidesPagination(t *testing.T) {
	src := &fakeSource{page: &models.CallPage{TotalCount: 0, Nodes: fixtureCalls()}}
	w := get(newTestRouter(t, src), "/calls/")
	require.Equal(t, http.StatusOK, w.Code)
	doc := parseHTML(t, w)
	assert.Equal(t, 3, doc.Find("a.call").Length())
	assert.Equal(t, 0, doc.Find("nav.pagination").Length())
}

func TestListPageErrorAndNotFound(t *testing.T) {
	src := &fakeSource{err: domain.UpstreamError{Op: "paginatedCalls", Err: errors.New("dial tcp: refused")}}
	w := get(newTestRouter(t, src), "/calls/")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	doc := parseHTML(t, w)
	assert.Equal(t, "ERROR", doc.Find("p.status").Text())
	assert.NotContains(t, w.Body.String(), "refused")

	src = &fakeSource{}
	w = get(newTestRouter(t, src), "/calls/")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", parseHTML(t, w).Find("p.status").Text())
}

func TestSetPageSizeKeepsPage(t *testing.T) {
	w := postForm(newTestRouter(t, &fakeSource{}), "/calls/page-size", url.Values{"page_size": {"10"}, "page": {"2"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/calls/?page=2", w.Header().Get("Location"))

	cookie := w.Result().Cookies()
	require.Len(t, cookie, 1)
	assert.Equal(t, "calls_page_size", cookie[0].Name)
	assert.Equal(t, "10", cookie[0].Value)
	assert.True(t, cookie[0].HttpOnly)
}

func TestSetPageSizeRejectsInvalid(t *testing.T) {
	r := newTestRouter(t, &fakeSource{})
	for _, v := range []string{"0", "abc", "1000"} {
		w := postForm(r, "/calls/page-size", url.Values{"page_size": {v}, "page": {"1"}})
		assert.Equal(t, http.StatusBadRequest, w.Code, "page_size=%s", v)
	}
}

func TestSetFilter(t *testing.T) {
	r := newTestRouter(t, &fakeSource{})

	w := postForm(r, "/calls/filter", url.Values{"filter": {"inbound"}, "page": {"4"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/calls/?page=4", w.Header().Get("Location"))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "inbound", cookies[0].Value)

	w = postForm(r, "/calls/filter", url.Values{"filter": {"sideways"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCallDetailPage(t *testing.T) {
	calls := fixtureCalls()
	src := &fakeSource{calls: map[string]models.Call{"in-1": calls[0]}}
	r := newTestRouter(t, src)

	w := get(r, "/calls/in-1")
	require.Equal(t, http.StatusOK, w.Code)
	doc := parseHTML(t, w)
	assert.Equal(t, "Missed call", doc.Find("h1.title").Text())
	assert.Equal(t, 2, doc.Find("li.note").Length())
	back, _ := doc.Find("a.back").Attr("href")
	assert.Equal(t, "/calls/?page=1", back)

	w = get(r, "/calls/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", parseHTML(t, w).Find("p.status").Text())
}

func TestExportPDF(t *testing.T) {
	src := &fakeSource{page: &models.CallPage{TotalCount: 3, Nodes: fixtureCalls()}}
	w := get(newTestRouter(t, src), "/calls/export.pdf?page=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "CALLS_page1_all.pdf")
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestListCallsAPI(t *testing.T) {
	src := &fakeSource{page: &models.CallPage{TotalCount: 42, Nodes: fixtureCalls()}}
	w := get(newTestRouter(t, src), "/api/calls?page=2&page_size=10&filter=inbound")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []domain.PageRequest{{Offset: 10, Limit: 10}}, src.requests)

	var view services.CallsListView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, services.StatusReady, view.Status)
	assert.Len(t, view.Rows, 2)
	require.NotNil(t, view.Pagination)
	assert.Equal(t, 42, view.Pagination.TotalCount)
	assert.Equal(t, 5, view.Pagination.TotalPages)
}

func TestListCallsAPIErrors(t *testing.T) {
	r := newTestRouter(t, &fakeSource{err: domain.UpstreamError{Err: errors.New("boom")}})

	w := get(r, "/api/calls")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	var body h.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ERROR", body.Error)
	assert.NotEmpty(t, body.RequestID)

	assert.Equal(t, http.StatusBadRequest, get(r, "/api/calls?filter=nope").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/api/calls?page_size=0").Code)

	w = get(newTestRouter(t, &fakeSource{}), "/api/calls")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCallAPI(t *testing.T) {
	calls := fixtureCalls()
	r := newTestRouter(t, &fakeSource{calls: map[string]models.Call{"out-1": calls[1]}})

	w := get(r, "/api/calls/out-1")
	require.Equal(t, http.StatusOK, w.Code)
	var v services.CallDetailView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, "Call answered", v.Title)
	assert.Equal(t, "2 minutes", v.Duration)

	assert.Equal(t, http.StatusNotFound, get(r, "/api/calls/none").Code)
}

func TestRootAndHealth(t *testing.T) {
	r := newTestRouter(t, &fakeSource{})

	w := get(r, "/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/calls/", w.Header().Get("Location"))

	w = get(r, "/api/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
