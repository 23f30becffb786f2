package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"phonecalls/internal/domain"
	"phonecalls/internal/domain/models"
	"phonecalls/internal/utils"
)

// CallSource fetches one offset/limit window of calls. A nil page with a nil
// error means the source answered without data.
type CallSource interface {
	ListPage(ctx context.Context, req domain.PageRequest) (*models.CallPage, error)
}

type RenderStatus string

const (
	StatusLoading  RenderStatus = "loading"
	StatusError    RenderStatus = "error"
	StatusNotFound RenderStatus = "not_found"
	StatusReady    RenderStatus = "ready"
)

const (
	MessageLoading  = "Loading calls..."
	MessageError    = "ERROR"
	MessageNotFound = "Not found"
	PageTitle       = "Calls History"
)

const (
	IconDiagonalDown = "diagonal-down"
	IconDiagonalUp   = "diagonal-up"
)

var defaultPageSizeOptions = []int{5, 10, 20, 50}

// Formatters render durations (in seconds) and call dates.
type Formatters struct {
	Duration func(seconds float64) string
	Date     func(t time.Time) string
}

// DefaultFormatters formats dates in loc (time.Local when nil).
func DefaultFormatters(loc *time.Location) Formatters {
	return Formatters{
		Duration: utils.FormatDuration,
		Date:     func(t time.Time) string { return utils.FormatDate(t, loc) },
	}
}

// ListState is the page state of the calls list.
type ListState struct {
	ActivePage int               `json:"activePage"`
	PageSize   int               `json:"pageSize"`
	Filter     domain.CallFilter `json:"filter"`
}

type CallRow struct {
	ID         string           `json:"id"`
	Direction  models.Direction `json:"direction"`
	Icon       string           `json:"icon"`
	Title      string           `json:"title"`
	Subtitle   string           `json:"subtitle"`
	Duration   string           `json:"duration"`
	Date       string           `json:"date"`
	Notes      string           `json:"notes,omitempty"`
	Href       string           `json:"href"`
	IsArchived bool             `json:"isArchived"`
}

type PaginationView struct {
	ActivePage      int   `json:"activePage"`
	PageSize        int   `json:"pageSize"`
	TotalCount      int   `json:"totalCount"`
	TotalPages      int   `json:"totalPages"`
	PrevPage        int   `json:"prevPage,omitempty"`
	NextPage        int   `json:"nextPage,omitempty"`
	Pages           []int `json:"pages"`
	PageSizeOptions []int `json:"pageSizeOptions"`
}

// CallsListView is everything needed to render the page.
type CallsListView struct {
	Status     RenderStatus    `json:"status"`
	Title      string          `json:"title"`
	Message    string          `json:"message,omitempty"`
	State      ListState       `json:"state"`
	Rows       []CallRow       `json:"rows"`
	Pagination *PaginationView `json:"pagination,omitempty"`
}

type fetchResult struct {
	req  domain.PageRequest
	page *models.CallPage
	err  error
}

// CallsListPage fetches one page of calls, filters it by direction and turns
// it into rows plus a pagination control.
//
// A fetch happens in Load whenever the (offset, limit) window differs from the
// last one fetched. HandleFilter never triggers a fetch. HandlePageSize keeps
// the active page, so the next window reuses the page number with the new limit.
type CallsListPage struct {
	source    CallSource
	nav       Navigator
	format    Formatters
	requestID string

	state   ListState
	fetched *fetchResult
}

type CallsListOptions struct {
	Source    CallSource
	Navigator Navigator
	Format    Formatters
	RequestID string

	Route    RouteParams
	PageSize int
	Filter   domain.CallFilter
}

func NewCallsListPage(opts CallsListOptions) *CallsListPage {
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	filter := opts.Filter
	if filter == "" {
		filter = domain.FilterAll
	}
	format := opts.Format
	if format.Duration == nil || format.Date == nil {
		def := DefaultFormatters(nil)
		if format.Duration == nil {
			format.Duration = def.Duration
		}
		if format.Date == nil {
			format.Date = def.Date
		}
	}
	nav := opts.Navigator
	if nav == nil {
		nav = NavigatorFunc(func(string) {})
	}

	return &CallsListPage{
		source:    opts.Source,
		nav:       nav,
		format:    format,
		requestID: opts.RequestID,
		state: ListState{
			ActivePage: opts.Route.ActivePage(),
			PageSize:   pageSize,
			Filter:     filter,
		},
	}
}

func (p *CallsListPage) State() ListState { return p.state }

// PageRequest is the window the current state asks for.
func (p *CallsListPage) PageRequest() domain.PageRequest {
	return domain.NewPageRequest(p.state.ActivePage, p.state.PageSize)
}

// Load fetches when the requested window changed since the last fetch.
func (p *CallsListPage) Load(ctx context.Context) {
	req := p.PageRequest()
	if p.fetched != nil && p.fetched.req == req {
		return
	}

	utils.LogEvent(p.requestID, "calls", "fetch", fmt.Sprintf("offset=%d limit=%d", req.Offset, req.Limit))
	page, err := p.source.ListPage(ctx, req)
	if err != nil {
		utils.LogEvent(p.requestID, "calls", "fetch_error", err.Error())
	}
	p.fetched = &fetchResult{req: req, page: page, err: err}
}

// Err is the error of the last fetch, if any.
func (p *CallsListPage) Err() error {
	if p.fetched == nil {
		return nil
	}
	return p.fetched.err
}

// SetRoute applies new route parameters, e.g. after a navigation.
func (p *CallsListPage) SetRoute(route RouteParams) {
	p.state.ActivePage = route.ActivePage()
}

func (p *CallsListPage) HandleCallOnClick(callID string) {
	p.nav.Navigate(CallDetailPath(callID))
}

func (p *CallsListPage) HandlePageChange(page int) {
	p.nav.Navigate(CallsListPath(page))
}

// HandlePageSize changes the limit without touching the active page.
func (p *CallsListPage) HandlePageSize(pageSize int) error {
	if pageSize < 1 {
		return domain.ValidationError{Field: "page_size", Msg: "must be a positive integer"}
	}
	p.state.PageSize = pageSize
	return nil
}

func (p *CallsListPage) HandleFilter(filter domain.CallFilter) error {
	f, err := domain.ParseCallFilter(string(filter))
	if err != nil {
		return err
	}
	p.state.Filter = f
	return nil
}

// View renders the current state. Only the fetched page is filtered; the
// pagination total stays the unfiltered server total.
func (p *CallsListPage) View() CallsListView {
	v := CallsListView{Title: PageTitle, State: p.state, Rows: []CallRow{}}

	switch {
	case p.fetched == nil || p.fetched.req != p.PageRequest():
		v.Status, v.Message = StatusLoading, MessageLoading
		return v
	case p.fetched.err != nil:
		v.Status, v.Message = StatusError, MessageError
		return v
	case p.fetched.page == nil:
		v.Status, v.Message = StatusNotFound, MessageNotFound
		return v
	}

	v.Status = StatusReady
	v.Rows = p.Rows()
	if total := p.fetched.page.TotalCount; total != 0 {
		pv := BuildPagination(p.state.ActivePage, p.state.PageSize, total)
		v.Pagination = &pv
	}
	return v
}

// Rows are the fetched calls passing the filter, in fetch order.
func (p *CallsListPage) Rows() []CallRow {
	if p.fetched == nil || p.fetched.page == nil {
		return []CallRow{}
	}
	rows := make([]CallRow, 0, len(p.fetched.page.Nodes))
	for _, c := range FilterCalls(p.fetched.page.Nodes, p.state.Filter) {
		rows = append(rows, BuildCallRow(c, p.format))
	}
	return rows
}

func FilterCalls(calls []models.Call, filter domain.CallFilter) []models.Call {
	out := make([]models.Call, 0, len(calls))
	for _, c := range calls {
		if filter.Matches(c.Direction) {
			out = append(out, c)
		}
	}
	return out
}

func BuildCallRow(c models.Call, format Formatters) CallRow {
	icon := IconDiagonalUp
	subtitle := "to " + c.To
	if c.Direction == models.DirectionInbound {
		icon = IconDiagonalDown
		subtitle = "from " + c.From
	}

	return CallRow{
		ID:         c.ID,
		Direction:  c.Direction,
		Icon:       icon,
		Title:      CallTitle(c.CallType),
		Subtitle:   subtitle,
		Duration:   format.Duration(c.DurationSeconds()),
		Date:       format.Date(c.CreatedAt),
		Notes:      NotesSummary(c.Notes),
		Href:       CallDetailPath(c.ID),
		IsArchived: c.IsArchived,
	}
}

// CallTitle maps a call type to its display title. Unknown types, including
// voicemail, read as "Voicemail".
func CallTitle(t models.CallType) string {
	switch t {
	case models.CallTypeMissed:
		return "Missed call"
	case models.CallTypeAnswered:
		return "Call answered"
	case models.CallTypeVoicemail:
		return "Voicemail"
	default:
		return "Voicemail"
	}
}

// NotesSummary is empty when there are no notes.
func NotesSummary(notes []models.Note) string {
	if len(notes) == 0 {
		return ""
	}
	return fmt.Sprintf("Call has %d notes", len(notes))
}

// BuildPagination assumes totalCount > 0 and pageSize > 0.
func BuildPagination(activePage, pageSize, totalCount int) PaginationView {
	totalPages := (totalCount + pageSize - 1) / pageSize

	pv := PaginationView{
		ActivePage: activePage,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
	switch {
	case activePage > totalPages:
		pv.PrevPage = totalPages
	case activePage > 1:
		pv.PrevPage = activePage - 1
	}
	if activePage < totalPages {
		pv.NextPage = activePage + 1
	}

	// The window always holds up to five valid pages, also when the active
	// page lies past the end after a page size change.
	last := min(totalPages, max(activePage+2, 5))
	first := max(1, min(activePage-2, last-4))
	for i := first; i <= last; i++ {
		pv.Pages = append(pv.Pages, i)
	}

	pv.PageSizeOptions = append([]int(nil), defaultPageSizeOptions...)
	if !slices.Contains(pv.PageSizeOptions, pageSize) {
		pv.PageSizeOptions = append(pv.PageSizeOptions, pageSize)
		slices.Sort(pv.PageSizeOptions)
	}
	return pv
}
