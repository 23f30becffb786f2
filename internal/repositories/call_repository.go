package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intdb "phonecalls/internal/db"
	"phonecalls/internal/domain"
	"phonecalls/internal/domain/models"
)

// CallRepository reads calls straight from MySQL (tables calls and call_notes).
// The via column and the call_notes table are optional. The DSN must carry
// parseTime=true.
type CallRepository struct {
	DB *sql.DB
}

func (r CallRepository) columns(ctx context.Context) string {
	via := "''"
	if intdb.HasColumn(ctx, r.DB, "calls", "via") {
		via = "COALESCE(via,'')"
	}
	return "id, direction, call_type, from_number, to_number, duration_ms, " + via + ", is_archived, created_at"
}

func (r CallRepository) ListPage(ctx context.Context, req domain.PageRequest) (*models.CallPage, error) {
	if r.DB == nil {
		return nil, domain.InternalError{Msg: "database not connected"}
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM calls`).Scan(&total); err != nil {
		return nil, domain.UpstreamError{Op: "count calls", Err: err}
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+r.columns(ctx)+` FROM calls ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		req.Limit, req.Offset)
	if err != nil {
		return nil, domain.UpstreamError{Op: "list calls", Err: err}
	}
	defer rows.Close()

	calls := []models.Call{}
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, domain.UpstreamError{Op: "scan call", Err: err}
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.UpstreamError{Op: "list calls", Err: err}
	}

	if err := r.attachNotes(ctx, calls); err != nil {
		return nil, err
	}

	return &models.CallPage{
		TotalCount:  total,
		HasNextPage: req.Offset+len(calls) < total,
		Nodes:       calls,
	}, nil
}

// GetByID returns (nil, nil) when no call has the given id.
func (r CallRepository) GetByID(ctx context.Context, id string) (*models.Call, error) {
	if r.DB == nil {
		return nil, domain.InternalError{Msg: "database not connected"}
	}

	row := r.DB.QueryRowContext(ctx, `SELECT `+r.columns(ctx)+` FROM calls WHERE id = ?`, id)
	c, err := scanCall(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.UpstreamError{Op: "get call", Err: err}
	}

	calls := []models.Call{c}
	if err := r.attachNotes(ctx, calls); err != nil {
		return nil, err
	}
	return &calls[0], nil
}

func (r CallRepository) attachNotes(ctx context.Context, calls []models.Call) error {
	if len(calls) == 0 || !intdb.HasTable(ctx, r.DB, "call_notes") {
		return nil
	}

	placeholders := make([]string, len(calls))
	args := make([]any, len(calls))
	index := make(map[string]int, len(calls))
	for i, c := range calls {
		placeholders[i] = "?"
		args[i] = c.ID
		index[c.ID] = i
	}

	query := fmt.Sprintf(`SELECT id, call_id, content FROM call_notes WHERE call_id IN (%s) ORDER BY id`,
		strings.Join(placeholders, ","))
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.UpstreamError{Op: "list notes", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			n      models.Note
			callID string
		)
		if err := rows.Scan(&n.ID, &callID, &n.Content); err != nil {
			return domain.UpstreamError{Op: "scan note", Err: err}
		}
		if i, ok := index[callID]; ok {
			calls[i].Notes = append(calls[i].Notes, n)
		}
	}
	if err := rows.Err(); err != nil {
		return domain.UpstreamError{Op: "list notes", Err: err}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCall(s rowScanner) (models.Call, error) {
	var (
		c         models.Call
		direction string
		callType  string
	)
	err := s.Scan(&c.ID, &direction, &callType, &c.From, &c.To, &c.Duration, &c.Via, &c.IsArchived, &c.CreatedAt)
	if err != nil {
		return models.Call{}, err
	}
	c.Direction = models.Direction(strings.ToLower(strings.TrimSpace(direction)))
	c.CallType = models.CallType(strings.ToLower(strings.TrimSpace(callType)))
	return c, nil
}
