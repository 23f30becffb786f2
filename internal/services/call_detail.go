package services

import (
	"context"

	"phonecalls/internal/domain"
	"phonecalls/internal/domain/models"
	"phonecalls/internal/utils"
)

type CallGetter interface {
	GetByID(ctx context.Context, id string) (*models.Call, error)
}

type CallDetailView struct {
	CallRow
	From     string        `json:"from"`
	To       string        `json:"to"`
	Via      string        `json:"via,omitempty"`
	NoteList []models.Note `json:"noteList"`
	Back     string        `json:"back"`
}

// CallDetailService loads a single call for the detail route.
type CallDetailService struct {
	Source    CallGetter
	Format    Formatters
	RequestID string
}

func (s CallDetailService) Get(ctx context.Context, id string) (CallDetailView, error) {
	if id == "" {
		return CallDetailView{}, domain.ValidationError{Field: "id", Msg: "call id is required"}
	}

	call, err := s.Source.GetByID(ctx, id)
	if err != nil {
		utils.LogEvent(s.RequestID, "calls", "detail_error", err.Error())
		return CallDetailView{}, err
	}
	if call == nil {
		return CallDetailView{}, domain.NotFoundError{Resource: "call"}
	}

	format := s.Format
	if format.Duration == nil || format.Date == nil {
		format = DefaultFormatters(nil)
	}
	notes := call.Notes
	if notes == nil {
		notes = []models.Note{}
	}
	return CallDetailView{
		CallRow:  BuildCallRow(*call, format),
		From:     call.From,
		To:       call.To,
		Via:      call.Via,
		NoteList: notes,
		Back:     CallsListPath(domain.DefaultPage),
	}, nil
}
