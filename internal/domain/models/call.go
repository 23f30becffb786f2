package models

import "time"

// Direction is whether a call was received or placed by the account.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// CallType is the outcome classification of a call. The set is open: the
// upstream API may send values this service does not know about.
type CallType string

const (
	CallTypeMissed    CallType = "missed"
	CallTypeAnswered  CallType = "answered"
	CallTypeVoicemail CallType = "voicemail"
)

type Note struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Call is a server supplied, read-only call record.
type Call struct {
	ID         string    `json:"id"`
	Direction  Direction `json:"direction"`
	CallType   CallType  `json:"call_type"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Duration   int64     `json:"duration"` // milliseconds
	Via        string    `json:"via"`
	IsArchived bool      `json:"is_archived"`
	CreatedAt  time.Time `json:"created_at"`
	Notes      []Note    `json:"notes"`
}

// DurationSeconds converts the millisecond duration for display.
func (c Call) DurationSeconds() float64 {
	return float64(c.Duration) / 1000
}

// CallPage is one offset/limit window of calls. TotalCount is the unfiltered
// server total.
type CallPage struct {
	TotalCount  int    `json:"totalCount"`
	HasNextPage bool   `json:"hasNextPage"`
	Nodes       []Call `json:"nodes"`
}
