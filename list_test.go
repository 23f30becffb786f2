package main

import (
	"bytes"
	"testing"

	"phonecalls/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderListReady(t *testing.T) {
	pv := services.BuildPagination(2, 5, 42)
	v := services.CallsListView{
		Status: services.StatusReady,
		Title:  services.PageTitle,
		Rows: []services.CallRow{
			{Icon: services.IconDiagonalDown, Title: "Missed call", Subtitle: "from +1", Duration: "5 seconds", Date: "Mar 07 - 09:05", Notes: "Call has 1 notes"},
			{Icon: services.IconDiagonalUp, Title: "Call answered", Subtitle: "to +2", Duration: "1 minute", Date: "Mar 07 - 09:06"},
		},
		Pagination: &pv,
	}

	var buf bytes.Buffer
	require.NoError(t, renderList(&buf, v))
	out := buf.String()
	assert.Contains(t, out, "Calls History")
	assert.Contains(t, out, "Missed call")
	assert.Contains(t, out, "to +2")
	assert.Contains(t, out, "page 2/9, 5 per page, 42 calls")
}

func TestRenderListError(t *testing.T) {
	var buf bytes.Buffer
	err := renderList(&buf, services.CallsListView{Status: services.StatusError, Title: services.PageTitle, Message: services.MessageError})
	assert.Error(t, err)
	assert.Contains(t, buf.String(), "ERROR")
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCmd()
	names := []string{}
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "list"}, names)
}
