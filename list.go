package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"phonecalls/internal/domain"
	"phonecalls/internal/services"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var (
		page     int
		pageSize int
		filter   string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of the calls history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := domain.ParseCallFilter(filter)
			if err != nil {
				return err
			}
			if pageSize < 1 {
				return domain.ValidationError{Field: "page-size", Msg: "must be a positive integer"}
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			p := services.NewCallsListPage(services.CallsListOptions{
				Source:   a.source,
				Format:   services.DefaultFormatters(a.loc),
				Route:    services.RouteParams{Page: strconv.Itoa(page)},
				PageSize: pageSize,
				Filter:   f,
			})
			p.Load(cmd.Context())
			return renderList(cmd.OutOrStdout(), p.View())
		},
	}
	cmd.Flags().IntVar(&page, "page", domain.DefaultPage, "page number (1-based)")
	cmd.Flags().IntVar(&pageSize, "page-size", domain.DefaultPageSize, "calls per page")
	cmd.Flags().StringVar(&filter, "filter", string(domain.FilterAll), "all, inbound or outbound")
	return cmd
}

// renderList prints the view as a table. Non-ready views print their message.
func renderList(w io.Writer, v services.CallsListView) error {
	fmt.Fprintln(w, v.Title)
	if v.Status != services.StatusReady {
		fmt.Fprintln(w, v.Message)
		if v.Status == services.StatusError {
			return fmt.Errorf("calls fetch failed")
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range v.Rows {
		dir := "<-"
		if r.Icon == services.IconDiagonalUp {
			dir = "->"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", dir, r.Title, r.Subtitle, r.Duration, r.Date, r.Notes)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if p := v.Pagination; p != nil {
		fmt.Fprintf(w, "page %d/%d, %d per page, %d calls\n", p.ActivePage, p.TotalPages, p.PageSize, p.TotalCount)
	}
	return nil
}
