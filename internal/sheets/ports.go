package sheets

import (
	"context"
)

// Ports for outbound adapters.
type (
	// ReportWriter replaces the contents of one sheet with a report.
	ReportWriter interface {
		WriteReport(ctx context.Context, r Report) error
	}
)

// Report is a table destined for one sheet. The header is written as the
// first row.
type Report struct {
	Sheet  string
	Header []string
	Rows   [][]any
}

// Values returns the header followed by the rows.
func (r Report) Values() [][]any {
	out := make([][]any, 0, len(r.Rows)+1)
	if len(r.Header) > 0 {
		header := make([]any, len(r.Header))
		for i, h := range r.Header {
			header[i] = h
		}
		out = append(out, header)
	}
	return append(out, r.Rows...)
}
