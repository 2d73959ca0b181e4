package campaign

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/telekom/mailshot/pkg/contacts"
	"github.com/telekom/mailshot/pkg/mail"
	"github.com/telekom/mailshot/pkg/mailshot/output"
)

// Outcome is the result of one delivery attempt.
type Outcome struct {
	Contact  contacts.Contact   `json:"contact" yaml:"contact"`
	Success  bool               `json:"success" yaml:"success"`
	Reason   mail.FailureReason `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error    string             `json:"error,omitempty" yaml:"error,omitempty"`
	Notices  []string           `json:"notices,omitempty" yaml:"notices,omitempty"`
	Duration time.Duration      `json:"duration" yaml:"duration"`
}

// Summary aggregates the outcomes of a run. Successful+Failed always equals
// Total, and Total equals len(Outcomes).
type Summary struct {
	RunID      string    `json:"runID" yaml:"runID"`
	Status     Status    `json:"status" yaml:"status"`
	DryRun     bool      `json:"dryRun,omitempty" yaml:"dryRun,omitempty"`
	Successful int       `json:"successful" yaml:"successful"`
	Failed     int       `json:"failed" yaml:"failed"`
	Total      int       `json:"total" yaml:"total"`
	Outcomes   []Outcome `json:"outcomes" yaml:"outcomes"`
	StartedAt  time.Time `json:"startedAt" yaml:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty" yaml:"finishedAt,omitempty"`
}

func (s *Summary) record(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	s.Total++
	if o.Success {
		s.Successful++
	} else {
		s.Failed++
	}
}

// FailureReasons counts failed outcomes per reason.
func (s Summary) FailureReasons() map[mail.FailureReason]int {
	reasons := map[mail.FailureReason]int{}
	for _, o := range s.Outcomes {
		if !o.Success {
			reasons[o.Reason]++
		}
	}
	return reasons
}

// WriteText prints the campaign banner with the final counts.
func (s Summary) WriteText(w io.Writer) {
	_, _ = fmt.Fprintf(w, "\n%s\n", output.Rule)
	_, _ = fmt.Fprintln(w, "📊 EMAIL CAMPAIGN SUMMARY")
	_, _ = fmt.Fprintln(w, output.Rule)
	_, _ = fmt.Fprintf(w, "✅ Successful: %d\n", s.Successful)
	_, _ = fmt.Fprintf(w, "❌ Failed: %d\n", s.Failed)
	_, _ = fmt.Fprintf(w, "📧 Total: %d\n", s.Total)
	if s.Failed > 0 {
		reasons := s.FailureReasons()
		for _, reason := range slices.Sorted(maps.Keys(reasons)) {
			_, _ = fmt.Fprintf(w, "   %s: %d\n", reason, reasons[reason])
		}
	}
	switch s.Status {
	case StatusInterrupted:
		_, _ = fmt.Fprintln(w, "⚠️  Email campaign interrupted before all contacts were attempted.")
	default:
		_, _ = fmt.Fprintln(w, "🎉 Email campaign completed!")
	}
}
