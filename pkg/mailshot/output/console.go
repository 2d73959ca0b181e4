package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/telekom/mailshot/pkg/contacts"
)

// PreviewLimit is the number of contacts listed before a campaign is
// confirmed.
const PreviewLimit = 5

// Rule is the separator printed around campaign banners.
var Rule = strings.Repeat("=", 50)

// WriteLoadReport prints what was read from the contact source.
func WriteLoadReport(w io.Writer, path string, res contacts.Result) {
	switch res.Status {
	case contacts.StatusConfigError:
		_, _ = fmt.Fprintf(w, "❌ Error reading contact source: %v\n", res.Err)
		if len(res.Columns) > 0 {
			_, _ = fmt.Fprintf(w, "📋 Columns available: %s\n", strings.Join(res.Columns, ", "))
		}
		return
	}
	_, _ = fmt.Fprintf(w, "✅ Successfully loaded contact source: %s\n", path)
	_, _ = fmt.Fprintf(w, "📊 Found %d rows\n", res.Rows)
	_, _ = fmt.Fprintf(w, "📋 Columns available: %s\n", strings.Join(res.Columns, ", "))
	_, _ = fmt.Fprintf(w, "📧 Found %d valid email addresses\n", len(res.Contacts))
}

// WriteContactPreview lists up to limit contacts and a trailing count of the
// remainder. A limit of zero or less lists every contact.
func WriteContactPreview(w io.Writer, list []contacts.Contact, limit int) {
	shown := list
	if limit > 0 && len(list) > limit {
		shown = list[:limit]
	}
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tNAME\tEMAIL")
	for i, c := range shown {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, c.Name, c.Email)
	}
	_ = tw.Flush()
	if rest := len(list) - len(shown); rest > 0 {
		_, _ = fmt.Fprintf(w, "... and %d more\n", rest)
	}
}
