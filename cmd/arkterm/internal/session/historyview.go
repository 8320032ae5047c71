package session

import (
	"fmt"
	"io"

	"github.com/arkterm/arkterm/cmd/arkterm/internal/format"
	"github.com/arkterm/arkterm/cmd/arkterm/internal/styles"
	"github.com/arkterm/arkterm/pkg/history"
)

// PrintHistory writes entries oldest first, one query and a truncated reply
// per entry.
func PrintHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, styles.DimStyle.Render("No history yet."))
		return
	}

	for _, e := range entries {
		stamp := "                "
		if !e.Timestamp.IsZero() {
			stamp = e.Timestamp.Local().Format("2006-01-02 15:04")
		}

		_, _ = fmt.Fprintf(w, "%s  %s\n",
			styles.DimStyle.Render(stamp),
			styles.HeadingStyle.Render(format.Truncate(e.Query, historyQueryWidth)),
		)
		_, _ = fmt.Fprintf(w, "%s%s\n",
			styles.DimStyle.Render(format.PadRight("", len(stamp)+2)+styles.TreeCorner),
			format.Truncate(e.Response, historyReplyWidth),
		)
	}
}
