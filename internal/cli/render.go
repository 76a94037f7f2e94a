package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jadunn1/fcclipper/internal/locale"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.Style().Options.SeparateRows = true
	t.Style().Format.Header = text.FormatDefault
	return t
}

// renderBalance prints one row per fragment, or a notice when there is
// nothing to show.
func renderBalance(out io.Writer, fragments []string) {
	if len(fragments) == 0 {
		fmt.Fprintln(out, locale.T("balance_unavailable"))
		return
	}

	t := newTable(out)
	t.AppendHeader(table.Row{locale.T("balance_title")})
	for _, fragment := range fragments {
		t.AppendRow(table.Row{strings.Join(cleanLines(fragment), "\n")})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignCenter, AlignHeader: text.AlignCenter},
	})
	t.Render()
}

// cleanLines drops blank lines and trims the rest.
func cleanLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func renderWelcome(out io.Writer, firstName string) {
	msg := locale.T("welcome")
	if firstName != "" {
		msg = locale.T("welcome_named", firstName)
	}
	t := newTable(out)
	t.AppendRow(table.Row{msg})
	t.Render()
}

func rule() string {
	return strings.Repeat("━", 60)
}
