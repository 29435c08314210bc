package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/cardkey/cardkey/internal/export"
	"github.com/cardkey/cardkey/internal/i18n"
	"github.com/cardkey/cardkey/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// panel renders a bordered block with a bold title line.
func panel(title string, lines ...string) string {
	rows := make([]string, 0, len(lines)+2)
	rows = append(rows, titleStyle.Render(title), "")
	rows = append(rows, lines...)
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatTime(t time.Time) string {
	return t.UTC().Format(export.TimeFormat)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// resultMessage is the human-readable text for a verification outcome.
func resultMessage(res model.VerifyResult) string {
	switch res.Kind {
	case model.ResultSuccess:
		return i18n.T("result_success")
	case model.ResultAlreadyUsed:
		usedAt := ""
		if res.Record != nil && res.Record.UsedAt != nil {
			usedAt = formatTime(*res.Record.UsedAt)
		}
		return i18n.T("result_already_used", usedAt)
	case model.ResultHashMismatch:
		return i18n.T("result_hash_mismatch")
	default:
		return i18n.T("result_not_found")
	}
}

func renderResult(w io.Writer, res model.VerifyResult) {
	var lines []string
	if res.Valid {
		lines = append(lines,
			okStyle.Render(i18n.T("verify_status_ok")),
			i18n.T("verify_message", resultMessage(res)),
			i18n.T("verify_key", res.Record.Code),
			i18n.T("verify_created", formatTime(res.Record.CreatedAt)),
			i18n.T("verify_hash", res.Record.Hash),
		)
	} else {
		lines = append(lines,
			failStyle.Render(i18n.T("verify_status_fail")),
			i18n.T("verify_message", resultMessage(res)),
			i18n.T("verify_code", string(res.Kind)),
		)
		if res.Record != nil && res.Record.UsedAt != nil {
			lines = append(lines, i18n.T("verify_used_at", formatTime(*res.Record.UsedAt)))
		}
	}
	fmt.Fprintln(w, panel(i18n.T("verify_title"), lines...))
}

func renderStats(w io.Writer, s model.Stats) {
	fmt.Fprintln(w, panel(i18n.T("stats_title"),
		i18n.T("stats_total", s.Total),
		okStyle.Render(i18n.T("stats_used", s.Used)),
		i18n.T("stats_available", s.Available),
	))
}

func renderRecords(w io.Writer, records []model.KeyRecord) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(
			i18n.T("list_col_key"),
			i18n.T("list_col_created"),
			i18n.T("list_col_used"),
			i18n.T("list_col_used_at"),
		).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return titleStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, r := range records {
		used := i18n.T("answer_no")
		usedAt := ""
		if r.Used {
			used = i18n.T("answer_yes")
		}
		if r.UsedAt != nil {
			usedAt = formatTime(*r.UsedAt)
		}
		t.Row(r.Code, formatTime(r.CreatedAt), used, usedAt)
	}
	fmt.Fprintln(w, t.String())
}
