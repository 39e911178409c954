package narrator

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Статусы реплик в отчёте.
const (
	statusOK      = "ok"
	statusClamped = "clamped"
	statusMissing = "missing"
)

// WriteReport печатает таблицу: где каждая реплика должна была начаться и где оказалась.
func WriteReport(w io.Writer, sum *Summary) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Start", "Placed", "Gap", "Duration", "Status"})

	failed := map[int]error{}
	if sum.Synthesis != nil {
		for _, r := range sum.Synthesis.Failed() {
			failed[r.Index] = r.Err
		}
	}
	placed := map[int]int{}
	skipped := map[int]error{}
	if sum.Timeline != nil {
		for i, p := range sum.Timeline.Placements {
			placed[p.Index] = i
		}
		for _, s := range sum.Timeline.Skipped {
			skipped[s.Index] = s.Err
		}
	}

	for _, c := range sum.Cues {
		if i, ok := placed[c.Index]; ok {
			p := sum.Timeline.Placements[i]
			status := statusOK
			if p.Clamped {
				status = statusClamped
			}
			tw.AppendRow(table.Row{c.Index, clock(c.Start), clock(p.Start), clock(p.Gap), clock(p.Duration), status})
			continue
		}
		reason := failed[c.Index]
		if reason == nil {
			reason = skipped[c.Index]
		}
		status := statusMissing
		if reason != nil {
			status += ": " + firstLine(reason.Error())
		}
		tw.AppendRow(table.Row{c.Index, clock(c.Start), "-", "-", "-", status})
	}

	if sum.Timeline != nil {
		tw.AppendFooter(table.Row{"", "", "", "", clock(sum.Timeline.Cursor), fmt.Sprintf("%d bit/s", sum.Timeline.Bitrate)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	tw.Render()
}

// clock форматирует смещение как в srt: 00:01:02,345.
func clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, d/time.Millisecond)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
