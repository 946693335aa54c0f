package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/iconidentify/vidtoot/cmd/vidtoot-tui/internal/client"
)

func (a *App) createJobsPanel() {
	a.jobsTable = tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false).
		SetFixed(1, 0)
	a.jobsTable.SetBorder(true).SetTitle(" Jobs - 'n' new video, Enter to read details ")

	a.jobsDetails = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	a.jobsDetails.SetBorder(true).SetTitle(" Details ")

	a.jobsView = tview.NewFlex().
		AddItem(a.jobsTable, 0, 2, true).
		AddItem(a.jobsDetails, 0, 1, false)

	a.jobsTable.SetSelectionChangedFunc(func(row, column int) {
		if job := a.jobAtRow(row); job != nil {
			a.updateJobDetails(*job)
		}
	})

	a.jobsTable.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEnter {
			// Move focus to the details pane so long summaries and
			// transcripts can be scrolled. Escape returns to the table.
			row, _ := a.jobsTable.GetSelection()
			if job := a.jobAtRow(row); job != nil {
				a.updateJobDetails(*job)
				a.app.SetFocus(a.jobsDetails)
			}
			return nil
		}
		return event
	})
}

func (a *App) updateJobsTable() {
	a.jobsTable.Clear()
	headers := []string{"ID", "Status", "Progress", "URL", "Created"}
	for i, h := range headers {
		cell := tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false)
		a.jobsTable.SetCell(0, i, cell)
	}

	jobs := a.getJobs()
	for i, job := range jobs {
		row := i + 1
		a.jobsTable.SetCell(row, 0, tview.NewTableCell(shortID(job.ID)).SetTextColor(tcell.ColorWhite))
		a.jobsTable.SetCell(row, 1, tview.NewTableCell(job.Status).SetTextColor(statusColor(job.Status)))
		a.jobsTable.SetCell(row, 2, tview.NewTableCell(job.Progress).SetExpansion(1))
		a.jobsTable.SetCell(row, 3, tview.NewTableCell(job.URL).SetExpansion(2))
		a.jobsTable.SetCell(row, 4, tview.NewTableCell(formatCreated(job.CreatedAt)))
	}

	if len(jobs) == 0 {
		a.jobsTable.SetCell(1, 0, tview.NewTableCell("No jobs yet - press 'n' to submit a video").SetTextColor(tcell.ColorYellow))
	}
}

func (a *App) updateJobDetails(job client.Job) {
	a.jobsDetails.Clear()
	fmt.Fprintf(a.jobsDetails, "[white::b]Job %s[white]\n\n", shortID(job.ID))
	fmt.Fprintf(a.jobsDetails, "[yellow]Status:[white] %s\n", job.Status)
	fmt.Fprintf(a.jobsDetails, "[yellow]Progress:[white] %s\n", job.Progress)
	fmt.Fprintf(a.jobsDetails, "[yellow]URL:[white] %s\n", job.URL)
	fmt.Fprintf(a.jobsDetails, "[yellow]Created:[white] %s\n", formatCreated(job.CreatedAt))
	if job.Enhance {
		fmt.Fprintln(a.jobsDetails, "[yellow]Enhance:[white] image analysis enabled")
	}
	if job.DryRun {
		fmt.Fprintln(a.jobsDetails, "[yellow]Dry run:[white] yes")
	}

	if job.Error != nil {
		fmt.Fprintf(a.jobsDetails, "\n[red]Error:[white] %s\n", *job.Error)
	}

	if job.Result == nil {
		return
	}
	r := job.Result

	fmt.Fprintln(a.jobsDetails, "")
	fmt.Fprintf(a.jobsDetails, "[yellow]Title:[white] %s\n", r.Title)
	fmt.Fprintf(a.jobsDetails, "[yellow]Uploader:[white] %s\n", r.Uploader)
	fmt.Fprintf(a.jobsDetails, "[yellow]Platform:[white] %s\n", r.Platform)
	if len(r.Hashtags) > 0 {
		fmt.Fprintf(a.jobsDetails, "[yellow]Hashtags:[white] %s\n", strings.Join(r.Hashtags, " "))
	}
	if r.MastodonURL != nil {
		fmt.Fprintf(a.jobsDetails, "[yellow]Posted:[white] %s\n", *r.MastodonURL)
	} else if r.DryRun {
		fmt.Fprintln(a.jobsDetails, "[yellow]Posted:[white] dry run, nothing published")
	}
	if r.Summary != "" {
		fmt.Fprintf(a.jobsDetails, "\n[white::b]Summary[white]\n%s\n", r.Summary)
	}
	if r.VideoDescription != "" {
		fmt.Fprintf(a.jobsDetails, "\n[white::b]Video description[white]\n%s\n", r.VideoDescription)
	}
	if r.Transcript != "" {
		fmt.Fprintf(a.jobsDetails, "\n[white::b]Transcript[white]\n%s\n", r.Transcript)
	}
}

func (a *App) jobAtRow(row int) *client.Job {
	jobs := a.getJobs()
	if row <= 0 || row-1 >= len(jobs) {
		return nil
	}
	return &jobs[row-1]
}

func statusColor(status string) tcell.Color {
	switch status {
	case "completed":
		return tcell.ColorGreen
	case "failed":
		return tcell.ColorRed
	case "processing":
		return tcell.ColorAqua
	default:
		return tcell.ColorOrange
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatCreated(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Local().Format("Jan 2 15:04")
}
