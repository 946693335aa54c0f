package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

func (a *App) createStatsPanel() {
	a.statsView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	a.statsView.SetBorder(true).SetTitle(" Server Stats ")
}

func (a *App) updateStatsView() {
	a.statsView.Clear()

	stats := a.getStats()
	if stats == nil {
		fmt.Fprintln(a.statsView, "[dim]No stats yet[white]")
		return
	}

	fmt.Fprintf(a.statsView, "[yellow]Server version:[white] %s\n", stats.Version)
	fmt.Fprintf(a.statsView, "[yellow]Uptime:[white] %s\n", stats.UptimeHuman)
	fmt.Fprintf(a.statsView, "[yellow]Disk used:[white] %.1f%%\n", stats.DiskUsedPct)
	fmt.Fprintln(a.statsView, "")
	fmt.Fprintln(a.statsView, "[white::b]Jobs[white]")
	for _, status := range []string{"pending", "processing", "completed", "failed"} {
		fmt.Fprintf(a.statsView, "  %-12s %d\n", status, stats.Jobs[status])
	}
}
