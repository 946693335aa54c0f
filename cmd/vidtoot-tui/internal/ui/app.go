// Package ui provides the terminal user interface for the vidtoot TUI.
package ui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/iconidentify/vidtoot/cmd/vidtoot-tui/internal/client"
	"github.com/iconidentify/vidtoot/cmd/vidtoot-tui/internal/config"
)

// Panel represents a UI panel type.
type Panel int

const (
	PanelJobs Panel = iota
	PanelStats
	PanelHelp
)

// App is the main TUI application.
type App struct {
	app          *tview.Application
	pages        *tview.Pages
	cfg          *config.Config
	api          *client.Client
	currentPanel Panel
	ctx          context.Context
	cancel       context.CancelFunc

	// UI components
	mainFlex    *tview.Flex
	header      *tview.TextView
	footer      *tview.TextView
	statusBar   *tview.TextView
	jobsView    *tview.Flex
	jobsTable   *tview.Table
	jobsDetails *tview.TextView
	statsView   *tview.TextView
	helpView    *tview.TextView

	// State
	stateMu sync.RWMutex
	jobs    []client.Job
	stats   *client.Stats

	refreshTicker *time.Ticker
}

// NewApp creates a new TUI application.
func NewApp(cfg *config.Config) *App {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		app:    tview.NewApplication(),
		pages:  tview.NewPages(),
		cfg:    cfg,
		api:    client.New(cfg.ServerURL, cfg.Username, cfg.Password),
		ctx:    ctx,
		cancel: cancel,
	}

	a.setupUI()
	return a
}

// setupUI initializes all UI components.
func (a *App) setupUI() {
	// Header
	a.header = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.header.SetBackgroundColor(tcell.ColorDarkBlue)
	a.updateHeader()

	// Footer with keybindings
	a.footer = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[yellow]1[white]:Jobs [yellow]2[white]:Stats [yellow]n[white]:New Video [yellow]r[white]:Refresh [yellow]?[white]:Help [yellow]q[white]:Quit")
	a.footer.SetBackgroundColor(tcell.ColorDarkBlue)

	// Status bar
	a.statusBar = tview.NewTextView().
		SetDynamicColors(true)
	a.statusBar.SetBackgroundColor(tcell.ColorDarkGreen)

	// Create panels
	a.createJobsPanel()
	a.createStatsPanel()
	a.createHelpPanel()

	// Add panels to pages
	a.pages.AddPage("jobs", a.jobsView, true, true)
	a.pages.AddPage("stats", a.statsView, true, false)
	a.pages.AddPage("help", a.helpView, true, false)

	// Main layout
	a.mainFlex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.header, 3, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false).
		AddItem(a.footer, 1, 0, false)

	// Global key bindings
	a.app.SetInputCapture(a.handleGlobalKeys)

	a.app.SetRoot(a.mainFlex, true)
}

// handleGlobalKeys handles global keyboard shortcuts.
func (a *App) handleGlobalKeys(event *tcell.EventKey) *tcell.EventKey {
	// Don't intercept while the submit form is open; typing a URL needs
	// every rune, including the shortcut keys.
	if a.pages.HasPage(pageSubmit) {
		return event
	}

	switch event.Key() {
	case tcell.KeyRune:
		switch event.Rune() {
		case '1':
			a.switchPanel(PanelJobs)
			return nil
		case '2':
			a.switchPanel(PanelStats)
			return nil
		case '?':
			a.switchPanel(PanelHelp)
			return nil
		case 'n', 'N':
			a.openSubmitForm()
			return nil
		case 'r', 'R':
			go a.refreshJobs()
			return nil
		case 'q', 'Q':
			a.Stop()
			return nil
		}
	case tcell.KeyF1:
		a.switchPanel(PanelJobs)
		return nil
	case tcell.KeyF2:
		a.switchPanel(PanelStats)
		return nil
	case tcell.KeyEscape:
		a.switchPanel(PanelJobs)
		return nil
	}

	return event
}

// switchPanel switches to the specified panel.
func (a *App) switchPanel(panel Panel) {
	a.currentPanel = panel

	switch panel {
	case PanelJobs:
		a.pages.SwitchToPage("jobs")
		a.app.SetFocus(a.jobsTable)
	case PanelStats:
		a.pages.SwitchToPage("stats")
	case PanelHelp:
		a.pages.SwitchToPage("help")
	}

	a.updateHeader()
}

// updateHeader updates the header with current panel name.
func (a *App) updateHeader() {
	var panelName string
	switch a.currentPanel {
	case PanelJobs:
		panelName = "Jobs"
	case PanelStats:
		panelName = "Server Stats"
	case PanelHelp:
		panelName = "Help"
	}

	a.header.SetText(fmt.Sprintf("\n[white::b]Vidtoot TUI[white] - [yellow]%s[white] | Server: [green]%s",
		panelName, a.cfg.ServerURL))
}

// updateStatusBar updates the status bar with current status.
func (a *App) updateStatusBar(msg string) {
	a.app.QueueUpdateDraw(func() {
		a.statusBar.SetText(fmt.Sprintf(" %s | Last refresh: %s", msg, time.Now().Format("15:04:05")))
	})
}

// Run starts the TUI application.
func (a *App) Run() error {
	// Start background refresh
	go a.startBackgroundRefresh()

	// Initial fetch
	go a.refreshJobs()

	return a.app.Run()
}

// Stop stops the TUI application.
func (a *App) Stop() {
	a.cancel()
	if a.refreshTicker != nil {
		a.refreshTicker.Stop()
	}
	a.app.Stop()
}

// startBackgroundRefresh starts periodic job refresh.
func (a *App) startBackgroundRefresh() {
	a.refreshTicker = time.NewTicker(a.cfg.Refresh)
	defer a.refreshTicker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-a.refreshTicker.C:
			a.refreshJobs()
		}
	}
}

// refreshJobs fetches the job list and server stats.
func (a *App) refreshJobs() {
	a.updateStatusBar("Refreshing...")

	ctx, cancel := context.WithTimeout(a.ctx, 15*time.Second)
	defer cancel()

	jobs, err := a.api.Jobs(ctx)
	if err != nil {
		a.updateStatusBar(fmt.Sprintf("[red]Error: %v", err))
		return
	}

	stats, err := a.api.Stats(ctx)
	if err != nil {
		a.updateStatusBar(fmt.Sprintf("[red]Error: %v", err))
		return
	}

	a.stateMu.Lock()
	a.jobs = jobs
	a.stats = stats
	a.stateMu.Unlock()

	a.app.QueueUpdateDraw(func() {
		a.updateJobsTable()
		a.updateStatsView()

		row, _ := a.jobsTable.GetSelection()
		if job := a.jobAtRow(row); job != nil {
			a.updateJobDetails(*job)
		} else if len(jobs) > 0 {
			a.updateJobDetails(jobs[0])
		} else {
			a.jobsDetails.Clear()
			fmt.Fprintln(a.jobsDetails, "[dim]No jobs to display[white]")
		}
	})

	active := 0
	for _, job := range jobs {
		if job.Status == "pending" || job.Status == "processing" {
			active++
		}
	}
	if active > 0 {
		a.updateStatusBar(fmt.Sprintf("[yellow]%d job(s) in flight", active))
	} else {
		a.updateStatusBar(fmt.Sprintf("[green]%d job(s), queue idle", len(jobs)))
	}
}

// getJobs returns a copy of the current job list.
func (a *App) getJobs() []client.Job {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	return a.jobs
}

// getStats returns the most recent server stats.
func (a *App) getStats() *client.Stats {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	return a.stats
}
