package ui

import (
	"github.com/rivo/tview"
)

// createHelpPanel creates the help panel.
func (a *App) createHelpPanel() {
	a.helpView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	a.helpView.SetBorder(true).SetTitle(" Help ")

	helpText := `[yellow::b]Vidtoot TUI - Terminal User Interface[white]

A terminal client for a vidtoot server. Watch the processing queue,
inspect results, and submit new videos without leaving the terminal.

[yellow::b]GLOBAL NAVIGATION[white]
[cyan]1[white] or [cyan]F1[white]     Jobs          - Job queue and details
[cyan]2[white] or [cyan]F2[white]     Stats         - Server statistics
[cyan]?[white]            Help          - This help screen
[cyan]n[white]            New Video     - Submit a video for processing
[cyan]r[white]            Refresh       - Refresh jobs and stats now
[cyan]q[white]            Quit          - Exit the application
[cyan]Escape[white]       Jobs          - Return to the job table

[yellow::b]JOBS PANEL[white]
The table lists every job the server knows about, newest first:
- [white::b]Status[white]: pending, processing, completed, or failed
- [white::b]Progress[white]: the pipeline stage currently running
The details pane follows the selection.
[cyan]Enter[white]        Focus the details pane to scroll long text
[cyan]Escape[white]       Return focus to the table

[yellow::b]SUBMIT FORM[white]
[cyan]n[white] opens the form. Fill in the video URL, optionally enable
image analysis (frame description via a vision model) or dry run
(process everything but skip the Mastodon post), then press Submit.

[yellow::b]STATS PANEL[white]
Server version, uptime, disk usage of the data directory, and job
counts by status.

[yellow::b]ENVIRONMENT VARIABLES[white]
Configure the TUI via environment variables:

[cyan]VIDTOOT_SERVER_URL[white]  Server base URL (default: http://localhost:5000)
[cyan]VIDTOOT_USER[white]        Basic auth username, if the server requires it
[cyan]VIDTOOT_PASSWORD[white]    Basic auth password
[cyan]VIDTOOT_REFRESH[white]     Refresh interval (default: 5s)

[yellow::b]TIPS[white]
- The status bar shows in-flight jobs and the last refresh time
- The job table auto-refreshes; [cyan]r[white] forces it
- Failed jobs keep their error message in the details pane

[dim]Press any navigation key to return to a panel[white]
`

	a.helpView.SetText(helpText)
}
