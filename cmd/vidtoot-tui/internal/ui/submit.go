package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const pageSubmit = "submit"

// openSubmitForm shows the new-video form. Submitting queues the video on
// the server and triggers a refresh so the job appears in the table.
func (a *App) openSubmitForm() {
	urlInput := tview.NewInputField().SetLabel("Video URL").SetFieldWidth(60)
	enhanceBox := tview.NewCheckbox().SetLabel("Image analysis")
	dryRunBox := tview.NewCheckbox().SetLabel("Dry run")

	form := tview.NewForm()
	form.AddFormItem(urlInput)
	form.AddFormItem(enhanceBox)
	form.AddFormItem(dryRunBox)

	submit := func() {
		url := strings.TrimSpace(urlInput.GetText())
		if url == "" {
			// Already on the UI goroutine; queueing a draw here would block.
			a.statusBar.SetText(" [red]Video URL is required")
			return
		}
		enhance := enhanceBox.IsChecked()
		dryRun := dryRunBox.IsChecked()

		a.pages.RemovePage(pageSubmit)

		go func() {
			ctx, cancel := context.WithTimeout(a.ctx, 20*time.Second)
			defer cancel()

			jobID, err := a.api.Submit(ctx, url, enhance, dryRun)
			if err != nil {
				a.updateStatusBar(fmt.Sprintf("[red]Submit failed: %v", err))
				return
			}
			a.updateStatusBar(fmt.Sprintf("[green]Job %s created", shortID(jobID)))
			a.refreshJobs()
		}()
	}

	form.AddButton("Submit", submit)
	form.AddButton("Cancel", func() {
		a.pages.RemovePage(pageSubmit)
	})
	form.SetBorder(true)
	form.SetTitle(" Submit Video ")

	form.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			a.pages.RemovePage(pageSubmit)
			return nil
		}
		return event
	})

	a.pages.AddPage(pageSubmit, form, true, true)
	a.app.SetFocus(urlInput)
}
