package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// createPanel builds the front panel: a mirror of the rig's two-line
// status display next to the start/stop button.
func createPanel(state *appState) fyne.CanvasObject {
	topLine := widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Monospace: true})
	bottomLine := widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Monospace: true})

	// Mirror the display buffer. The callback fires on the sequencer
	// goroutine, so hop to the UI thread.
	state.displayBuf.OnChange(func(top, bottom string) {
		fyne.Do(func() {
			topLine.SetText(top)
			bottomLine.SetText(bottom)
		})
	})

	startBtn := widget.NewButton("Start / Stop", func() {
		state.button.Press()
	})
	startBtn.Importance = widget.HighImportance
	startBtn.Disable() // Enabled on connect
	state.startBtn = startBtn

	return container.NewBorder(
		nil, // top
		nil, // bottom
		container.NewVBox(topLine, bottomLine), // left
		startBtn, // right
		nil,      // center (spacer)
	)
}
