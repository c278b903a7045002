package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gostand/pkg/rig"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createCalibrationTab(state),
		createSamplingTab(state),
		createAutoTestTab(state),
		createLoggingTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// saveConfig persists the configuration, reporting failures in a dialog.
func saveConfig(state *appState) {
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
	}
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	// Get available serial ports
	ports, err := rig.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
		currentDisplay = currentPort
	}

	portSelect := widget.NewSelect(portOptions, func(selected string) {
		// Selection handler - will be called on submit
	})
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
		},
		OnSubmit: func() {
			if portSelect.Selected == "" {
				return
			}
			selectedPort := portMap[portSelect.Selected]
			if selectedPort == "" {
				selectedPort = portSelect.Selected // Fallback to selected text
			}

			portChanged := state.cfg.Serial.Port != selectedPort
			wasConnected := state.device != nil && state.device.IsConnected()

			state.cfg.Serial.Port = selectedPort
			saveConfig(state)

			// A port change while connected restarts the chain on the
			// new port.
			if portChanged && wasConnected {
				closeChain(state)
				handleConnect(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createCalibrationTab creates the Calibration configuration tab.
func createCalibrationTab(state *appState) *container.TabItem {
	scaleEntry := widget.NewEntry()
	scaleEntry.SetText(fmt.Sprintf("%.6f", state.cfg.Calibration.Scale))

	tareCheck := widget.NewCheck("", nil)
	tareCheck.SetChecked(state.cfg.Calibration.TareOnConnect)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Scale (units/count)", Widget: scaleEntry},
			{Text: "Tare on connect", Widget: tareCheck},
		},
		OnSubmit: func() {
			if scale, err := strconv.ParseFloat(scaleEntry.Text, 64); err == nil && scale != 0 {
				state.cfg.Calibration.Scale = scale
			}
			state.cfg.Calibration.TareOnConnect = tareCheck.Checked
			saveConfig(state)
		},
	}

	return container.NewTabItem("Calibration", form)
}

// createSamplingTab creates the Sampling configuration tab.
func createSamplingTab(state *appState) *container.TabItem {
	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Sampling.Period.String())

	averageSamplesEntry := widget.NewEntry()
	averageSamplesEntry.SetText(fmt.Sprintf("%d", state.cfg.Sampling.AverageSamples))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Sample Period", Widget: periodEntry},
			{Text: "Average Samples (0=disabled)", Widget: averageSamplesEntry},
		},
		OnSubmit: func() {
			if p, err := time.ParseDuration(periodEntry.Text); err == nil && p > 0 {
				state.cfg.Sampling.Period = p
			}
			if avg, err := strconv.Atoi(averageSamplesEntry.Text); err == nil && avg >= 0 {
				state.cfg.Sampling.AverageSamples = avg
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Sampling", form)
}

// createAutoTestTab creates the Auto Test configuration tab.
func createAutoTestTab(state *appState) *container.TabItem {
	enabledCheck := widget.NewCheck("", nil)
	enabledCheck.SetChecked(state.cfg.AutoTest.Enabled)

	minForceEntry := widget.NewEntry()
	minForceEntry.SetText(fmt.Sprintf("%.1f", state.cfg.AutoTest.MinForce))

	holdEntry := widget.NewEntry()
	holdEntry.SetText(state.cfg.AutoTest.Hold.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "ESC auto-detect", Widget: enabledCheck},
			{Text: "Min Test Force", Widget: minForceEntry},
			{Text: "Full Throttle Hold", Widget: holdEntry},
		},
		OnSubmit: func() {
			state.cfg.AutoTest.Enabled = enabledCheck.Checked
			if mf, err := strconv.ParseFloat(minForceEntry.Text, 64); err == nil {
				state.cfg.AutoTest.MinForce = mf
			}
			if h, err := time.ParseDuration(holdEntry.Text); err == nil {
				state.cfg.AutoTest.Hold = h
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Auto Test", form)
}

// createLoggingTab creates the Logging configuration tab.
func createLoggingTab(state *appState) *container.TabItem {
	dirEntry := widget.NewEntry()
	dirEntry.SetText(state.cfg.Logging.Dir)

	forcedSyncCheck := widget.NewCheck("", nil)
	forcedSyncCheck.SetChecked(state.cfg.Logging.ForcedSync)

	verboseCheck := widget.NewCheck("", nil)
	verboseCheck.SetChecked(state.cfg.Logging.Verbose)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Log Directory", Widget: dirEntry},
			{Text: "Forced Sync", Widget: forcedSyncCheck},
			{Text: "Verbose", Widget: verboseCheck},
		},
		OnSubmit: func() {
			if dirEntry.Text != "" {
				state.cfg.Logging.Dir = dirEntry.Text
			}
			state.cfg.Logging.ForcedSync = forcedSyncCheck.Checked
			state.cfg.Logging.Verbose = verboseCheck.Checked
			saveConfig(state)
		},
	}

	return container.NewTabItem("Logging", form)
}

// createMockTab creates the Mock rig configuration tab.
func createMockTab(state *appState) *container.TabItem {
	thrustEntry := widget.NewEntry()
	thrustEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Mock.ThrustPerDegree))

	noiseLevelEntry := widget.NewEntry()
	noiseLevelEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Mock.NoiseLevel))

	responseTimeEntry := widget.NewEntry()
	responseTimeEntry.SetText(state.cfg.Mock.ResponseTime.String())

	sampleRateEntry := widget.NewEntry()
	sampleRateEntry.SetText(state.cfg.Mock.SampleRate.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Thrust per Degree", Widget: thrustEntry},
			{Text: "Noise Level", Widget: noiseLevelEntry},
			{Text: "Response Time", Widget: responseTimeEntry},
			{Text: "Sample Rate", Widget: sampleRateEntry},
		},
		OnSubmit: func() {
			if tp, err := strconv.ParseFloat(thrustEntry.Text, 64); err == nil {
				state.cfg.Mock.ThrustPerDegree = tp
			}
			if nl, err := strconv.ParseFloat(noiseLevelEntry.Text, 64); err == nil {
				state.cfg.Mock.NoiseLevel = nl
			}
			if rt, err := time.ParseDuration(responseTimeEntry.Text); err == nil {
				state.cfg.Mock.ResponseTime = rt
			}
			if sr, err := time.ParseDuration(sampleRateEntry.Text); err == nil {
				state.cfg.Mock.SampleRate = sr
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Mock", form)
}
