package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gostand/pkg/actuator"
	"github.com/itohio/gostand/pkg/catalog"
	"github.com/itohio/gostand/pkg/clock"
	"github.com/itohio/gostand/pkg/config"
	"github.com/itohio/gostand/pkg/display"
	"github.com/itohio/gostand/pkg/force"
	"github.com/itohio/gostand/pkg/input"
	"github.com/itohio/gostand/pkg/logfile"
	"github.com/itohio/gostand/pkg/rig"
	"github.com/itohio/gostand/pkg/sequencer"
	"github.com/itohio/gostand/pkg/trace"
)

// buttonHold is how long one GUI click reads as a pressed button.
const buttonHold = 200 * time.Millisecond

func main() {
	var (
		portFlag           = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag         = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag           = flag.Bool("mock", false, "Use mocked rig instead of serial port")
		averageSamplesFlag = flag.Int("average-samples", -1, "Number of samples to average (0 = disabled, overrides config)")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	// Override average samples if provided via command line
	if *averageSamplesFlag >= 0 {
		cfg.Sampling.AverageSamples = *averageSamplesFlag
	}

	// Create Fyne application
	application := app.NewWithID("com.itohio.gostand")

	window := application.NewWindow("Thrust Stand")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		window:     window,
		useMock:    *mockFlag,
		store:      logfile.Open(cfg.Logging.Dir),
		displayBuf: display.NewBuffer(),
		button:     input.NewMomentary(buttonHold),
	}

	toolbar := createToolbar(state)

	traceWidget := trace.New(trace.DefaultWindow)
	state.traceWidget = traceWidget

	panel := createPanel(state)

	content := container.NewBorder(
		toolbar,
		panel,
		nil,
		nil,
		traceWidget,
	)

	window.SetContent(content)
	window.ShowAndRun()

	// Window closed: tear down whatever chain is still running.
	closeChain(state)
}

// measurementChain tracks the components built at connect time for
// graceful shutdown.
type measurementChain struct {
	device        rig.Device
	gauge         *force.Gauge
	stopSequencer context.CancelFunc
	sequencerDone chan struct{} // Closed when the sequencer goroutine exits
	gaugeDone     chan struct{} // Closed when the gauge goroutine exits
	traceDone     chan struct{} // Closed when the trace feed goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	configPath string
	window     fyne.Window
	useMock    bool

	store       *logfile.Store
	displayBuf  *display.Buffer
	button      *input.Momentary
	traceWidget *trace.Widget

	device rig.Device
	act    *actuator.Actuator
	chain  *measurementChain

	connectBtn *widget.Button
	startBtn   *widget.Button

	// Throttling for trace updates
	lastUpdateTime time.Time
	updateMu       sync.Mutex
}

// createToolbar creates the application toolbar with Connect and Settings
// buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	return container.NewBorder(
		nil, // top
		nil, // bottom
		container.NewHBox(connectBtn, settingsBtn), // left
		nil, // right
		nil, // center (spacer)
	)
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.device != nil && state.device.IsConnected() {
		closeChain(state)
		state.startBtn.Disable()
		if state.useMock {
			fmt.Println("Disconnected from mocked rig")
		} else {
			fmt.Println("Disconnected from serial port")
		}
		return
	}

	var device rig.Device
	if state.useMock {
		device = rig.NewMock(&state.cfg.Mock, state.cfg.Calibration.Scale)
		fmt.Println("Using mocked rig")
	} else {
		device = rig.New(state.cfg.Serial.Port, rig.DefaultBaudRate, rig.DefaultBufferSize)
	}

	if err := device.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to connect to mocked rig: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	state.device = device
	if state.useMock {
		fmt.Printf("Connected to mocked rig\n")
	} else {
		fmt.Printf("Connected to serial port: %s\n", state.cfg.Serial.Port)
	}

	startChain(state, device)
	state.startBtn.Enable()
}

// startChain builds the measurement pipeline and starts the test
// sequencer for a freshly connected rig.
func startChain(state *appState, device rig.Device) {
	cfg := state.cfg

	// Converter pipeline: raw counts to calibrated samples, with optional
	// moving average.
	base := force.NewConverter(cfg, 500)(device.Readings())
	samples := base
	if cfg.Sampling.AverageSamples > 0 {
		samples = force.NewAveragingConverter(cfg.Sampling.AverageSamples, 500)(base)
	}
	gaugeStream, traceStream := fanOut(samples)

	gauge := force.NewGauge()
	gaugeDone := make(chan struct{})
	go func() {
		defer close(gaugeDone)
		gauge.Consume(gaugeStream)
	}()

	if cfg.Calibration.TareOnConnect {
		go tareWhenReady(device, gauge)
	}

	act := actuator.New(servoOut{dev: device})
	state.act = act

	traceDone := make(chan struct{})
	go func() {
		defer close(traceDone)
		state.feedTrace(traceStream, act)
	}()

	var disp display.Display = state.displayBuf
	if cfg.Logging.Verbose {
		disp = display.NewLogged(disp)
	}

	seq := sequencer.New(sequencer.Config{
		AutoDetect:   cfg.AutoTest.Enabled,
		MinTestForce: cfg.AutoTest.MinForce,
		Hold:         cfg.AutoTest.Hold,
		ForcedSync:   cfg.Logging.ForcedSync,
		Verbose:      cfg.Logging.Verbose,
		Timing: sequencer.Timing{
			SamplePeriod: cfg.Sampling.Period,
		},
	}, sequencer.Deps{
		Reader:   gauge,
		Actuator: act,
		Monitor:  input.New(state.button),
		Display:  disp,
		Store:    storeAdapter{store: state.store},
		Catalog:  catalog.New(state.store.Names()),
		Clock:    clock.Real{},
	})

	ctx, stop := context.WithCancel(context.Background())
	seqDone := make(chan struct{})
	go func() {
		defer close(seqDone)
		seq.Run(ctx)
	}()

	state.chain = &measurementChain{
		device:        device,
		gauge:         gauge,
		stopSequencer: stop,
		sequencerDone: seqDone,
		gaugeDone:     gaugeDone,
		traceDone:     traceDone,
	}
}

// closeChain gracefully tears down the measurement chain. Waits for all
// goroutines to finish and channels to drain.
func closeChain(state *appState) {
	chain := state.chain
	if chain == nil {
		return
	}
	state.chain = nil
	state.device = nil

	// Ask the sequencer to stop, and press the button so a wait in
	// progress ends instead of running out its session.
	chain.stopSequencer()
	state.button.Press()

	select {
	case <-chain.sequencerDone:
	case <-time.After(10 * time.Second):
		log.Printf("sequencer did not stop in time")
	}

	// Closing the device closes the readings channel, which drains the
	// converter pipeline and ends the gauge and trace goroutines.
	chain.device.Close()
	<-chain.gaugeDone
	<-chain.traceDone
}

// feedTrace forwards calibrated samples to the trace widget, throttled so
// the UI is not overwhelmed at high sample rates.
func (state *appState) feedTrace(in <-chan force.Sample, act *actuator.Actuator) {
	const updateInterval = 16 * time.Millisecond // ~60 FPS

	for s := range in {
		state.updateMu.Lock()
		now := time.Now()
		tooSoon := now.Sub(state.lastUpdateTime) < updateInterval
		if !tooSoon {
			state.lastUpdateTime = now
		}
		state.updateMu.Unlock()
		if tooSoon {
			continue
		}

		point := trace.Point{
			Timestamp: s.Timestamp,
			Force:     s.Force,
			Pos:       actuator.Clamp(act.Position()),
		}
		fyne.Do(func() {
			state.traceWidget.Append(point)
		})
	}
}

// tareWhenReady zeroes the gauge as soon as the first sample arrives.
func tareWhenReady(device rig.Device, gauge *force.Gauge) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		if err := gauge.Tare(); err == nil {
			return
		}
		if !device.IsConnected() {
			return
		}
	}
}

// fanOut duplicates a sample stream for two consumers. Both outputs close
// when the input closes.
func fanOut(in <-chan force.Sample) (<-chan force.Sample, <-chan force.Sample) {
	a := make(chan force.Sample, 100)
	b := make(chan force.Sample, 100)

	go func() {
		defer close(a)
		defer close(b)
		for s := range in {
			a <- s
			b <- s
		}
	}()

	return a, b
}

// servoOut adapts the rig device to the actuator's Servo interface.
type servoOut struct {
	dev rig.Device
}

func (s servoOut) Command(pos int) error {
	return s.dev.SetServo(pos)
}

// storeAdapter adapts the logfile store to the sequencer's Store interface.
type storeAdapter struct {
	store *logfile.Store
}

func (a storeAdapter) Available() bool {
	return a.store.Available()
}

func (a storeAdapter) Create(name string, forcedSync bool) (sequencer.RowWriter, error) {
	w, err := a.store.Create(name, forcedSync)
	if err != nil {
		return nil, err
	}
	return w, nil
}
