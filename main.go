// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"specterm/cmd"
	"specterm/internal/analysis"
	"specterm/internal/audio"
	"specterm/internal/config"
	"specterm/internal/log"
	"specterm/internal/terminal"
	"specterm/internal/transport"
	"specterm/internal/transport/udp"
	"specterm/internal/tui"
	"specterm/internal/visualizer"
	"specterm/pkg/build"

	"golang.org/x/sync/errgroup"
)

// main is the entry point for the spectrum visualizer.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments and load the configuration
//   - Initialize PortAudio
//   - Execute one-off commands if requested
//
// 2. Concurrent Phase (Hot Path):
//   - Take over the terminal and start the event reader
//   - Start the capture stream, which drives the whole pipeline
//   - Start recording if enabled
//
// 3. Shutdown Phase (Cold Path):
//   - Wait for a quit key, a signal or a reader failure
//   - Stop capture, then the presenter and transports
//   - Restore the terminal
func main() {
	if err := run(os.Args[1:]); err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("%v", err)
	}
}

func run(args []string) error {
	// ==================== STARTUP PHASE (Cold Path) ====================

	if err := build.Initialize(); err != nil {
		log.Debugf("build: %v", err)
	}

	opts, err := cmd.ParseArgs(args, os.Stdout)
	if err != nil {
		return err
	}
	if opts.Command == "" {
		return nil
	}

	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	applyOptions(cfg, opts)
	log.SetLevel(cfg.Level())

	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	if opts.Command == cmd.CommandList {
		if !opts.Interactive {
			return audio.ListDevices(os.Stdout)
		}
		selection, err := tui.StartDeviceListUI()
		if tui.IsNoSelection(err) {
			return nil
		}
		if err != nil {
			return err
		}
		cfg.Audio.Source = selection.Device
		cfg.Audio.SampleRate = selection.SampleRate
	}

	return visualize(cfg)
}

// applyOptions lays the command line over the loaded configuration. Flags
// that were not given leave the file values alone.
func applyOptions(cfg *config.Config, opts *cmd.Options) {
	if opts.Source != "" {
		cfg.Audio.Source = opts.Source
	}
	if opts.Record {
		cfg.Recording.Enabled = true
	}
	if opts.OutputFile != "" {
		cfg.Recording.Enabled = true
		cfg.Recording.OutputFile = opts.OutputFile
	}
	if opts.Verbose {
		cfg.Debug = true
	}
	if opts.LogFile != "" {
		cfg.LogFile = opts.LogFile
	}
}

func visualize(cfg *config.Config) error {
	spectrumCfg, err := cfg.Spectrum.Analysis()
	if err != nil {
		return err
	}
	renderCfg, err := visualizer.NewRenderConfig(cfg.Render.FillChar, cfg.Render.EmptyChar)
	if err != nil {
		return err
	}

	logOutput, closeLog, err := openLog(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	tr, err := newTransports(cfg)
	if err != nil {
		return err
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	term := terminal.New()
	if err := term.Init(); err != nil {
		tr.Close()
		return err
	}
	// Anything written to stderr now would land on the alternate screen.
	log.SetOutput(logOutput)
	defer func() {
		term.Fini()
		log.SetOutput(os.Stderr)
	}()

	width, height, err := term.Size()
	if err != nil {
		tr.Close()
		return err
	}

	spectrum, err := analysis.NewSpectrum(width, spectrumCfg)
	if err != nil {
		tr.Close()
		return err
	}

	renderer := visualizer.NewBarRenderer(renderCfg)
	var presenter visualizer.Presenter
	if cfg.Render.Async {
		presenter = visualizer.NewAsyncPresenter(term.Writer(), renderer)
	} else {
		presenter = visualizer.NewSyncPresenter(term.Writer(), renderer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	reader := terminal.NewEventReader(term.Input(), term.Size, terminal.DefaultEventBuffer)
	coordinator := visualizer.NewCoordinator(visualizer.Options{
		Spectrum:  spectrum,
		Presenter: presenter,
		Transport: tr,
		Events:    reader.Events(),
		OnQuit:    cancel,
	})
	coordinator.Resize(width, height)

	engine, err := audio.NewEngine(cfg, coordinator.Period)
	if err != nil {
		presenter.Close()
		tr.Close()
		return err
	}
	log.Infof("Listening on %s (%d channels, %.0f Hz)", engine.DeviceName(), engine.Channels(), engine.SampleRate())

	g.Go(func() error {
		return reader.Run(gctx)
	})

	// CRITICAL: Start of real-time audio processing
	// From here on PortAudio calls the coordinator once per period.
	if err := engine.StartInputStream(); err != nil {
		cancel()
		_ = g.Wait()
		presenter.Close()
		tr.Close()
		return err
	}

	var recordingPath string
	if cfg.Recording.Enabled {
		recordingPath = audio.RecordingPath(cfg.Recording.OutputDir, cfg.Recording.OutputFile, time.Now())
		if err := engine.StartRecording(recordingPath); err != nil {
			log.Errorf("Recording disabled: %v", err)
			recordingPath = ""
		}
	}

	// Block until a quit key, a signal, end of input or a reader failure.
	waitErr := g.Wait()

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	var errs []error
	if waitErr != nil && !errors.Is(waitErr, context.Canceled) {
		errs = append(errs, fmt.Errorf("terminal input: %w", waitErr))
	}
	if err := engine.StopInputStream(); err != nil {
		errs = append(errs, fmt.Errorf("stop capture: %w", err))
	}
	if err := engine.StopRecording(); err != nil {
		errs = append(errs, fmt.Errorf("stop recording: %w", err))
	}
	if err := presenter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close presenter: %w", err))
	}
	if err := tr.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close transports: %w", err))
	}
	coordinator.LogStats()
	log.Debugf("Audio: %d periods captured", engine.Periods())
	if err := engine.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close audio engine: %w", err))
	}

	term.Fini()
	log.SetOutput(os.Stderr)
	if recordingPath != "" {
		fmt.Printf("Recording saved to: %s\n", recordingPath)
	}
	return errors.Join(errs...)
}

// newTransports builds every enabled transport. An empty Multi accepts and
// discards heights.
func newTransports(cfg *config.Config) (transport.Multi, error) {
	var multi transport.Multi

	if cfg.Transport.WSEnabled {
		ws, err := transport.NewWebSocketTransport(cfg.Transport.WSAddress, cfg.Transport.WSSendInterval)
		if err != nil {
			return nil, err
		}
		multi = append(multi, ws)
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewUDPSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			multi.Close()
			return nil, err
		}
		publisher, err := udp.NewUDPPublisher(cfg.Transport.UDPSendInterval, sender)
		if err != nil {
			sender.Close()
			multi.Close()
			return nil, err
		}
		publisher.Start()
		multi = append(multi, publisher)
	}

	if cfg.Debug {
		multi = append(multi, transport.NewLoggingTransport(time.Second))
	}
	return multi, nil
}

// openLog returns where log output goes while the terminal is taken over.
func openLog(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
