package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/platewatch/platewatch/internal/config"
	"github.com/platewatch/platewatch/internal/metrics"
	"github.com/platewatch/platewatch/internal/monitor"
	"github.com/platewatch/platewatch/internal/pipeline"
	"github.com/platewatch/platewatch/internal/recognizer"
	"github.com/platewatch/platewatch/internal/recorder"
)

var (
	frameDir      = flag.String("frames", "", "Directory of image frames to feed the recognizer (required)")
	frameInterval = flag.Duration("frame-interval", 33*time.Millisecond, "Pacing between frames")
	outputDir     = flag.String("output-dir", "", "Session journal directory (overrides PLATEWATCH_OUTPUT_DIR)")
	monitorAddr   = flag.String("monitor", "", "Monitor HTTP address (overrides PLATEWATCH_MONITOR_ADDR)")
	recognizerURL = flag.String("recognizer", "", "Recognition agent base URL (overrides PLATEWATCH_RECOGNIZER_URL)")
	window        = flag.Duration("duplicate-window", -1, "Duplicate suppression window (overrides PLATEWATCH_DUPLICATE_WINDOW)")
	minConfidence = flag.Float64("min-confidence", -1, "Minimum detection confidence (overrides PLATEWATCH_MIN_CONFIDENCE)")
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *monitorAddr != "" {
		cfg.MonitorAddr = *monitorAddr
	}
	if *recognizerURL != "" {
		cfg.RecognizerURL = *recognizerURL
	}
	if *window >= 0 {
		cfg.DuplicateWindow = *window
	}
	if *minConfidence >= 0 {
		cfg.MinConfidence = *minConfidence
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, parseErr := zerolog.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	if *frameDir == "" {
		return fmt.Errorf("-frames is required")
	}
	if cfg.RecognizerURL == "" {
		return fmt.Errorf("no recognizer configured, set -recognizer or PLATEWATCH_RECOGNIZER_URL")
	}

	source, err := pipeline.NewDirSource(*frameDir, *frameInterval)
	if err != nil {
		return err
	}

	m := metrics.New()

	rec, err := recorder.New(cfg.DuplicateWindow, cfg.OutputDir, m, log.Logger)
	if err != nil {
		return err
	}

	var notifier pipeline.Notifier
	var mon *monitor.Server
	if cfg.MonitorAddr != "" {
		mon = monitor.NewServer(cfg.MonitorAddr, rec, m, log.Logger)
		notifier = mon.Broadcaster()
		go func() {
			if err := mon.ListenAndServe(); err != nil {
				log.Error().Err(err).Msg("monitor server failed")
			}
		}()
	}

	pipe := pipeline.New(pipeline.Options{
		Source:        source,
		Recognizer:    recognizer.NewAgentClient(cfg.RecognizerURL),
		Recorder:      rec,
		Metrics:       m,
		Logger:        log.Logger,
		MinConfidence: cfg.MinConfidence,
		ProcessEvery:  cfg.ProcessEvery,
		Notifier:      notifier,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := pipe.Run(ctx)

	if mon != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := mon.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("monitor shutdown failed")
		}
		cancel()
	}

	if err := rec.Close(); err != nil {
		log.Error().Err(err).Msg("final journal write failed")
	}

	printSummary(rec)
	return runErr
}

func printSummary(rec *recorder.Recorder) {
	st := rec.Status()

	fmt.Println()
	fmt.Println("============================================================")
	fmt.Println("SESSION SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Session ID: %s\n", st.SessionID)
	fmt.Printf("Total detections: %d\n", st.TotalDetections)
	fmt.Printf("Session file: %s\n", st.JournalPath)

	summary := rec.Summary()
	if len(summary) > 0 {
		plates := make([]string, 0, len(summary))
		for plate := range summary {
			plates = append(plates, plate)
		}
		sort.Strings(plates)

		fmt.Println()
		fmt.Println("Detected plates:")
		for _, plate := range plates {
			fmt.Printf("  - %s: %d time(s)\n", plate, summary[plate])
		}
	}
	fmt.Println("============================================================")
}
