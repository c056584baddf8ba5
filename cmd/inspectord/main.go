// Command inspectord runs the inspector analyzer as a standalone process:
// it loads configuration, wires the message queues, handle registry,
// worker pool, and optional discovery/event-log/sample-source layers, and
// blocks until interrupted.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/kc9xyz/suscan-inspector/internal/analyzer"
	"github.com/kc9xyz/suscan-inspector/internal/channel"
	"github.com/kc9xyz/suscan-inspector/internal/client"
	"github.com/kc9xyz/suscan-inspector/internal/config"
	"github.com/kc9xyz/suscan-inspector/internal/discovery"
	"github.com/kc9xyz/suscan-inspector/internal/eventlog"
	"github.com/kc9xyz/suscan-inspector/internal/mq"
	"github.com/kc9xyz/suscan-inspector/internal/registry"
	"github.com/kc9xyz/suscan-inspector/internal/source"
	"github.com/kc9xyz/suscan-inspector/internal/worker"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "Path to YAML config file.")
	logLevel := pflag.String("log-level", "", "Override the config file's log level (debug, info, warn, error).")
	sampRate := pflag.Float64("samp-rate", 0, "Override the config file's sample rate in Hz.")
	mqPool := pflag.Bool("mq-pool", false, "Enable the shared message-node freelist.")
	advertise := pflag.Bool("advertise", false, "Advertise the analyzer's control endpoint over mDNS.")
	help := pflag.Bool("help", false, "Display help text.")

	pflag.Parse()
	if *help {
		pflag.Usage()
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal("failed to load config", "err", err)
		}
		cfg = loaded
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *sampRate > 0 {
		cfg.SampleRate = *sampRate
	}
	if *mqPool {
		cfg.Queue.UsePool = true
	}
	if *advertise {
		cfg.Discovery.Enabled = true
	}

	logger := log.New(os.Stderr)
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.Warn("unrecognized log level, defaulting to info", "log_level", cfg.LogLevel)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var nodePool *mq.Pool
	if cfg.Queue.UsePool {
		nodePool = mq.NewPool(logger.With("component", "mq-pool"))
	}

	var qOpts []mq.Option
	if nodePool != nil {
		qOpts = append(qOpts, mq.WithPool(nodePool))
	}
	requests := mq.New(qOpts...)
	responses := mq.New(qOpts...)

	gen := source.NewGenerator(cfg.SampleRate, cfg.SampleRate/20, 1.0, 0.01, 1)
	bcast := worker.NewBroadcaster(gen)
	go func() {
		if err := bcast.Run(ctx, 4096); err != nil {
			logger.Error("sample broadcaster stopped", "err", err)
		}
	}()

	pool := worker.NewPool(cfg.WorkerConcurrency, logger.With("component", "worker-pool"))
	defer pool.Close()

	rateSource := constRateSource{rate: cfg.SampleRate}
	an := analyzer.New(rateSource, requests, responses, pool, func(registry.Handle) worker.Consumer {
		return bcast.Register()
	}, logger.With("component", "analyzer"))

	if cfg.EventLog.Enabled {
		evlog, err := eventlog.Open(cfg.EventLog.Dir)
		if err != nil {
			logger.Error("failed to open event log, continuing without it", "err", err)
		} else {
			defer evlog.Close()
			an.OnEvent(func(event string, h registry.Handle, inspectorID string) {
				if err := evlog.Write(time.Now(), int(h), inspectorID, event); err != nil {
					logger.Error("event log write failed", "err", err)
				}
			})
		}
	}

	if cfg.Discovery.Enabled {
		ad, err := discovery.Advertise(cfg.Discovery.ServiceName, cfg.Discovery.Port)
		if err != nil {
			logger.Error("mDNS advertisement failed, continuing without it", "err", err)
		} else {
			defer ad.Close()
		}
	}

	logger.Info("inspectord starting", "sample_rate", cfg.SampleRate, "worker_concurrency", cfg.WorkerConcurrency)

	runErr := make(chan error, 1)
	go func() { runErr <- an.Run(ctx) }()

	if len(cfg.Channels) > 0 {
		autoOpen(ctx, requests, responses, logger.With("component", "auto-open"), cfg.Channels)
	}

	if err := <-runErr; err != nil {
		logger.Error("analyzer run loop exited with error", "err", err)
		os.Exit(1)
	}

	logger.Info("inspectord shutting down")
}

// autoOpen issues an OPEN request for each channel configured in the
// config file's channel list, logging (and skipping) any that fail
// rather than aborting startup.
func autoOpen(ctx context.Context, requests, responses *mq.Queue, logger *log.Logger, channels []channel.Descriptor) {
	c := client.New(requests, responses, logger)
	for _, ch := range channels {
		openCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		handle, err := c.Open(openCtx, ch)
		cancel()
		if err != nil {
			logger.Error("failed to auto-open configured channel", "channel", ch, "err", err)
			continue
		}
		logger.Info("auto-opened configured channel", "channel", ch, "handle", handle)
	}
}

type constRateSource struct{ rate float64 }

func (s constRateSource) SampleRate() float64 { return s.rate }
