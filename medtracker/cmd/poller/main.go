package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ilac-cebimde/medtracker/dblayer"
	"ilac-cebimde/medtracker/healthz"
	"ilac-cebimde/medtracker/monitoring"
	"ilac-cebimde/medtracker/poller"

	"cloud.google.com/go/firestore"
)

var (
	debugListen   = flag.String("debug-listen", "127.0.0.1:8001", "Server address:port for debug endpoint.")
	recheckPeriod = flag.Duration("recheck-period", 1*time.Hour, "Time between scans")
	parallelism   = flag.Int64("parallelism", 16, "Patients checked concurrently.")
	dataProject   = flag.String("data-project", "", "Firebase project that contains the application state.")

	monitor              = flag.Bool("monitoring", false, "Enable monitoring?")
	monitoringProject    = flag.String("monitoring-project", "", "Override project used for monitoring integration.  If not specified, the project associated with Application Default Credentials is used.")
	monitoringTraceRatio = flag.Float64("monitoring-trace-ratio", 1, "What ratio of traces should be exported?")
)

func main() {
	flag.Parse()

	slog.Info("Starting up")
	slog.Info(
		"Flags",
		slog.String("debug-listen", *debugListen),
		slog.Duration("recheck-period", *recheckPeriod),
		slog.Int64("parallelism", *parallelism),
		slog.String("data-project", *dataProject),
		slog.Bool("monitoring", *monitor),
		slog.String("monitoring-project", *monitoringProject),
		slog.Float64("monitoring-trace-ratio", *monitoringTraceRatio),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := do(ctx); err != nil {
		slog.ErrorContext(ctx, "Error", slog.Any("err", err))
		os.Exit(255)
	}
}

func do(ctx context.Context) error {
	if err := poller.RegisterMetrics(); err != nil {
		return fmt.Errorf("while registering poller metrics: %w", err)
	}

	if *monitor {
		shutdown, err := monitoring.Install(ctx, monitoring.Options{
			Project:      *monitoringProject,
			MetricPrefix: "ilac-cebimde-poller",
			TraceRatio:   *monitoringTraceRatio,
		})
		if err != nil {
			return fmt.Errorf("while installing monitoring: %w", err)
		}
		defer shutdown()
	}

	fstore, err := firestore.NewClient(ctx, *dataProject)
	if err != nil {
		return fmt.Errorf("while creating FireStore client: %w", err)
	}
	defer fstore.Close()
	db := dblayer.New(fstore)

	debugServeMux := http.NewServeMux()
	debugServeMux.Handle("/healthz", healthz.New())
	debugServeMux.Handle("/readyz", healthz.New(db))
	debugServeMux.HandleFunc("/debug/pprof/", pprof.Index)
	debugServeMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	debugServeMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	debugServeMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	debugServeMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	debugServer := &http.Server{
		Addr:    *debugListen,
		Handler: debugServeMux,

		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	p := poller.New(db, *recheckPeriod, *parallelism)

	go func() {
		if err := debugServer.ListenAndServe(); err != nil {
			slog.ErrorContext(ctx, "Debug server died", slog.Any("err", err))
			os.Exit(255)
		}
	}()

	pollCtx, stopPolling := context.WithCancel(ctx)
	defer stopPolling()
	go func() {
		p.Run(pollCtx)
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	<-signalCh

	return nil
}
