package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ilac-cebimde/medtracker/admin"
	"ilac-cebimde/medtracker/audio"
	"ilac-cebimde/medtracker/authstate"
	"ilac-cebimde/medtracker/dblayer"
	"ilac-cebimde/medtracker/healthz"
	"ilac-cebimde/medtracker/httpmetrics"
	"ilac-cebimde/medtracker/identity"
	"ilac-cebimde/medtracker/monitoring"
	"ilac-cebimde/medtracker/secrets"
	"ilac-cebimde/medtracker/webui"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"github.com/golang/glog"
	"golang.org/x/time/rate"
)

var (
	debugListen = flag.String("debug-listen", "127.0.0.1:8001", "Server address:port for debug endpoint.")
	uiListen    = flag.String("ui-listen", "127.0.0.1:8000", "Server address:port for ui endpoint.")
	dataProject = flag.String("data-project", "", "Firebase project that contains the application state.")

	apiKey       = flag.String("api-key", "", "Firebase web API key.  Takes precedence over --api-key-secret.")
	apiKeySecret = flag.String("api-key-secret", "firebase-api-key", "GCP Secret Manager secret name containing the Firebase web API key.")

	audioBucket = flag.String("audio-bucket", "", "Cloud Storage bucket holding medicine audio notes.  Audio is not shown if empty.")
	audioURLTTL = flag.Duration("audio-url-ttl", 15*time.Minute, "Lifetime of signed audio URLs.")

	secureCookies = flag.Bool("secure-cookies", true, "Mark session cookies Secure.  Disable only for local development over plain HTTP.")

	authRate  = flag.Float64("auth-rate", 0.2, "Sustained auth form posts per second allowed from one client.")
	authBurst = flag.Int("auth-burst", 5, "Auth form posts a client may make in a burst.")

	trustedProxyHops = flag.Int("trusted-proxy-hops", 0, "Number of proxies in front of the UI that append to X-Forwarded-For.  The auth rate limit keys on the address the outermost of them saw.  0 uses the socket peer address.")

	monitor              = flag.Bool("monitoring", false, "Enable monitoring?")
	monitoringProject    = flag.String("monitoring-project", "", "Override project used for monitoring integration.  If not specified, the project associated with Application Default Credentials is used.")
	monitoringTraceRatio = flag.Float64("monitoring-trace-ratio", 0.01, "What ratio of traces should be exported?")
)

func main() {
	flag.Parse()

	glog.CopyStandardLogTo("INFO")

	glog.Infof("flags:")
	glog.Infof("debug-listen: %v", *debugListen)
	glog.Infof("ui-listen: %v", *uiListen)
	glog.Infof("data-project: %v", *dataProject)
	glog.Infof("api-key set: %v", *apiKey != "")
	glog.Infof("api-key-secret: %v", *apiKeySecret)
	glog.Infof("audio-bucket: %v", *audioBucket)
	glog.Infof("audio-url-ttl: %v", *audioURLTTL)
	glog.Infof("secure-cookies: %v", *secureCookies)
	glog.Infof("auth-rate: %v", *authRate)
	glog.Infof("auth-burst: %v", *authBurst)
	glog.Infof("trusted-proxy-hops: %v", *trustedProxyHops)
	glog.Infof("monitoring: %v", *monitor)
	glog.Infof("monitoring-project: %v", *monitoringProject)
	glog.Infof("monitoring-trace-ratio: %v", *monitoringTraceRatio)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := do(ctx); err != nil {
		glog.Exitf("Error: %v", err)
	}
}

func do(ctx context.Context) error {
	if err := httpmetrics.RegisterMetrics(); err != nil {
		return fmt.Errorf("while registering http metrics: %w", err)
	}

	if *monitor {
		shutdown, err := monitoring.Install(ctx, monitoring.Options{
			Project:      *monitoringProject,
			MetricPrefix: "ilac-cebimde-webui",
			TraceRatio:   *monitoringTraceRatio,
		})
		if err != nil {
			return fmt.Errorf("while installing monitoring: %w", err)
		}
		defer shutdown()
	}

	key := *apiKey
	if key == "" {
		var err error
		key, err = secrets.Latest(ctx, *dataProject, *apiKeySecret)
		if err != nil {
			return fmt.Errorf("while loading Firebase API key: %w", err)
		}
	}

	fstore, err := firestore.NewClient(ctx, *dataProject)
	if err != nil {
		return fmt.Errorf("while creating FireStore client: %w", err)
	}
	defer fstore.Close()
	db := dblayer.New(fstore)

	userService, err := identity.NewUserService(ctx, key)
	if err != nil {
		return err
	}
	adminService, err := identity.NewAdminService(ctx)
	if err != nil {
		return err
	}
	provider := identity.NewProvider(userService, adminService, identity.NewTokenVerifier(*dataProject))

	var audioLinks *audio.Links
	if *audioBucket != "" {
		storageClient, err := storage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("while creating Cloud Storage client: %w", err)
		}
		defer storageClient.Close()
		audioLinks = audio.New(storageClient.Bucket(*audioBucket), *audioURLTTL)
	}

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

	ui := webui.New(
		admin.New(db),
		provider,
		db,
		authstate.NewManager(db, *secureCookies),
		audioLinks,
		webui.NewAuthLimiter(rate.Limit(*authRate), *authBurst, *trustedProxyHops),
	)
	uiServer := &http.Server{
		Addr:    *uiListen,
		Handler: httpmetrics.New(ui.Handler()),

		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := debugServer.ListenAndServe(); err != nil {
			glog.Fatalf("Debug server died: %v", err)
		}
	}()

	go func() {
		if err := uiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			glog.Fatalf("UI server died: %v", err)
		}
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	<-signalCh

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := uiServer.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("Error while shutting down UI server: %v", err)
	}

	glog.Flush()

	return nil
}
