// qlog-collector receives qlog traces from QUIC endpoints and archives
// them on disk. Live traces arrive over WebSocket as JSON-SEQ records and
// complete traces arrive as HTTP uploads.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/prometheusx"
	"github.com/m-lab/go/rtx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ansg191/quiche/collector"
	"github.com/ansg191/quiche/collector/config"
	"github.com/ansg191/quiche/collector/listener"
	"github.com/ansg191/quiche/logging"
)

var (
	// Flags that can be passed in on the command line. Each flag overrides
	// the corresponding value from the config file.
	configFile = flag.String("config", "", "TOML configuration file")
	listenAddr = flag.String("listen_addr", "", "The address and port to listen on for qlog streams")
	dataDir    = flag.String("datadir", "", "The directory in which to write archive files")
	certFile   = flag.String("cert", "", "The file with server certificates in PEM format.")
	keyFile    = flag.String("key", "", "The file with server key in PEM format.")
	compress   = flag.Bool("compress", true, "Gzip archive files as they are written")
	debug      = flag.Bool("debug", false, "Enable debug logging")

	// A metric to use to signal that the server is in lame duck mode.
	lameDuck = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lame_duck_experiment",
		Help: "Indicates when the server is in lame duck",
	})

	// Context for the whole program.
	ctx, cancel = context.WithCancel(context.Background())
)

// Version is set at build time with -ldflags.
var Version = "dev"

func catchSigterm() {
	// Disable lame duck status.
	lameDuck.Set(0)

	// Register channel to receive SIGTERM events.
	c := make(chan os.Signal, 1)
	defer close(c)
	signal.Notify(c, syscall.SIGTERM)

	// Wait until we receive a SIGTERM or the context is canceled.
	select {
	case <-c:
		fmt.Println("Received SIGTERM")
	case <-ctx.Done():
		fmt.Println("Canceled")
	}
	// Set lame duck status. This will remain set until exit.
	lameDuck.Set(1)
	// When we receive a second SIGTERM, cancel the context and shut
	// everything down. This should cause main() to exit cleanly.
	select {
	case <-c:
		fmt.Println("Received SIGTERM")
		cancel()
	case <-ctx.Done():
		fmt.Println("Canceled")
	}
}

// httpServer creates a new *http.Server with explicit Read and Write timeouts.
func httpServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: handler,
		// NOTE: set absolute read and write timeouts for server connections.
		// This prevents clients, or middleboxes, from opening a connection
		// and holding it open indefinitely. This applies equally to TLS and
		// non-TLS servers.
		ReadTimeout:  35 * time.Minute,
		WriteTimeout: 35 * time.Minute,
	}
}

// loadConfig merges the config file, defaults, and command line overrides.
func loadConfig() config.Config {
	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		rtx.Must(err, "Could not load config from %s", *configFile)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *certFile != "" {
		cfg.CertFile = *certFile
	}
	if *keyFile != "" {
		cfg.KeyFile = *keyFile
	}
	if *debug {
		cfg.Debug = true
	}
	cfg.Compress = *compress
	rtx.Must(cfg.Validate(), "Invalid configuration")
	return cfg
}

func main() {
	flag.Parse()
	rtx.Must(flagx.ArgsFromEnv(flag.CommandLine), "Could not get args from env")
	cfg := loadConfig()
	if cfg.Debug {
		logging.SetDebug()
	}

	// The prometheusx monitoring server also provides pprof endpoints.
	promSrv := prometheusx.MustServeMetrics()
	defer promSrv.Close()

	go catchSigterm()

	mux := collector.NewMux(cfg.DataDir, cfg.Compress, Version)
	srv := httpServer(cfg.ListenAddr, mux)
	defer srv.Close()
	if cfg.CertFile != "" && cfg.KeyFile != "" {
		logging.Logger.Infof("Listening for secure qlog streams on %s", cfg.ListenAddr)
		rtx.Must(listener.ListenAndServeTLSAsync(srv, cfg.CertFile, cfg.KeyFile),
			"Could not start TLS server")
	} else {
		logging.Logger.Infof("Listening for qlog streams on %s", cfg.ListenAddr)
		rtx.Must(listener.ListenAndServeAsync(srv), "Could not start server")
	}

	<-ctx.Done()
}
