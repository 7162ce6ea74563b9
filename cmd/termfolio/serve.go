package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"termfolio/internal/platform"
	"termfolio/internal/runtime"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the embedded NATS server and the web terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.HTTPSrvCfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("headless") {
			cfg.Flags.Headless, _ = cmd.Flags().GetBool("headless")
		}
		return serve(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().Bool("headless", false, "Run without the HTTP server")
}

func serve(cfg *platform.AppConfig) error {
	platform.InitMetrics()
	platform.InitLogger(cfg.LogLevel)

	content, err := runtime.LoadContent(runtime.ContentFS(cfg.ContentDir))
	if err != nil {
		return fmt.Errorf("content: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// --- Run embedded NATS server ---
	nc, ns, natErrCh, err := platform.RunEmbeddedServer(ctx, *cfg.NatsCfg)
	if err != nil {
		return fmt.Errorf("start embedded server: %w", err)
	}
	defer ns.Shutdown()
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("jetstream: %w", err)
	}

	var httpErrCh <-chan error
	if !cfg.Flags.Headless {
		router := platform.NewRouter(js, platform.NewCookieStore(cfg.HTTPSrvCfg.SessionKey), content.Manifest.Name)
		httpErrCh = platform.RunHTTPServer(ctx, router, *cfg.HTTPSrvCfg)
	} else {
		httpErrCh = make(chan error) // never sends
	}

	go func() {
		select {
		case err := <-natErrCh:
			if !errors.Is(err, context.Canceled) {
				slog.Error("Embedded server error", "err", err)
			}
			cancel()
		case err := <-httpErrCh:
			if !errors.Is(err, context.Canceled) {
				slog.Error("HTTP server error", "err", err)
			}
			cancel()
		}
	}()

	return platform.Run(ctx, js, cfg, content)
}
