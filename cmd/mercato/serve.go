package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/aretw0/mercato/pkg/adapters/http"
	"github.com/aretw0/mercato/pkg/adapters/memory"
	"github.com/aretw0/mercato/pkg/adapters/whatsapp"
	"github.com/aretw0/mercato/pkg/observability"
	"github.com/aretw0/mercato/pkg/ports"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server",
	Long:  `Starts the bot behind the channel webhook, answering customers through the WhatsApp Cloud API.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		logger := cfg.Logger()

		st, err := newStack(cfg, logger)
		if err != nil {
			fmt.Printf("Error initializing mercato: %v\n", err)
			os.Exit(1)
		}
		defer st.Close()

		var (
			out      ports.Messenger
			resolver ports.MediaResolver
		)
		if cfg.UseWhatsApp() {
			wa := whatsapp.New(cfg.WhatsApp.Token, cfg.WhatsApp.PhoneNumberID,
				whatsapp.WithBaseURL(cfg.WhatsApp.APIBase),
				whatsapp.WithLogger(logger),
			)
			out, resolver = wa, wa
		} else {
			logger.Warn("whatsapp not configured, replies are printed to stdout")
			out = memory.NewConsole(os.Stdout)
		}

		bot, err := st.bot(out, resolver, observability.NewMetrics())
		if err != nil {
			fmt.Printf("Error initializing mercato: %v\n", err)
			os.Exit(1)
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           bot.Handler(httpadapter.WithVerifyToken(cfg.WhatsApp.VerifyToken)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting mercato server", "addr", srv.Addr, "sessions", cfg.Session.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server error", "err", err)
				os.Exit(1)
			}

		case sig := <-shutdown:
			logger.Info("start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("error killing server", "err", err)
				}
			}
			logger.Info("mercato server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides PORT)")
}
