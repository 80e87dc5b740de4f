/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Budgeto pay-cycle projection server: config,
  logging, store, HTTP router, reminder scheduler, graceful shutdown.

CONFIGURATION (viper; BUDGETO_* env vars override the optional budgeto.yaml):
  port               HTTP port                          (default 8080)
  db                 SQLite path, ":memory:" for none   (default budgeto.db)
  cors_origins       allowed origins                    (default localhost dev ports)
  timezone           IANA zone for "today"              (default UTC)
  log_level          zerolog level                      (default info)
  reminder.lead_days days before payday to email        (default 1)
  reminder.interval  scan interval                      (default 1h)
  smtp.addr          host:port; log-only sender if empty
  smtp.from          sender address
  smtp.username      optional PLAIN auth
  smtp.password

SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, drain for up to 30s, stop
  the scheduler, close the store.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/icaruswings/Budgeto/api"
	"github.com/icaruswings/Budgeto/notify"
	"github.com/icaruswings/Budgeto/store/sqlite"
)

func main() {
	cfg := loadConfig()

	level, err := zerolog.ParseLevel(cfg.GetString("log_level"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	loc, err := time.LoadLocation(cfg.GetString("timezone"))
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.GetString("timezone")).Msg("invalid timezone")
	}

	st, err := sqlite.New(cfg.GetString("db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer st.Close()

	var sender notify.Sender
	if addr := cfg.GetString("smtp.addr"); addr != "" {
		sender = &notify.SMTPSender{
			Addr:     addr,
			From:     cfg.GetString("smtp.from"),
			Username: cfg.GetString("smtp.username"),
			Password: cfg.GetString("smtp.password"),
			Host:     strings.Split(addr, ":")[0],
		}
		log.Info().Str("addr", addr).Msg("smtp sender configured")
	} else {
		sender = &notify.LogSender{Log: log}
		log.Info().Msg("no smtp configured; reminders are log-only")
	}

	handler := api.NewHandler(st, log, loc)
	router := api.NewRouter(handler, cfg.GetStringSlice("cors_origins"))

	scheduler := api.NewReminderScheduler(st, sender, log, loc)
	scheduler.LeadDays = cfg.GetInt("reminder.lead_days")
	scheduler.CheckInterval = cfg.GetDuration("reminder.interval")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.GetInt("port")),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	scheduler.Stop()

	log.Info().Msg("server stopped")
}

func loadConfig() *viper.Viper {
	v := viper.New()
	v.SetDefault("port", 8080)
	v.SetDefault("db", "budgeto.db")
	v.SetDefault("cors_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("timezone", "UTC")
	v.SetDefault("log_level", "info")
	v.SetDefault("reminder.lead_days", 1)
	v.SetDefault("reminder.interval", time.Hour)
	v.SetDefault("smtp.addr", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")

	v.SetConfigName("budgeto")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.budgeto")
	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; env vars and defaults carry the day.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "warning: ignoring config file: %v\n", err)
		}
	}

	v.SetEnvPrefix("BUDGETO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}
