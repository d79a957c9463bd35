package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/cclank/dailynews/internal/app"
	"github.com/cclank/dailynews/internal/cron"
	"github.com/cclank/dailynews/internal/status"
)

const shutdownTimeout = 10 * time.Second

func scheduleCmd() *cobra.Command {
	var (
		preset      string
		cronExpr    string
		noStreaming bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the digest on a cron schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			verbose, _ := cmd.Flags().GetBool("verbose")
			logger := newLogger(verbose)

			rt, err := buildRuntime(cfg, "", noStreaming, logger)
			if err != nil {
				return err
			}
			defer rt.close()

			metrics := status.NewMetrics(prometheus.DefaultRegisterer)

			scheduler := cron.NewScheduler(logger)
			if cfg.Schedule.Timezone != "" {
				loc, err := time.LoadLocation(cfg.Schedule.Timezone)
				if err != nil {
					return fmt.Errorf("load timezone %q: %w", cfg.Schedule.Timezone, err)
				}
				scheduler.SetLocation(loc)
			}

			expr := cronExpr
			if expr == "" {
				expr = cfg.Schedule.Cron
			}
			job := &cron.DigestJob{
				Runner:       rt.runner,
				Opts:         app.Options{Preset: preset},
				ScheduleExpr: expr,
				Metrics:      metrics,
				NextFunc:     scheduler.Next,
			}
			if err := scheduler.RegisterJob(job); err != nil {
				return err
			}
			if err := scheduler.Start(); err != nil {
				return err
			}

			var server *status.Server
			if cfg.Status.Addr != "" {
				server = status.NewServer(cfg.Status.Addr, job, prometheus.DefaultGatherer, logger)
				go func() {
					if err := server.Start(); err != nil {
						logger.Error("status server failed", "error", err)
					}
				}()
			}

			logger.Info("scheduler running",
				"cron", expr,
				"timezone", cfg.Schedule.Timezone,
				"next", scheduler.Next(),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if server != nil {
				_ = server.Shutdown(shutdownCtx)
			}
			return scheduler.Stop(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "News preset to use (default from config)")
	cmd.Flags().StringVar(&cronExpr, "cron", "", "Cron expression override")
	cmd.Flags().BoolVar(&noStreaming, "no-streaming", false, "Use batch output instead of streaming")
	return cmd
}
