package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/tollgate/internal/app"
	"github.com/example/tollgate/internal/scheduler"
	"github.com/example/tollgate/internal/server"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scanner on its schedule, with the dashboard API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			sched, err := scheduler.New(cfg.Digest.Timezone)
			if err != nil {
				return err
			}

			scanJob := func(ctx context.Context) error {
				_, err := a.RunCycle(ctx)
				return err
			}
			if err := sched.AddScanJob(cfg.Scan.IntervalMinutes, scanJob); err != nil {
				return err
			}
			if cfg.Digest.Enabled {
				if err := sched.AddDigestJob(cfg.Digest.Time, a.SendDigest); err != nil {
					return err
				}
			}

			if cfg.Server.Addr != "" {
				srv := server.New(a.Store(), cfg.Scoring)
				go func() {
					log.Printf("Dashboard API listening on http://%s", cfg.Server.Addr)
					if err := srv.Run(cfg.Server.Addr); err != nil {
						log.Printf("API server stopped: %v", err)
					}
				}()
			}

			// First cycle right away; the scheduler handles the rest.
			if _, err := a.RunCycle(cmd.Context()); err != nil {
				log.Printf("Initial cycle aborted: %v", err)
			}

			sched.Start()
			log.Printf("Next scan at %s", sched.NextRun("scan").Format("15:04:05"))

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop

			log.Println("Shutting down...")
			<-sched.Stop().Done()
			return nil
		},
	}
}

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run a single detection cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.RunCycle(cmd.Context())
			if err != nil {
				return err
			}
			printSummary(summary)
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API without scanning",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := server.New(a.Store(), cfg.Scoring)
			log.Printf("Dashboard API listening on http://%s", cfg.Server.Addr)
			return srv.Run(cfg.Server.Addr)
		},
	}
}
