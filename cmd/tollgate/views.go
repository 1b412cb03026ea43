package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/tollgate/internal/app"
	"github.com/example/tollgate/internal/store"
	"github.com/example/tollgate/internal/types"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	scoreColor  = color.New(color.FgYellow, color.Bold)
	dimColor    = color.New(color.Faint)
	starColor   = color.New(color.FgHiYellow)
)

func newTopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "top [n]",
		Short: "Show the top signals by score",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit := 10
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid limit %q", args[0])
				}
				limit = n
			}

			return withStore(func(st *store.Store) error {
				signals, err := st.TopSignals(limit)
				if err != nil {
					return err
				}

				headerColor.Printf("TOP %d SIGNALS\n\n", limit)
				if len(signals) == 0 {
					dimColor.Println("No signals detected yet. Try: tollgate scan")
					return nil
				}
				for i, sig := range signals {
					printSignalLine(i+1, sig)
				}
				return nil
			})
		},
	}
}

func newSectorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sectors",
		Short: "Show signal counts and scores by sector",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				stats, err := st.SectorStats()
				if err != nil {
					return err
				}

				headerColor.Println("SECTOR BREAKDOWN")
				fmt.Println()
				if len(stats) == 0 {
					dimColor.Println("No signals detected yet.")
					return nil
				}
				for _, s := range stats {
					fmt.Printf("%-24s", s.Sector)
					scoreColor.Printf("  avg %.1f", s.AvgScore)
					fmt.Printf("  max %.1f  (%d signals)\n", s.MaxScore, s.Count)
				}
				return nil
			})
		},
	}
}

func newWatchlistCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watchlist",
		Short: "Show watchlisted signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				signals, err := st.Watchlist()
				if err != nil {
					return err
				}

				headerColor.Println("WATCHLIST")
				fmt.Println()
				if len(signals) == 0 {
					dimColor.Println("No signals in watchlist")
					return nil
				}
				for i, sig := range signals {
					printSignalLine(i+1, sig)
				}
				return nil
			})
		},
	}
}

// withStore opens the app just for store access and closes it after.
func withStore(fn func(*store.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a.Store())
}

func printSignalLine(rank int, sig types.Signal) {
	fmt.Printf("%2d. ", rank)
	scoreColor.Printf("[%.1f]", sig.TotalScore)
	if sig.IsWatchlisted {
		starColor.Print(" *")
	}
	fmt.Printf(" %s\n", sig.Title)
	dimColor.Printf("    %s | %s | %s\n", sig.Sector, sig.TollMechanism, sig.Source)
	if sig.SourceURL != "" {
		dimColor.Printf("    %s\n", sig.SourceURL)
	}
}

func printSummary(s types.CycleSummary) {
	headerColor.Println("CYCLE SUMMARY")
	fmt.Printf("  processed:        %d\n", s.Processed)
	fmt.Printf("  created:          %d\n", s.Created)
	fmt.Printf("  updated:          %d\n", s.Updated)
	fmt.Printf("  below threshold:  %d\n", s.DiscardedBelowThreshold)
	fmt.Printf("  discard errors:   %d\n", s.DiscardedErrors)
	fmt.Printf("  malformed:        %d\n", s.Malformed)
	if s.SourcesFailed > 0 {
		color.Red("  sources failed:   %d", s.SourcesFailed)
	}
}
