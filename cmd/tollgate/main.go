// Command tollgate scans public feeds for infrastructure chokepoint
// signals, scores them, and serves the resulting watchlist.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/tollgate/internal/config"
)

var configPath string

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	root := &cobra.Command{
		Use:           "tollgate",
		Short:         "Infrastructure chokepoint signal scanner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: platform config dir)")

	root.AddCommand(
		newRunCmd(),
		newScanCmd(),
		newServeCmd(),
		newTopCmd(),
		newSectorsCmd(),
		newWatchlistCmd(),
	)

	if err := root.Execute(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

// loadConfig reads the config (creating a default file on first run when no
// explicit path is given) and validates it. Validation failures are fatal
// here, before any cycle starts.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = config.Load()
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			// First run - create default config
			cfg = config.Default()
			if saveErr := cfg.Save(); saveErr != nil {
				log.Printf("Warning: could not save default config: %v", saveErr)
			} else {
				path, _ := config.ConfigPath()
				log.Printf("Created default config at: %s", path)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
