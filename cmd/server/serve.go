package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/ZeroHub/backend/internal/infrastructure/server"
)

type serveFlags struct {
	port       string
	catalogDir string
	watch      bool
	dev        bool
	noOracle   bool
}

func newServeCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the desktop HTTP and WebSocket server",
		Long: `Run the desktop backend. Configuration is read from the environment
(PORT, ORACLE_API_KEY, CATALOG_DIR, ...); flags override it.

Example:
  zerohub serve
  zerohub serve --port 9000 --catalog ./simulations --watch --dev`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			srv, err := server.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}
			defer srv.Close()

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&flags.port, "port", "", "Server port (overrides PORT)")
	cmd.Flags().StringVar(&flags.catalogDir, "catalog", "", "Directory of simulation files (overrides CATALOG_DIR)")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "Reload the catalog directory when its files change")
	cmd.Flags().BoolVar(&flags.dev, "dev", false, "Development mode: console logs at debug level")
	cmd.Flags().BoolVar(&flags.noOracle, "no-oracle", false, "Disable the AI backend")
	return cmd
}

// apply copies the flags the user set onto cfg
func (f serveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = f.port
	}
	if cmd.Flags().Changed("catalog") {
		cfg.Catalog.Dir = f.catalogDir
	}
	if f.watch {
		cfg.Catalog.Watch = true
	}
	if f.dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	if f.noOracle {
		cfg.Oracle.Enabled = false
	}
}
