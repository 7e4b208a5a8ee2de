package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/domain/catalog"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect simulation catalogs",
	}
	cmd.AddCommand(newCatalogValidateCmd())
	cmd.AddCommand(newCatalogListCmd())
	return cmd
}

func newCatalogValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <dir>",
		Short: "Check that every simulation file in a directory loads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := catalog.New().LoadDir(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range report.Loaded {
				fmt.Fprintf(out, "ok    %s\n", name)
			}
			for name, ferr := range report.Failed {
				fmt.Fprintf(out, "FAIL  %s: %v\n", name, ferr)
			}
			if len(report.Failed) > 0 {
				return fmt.Errorf("%d of %d files failed", len(report.Failed), len(report.Failed)+len(report.Loaded))
			}
			return nil
		},
	}
}

func newCatalogListCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the built-in simulations and those in --dir",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat := catalog.New()
			if err := cat.Seed(); err != nil {
				return err
			}
			if dir != "" {
				report, err := cat.LoadDir(dir)
				if err != nil {
					return err
				}
				if err := report.Err(); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			for _, e := range cat.List() {
				fmt.Fprintf(out, "%-16s %-14s %s\n", e.ID, e.Kind, e.Title)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Directory of simulation files")
	return cmd
}
