package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dynamo-fod/fod/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that gfal2-util tools and the configured X509 proxy are usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			binaries, results := preflight.CheckAll(cfg)
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			fmt.Fprintln(stdout, renderHeader("GFAL2 Tools", colorize))
			failed := false
			for _, b := range binaries {
				status := "MISSING"
				if b.Available {
					status = "OK"
				} else if b.Optional {
					status = "MISSING (optional)"
				} else {
					failed = true
				}
				fmt.Fprintf(stdout, "  %-28s [%s]\n", b.Name, status)
			}

			fmt.Fprintln(stdout, renderHeader("Proxy Certificates", colorize))
			for _, r := range results {
				status := "FAIL"
				if r.Passed {
					status = "OK"
				} else {
					failed = true
				}
				fmt.Fprintf(stdout, "  %-28s [%s] %s\n", r.Name, status, r.Detail)
			}

			if failed {
				return fmt.Errorf("one or more preflight checks failed")
			}
			return nil
		},
	}
}
