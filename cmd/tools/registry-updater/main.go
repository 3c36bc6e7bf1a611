// cmd/tools/registry-updater/main.go
package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"assistant-workers/internal/workers/assistant"
	"assistant-workers/pkg/registry"
)

func main() {
	if err := newRootCmd(time.Now).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(now func() time.Time) *cobra.Command {
	var registryPath string

	root := &cobra.Command{
		Use:           "registry-updater",
		Short:         "Maintain the activity registry that describes every worker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&registryPath, "path", "configs/activity-registry.json", "path to registry file")

	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered activities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			return printActivities(cmd.OutOrStdout(), reg)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the registry file, including its JSON schemas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Set an activity's implementation status (planned, in-progress, completed, verified)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.SetStatus(args[0], args[1], now()); err != nil {
				return err
			}
			if err := reg.Save(registryPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s status to %s\n", args[0], args[1])
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Write the built-in worker catalog into the registry, creating it if needed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				if !os.IsNotExist(err) {
					return fmt.Errorf("failed to load registry: %w", err)
				}
				reg = &registry.ActivityRegistry{Version: "1.0.0"}
			}

			added, updated := 0, 0
			for _, a := range assistant.Catalog() {
				if existing, err := reg.Find(a.ID); err == nil && existing.ImplementationStatus == registry.StatusVerified {
					a.ImplementationStatus = registry.StatusVerified
				}
				if reg.Upsert(a, now()) {
					updated++
				} else {
					added++
				}
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("synced registry is invalid: %w", err)
			}
			if err := reg.Save(registryPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d activities (%d added, %d updated)\n", added+updated, added, updated)
			return nil
		},
	})

	return root
}

func printActivities(w io.Writer, reg *registry.ActivityRegistry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTASK TYPE\tSTATUS\tTIMEOUT\tRETRIES")
	for _, a := range reg.Activities {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", a.ID, a.TaskType, a.ImplementationStatus, a.Timeout, a.Retries)
	}
	return tw.Flush()
}
