// cmd/planner/root.go
package main

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"assistant-workers/internal/app"
	"assistant-workers/internal/common/config"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/models"
	classifyintent "assistant-workers/internal/workers/assistant/classify-intent"
	extractrequest "assistant-workers/internal/workers/assistant/extract-request"
	planoptions "assistant-workers/internal/workers/assistant/plan-options"
)

type options struct {
	configPath string
	fixtures   string
	source     string
	location   string
	teamSize   int
	target     int
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "planner",
		Short:         "Run the team dinner assistant locally against fixture or configured sources",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (defaults to built-in fixture settings)")
	flags.StringVar(&opts.fixtures, "fixtures", "", "restaurant fixture JSON file")
	flags.StringVar(&opts.source, "source", "", "restaurant source override (fixture, places, postgres, elasticsearch, multi)")
	flags.StringVar(&opts.location, "location", "", "default location when the message names none")
	flags.IntVar(&opts.teamSize, "team-size", 0, "team size override")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(newClassifyCmd(opts))
	root.AddCommand(newExtractCmd(opts))
	root.AddCommand(newPlanCmd(opts))
	return root
}

func newClassifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <message>",
		Short: "Classify the intent of a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app.App) (interface{}, error) {
				h := a.Handlers(nil)
				return h.Classify.Execute(ctx, &classifyintent.Input{Message: strings.Join(args, " ")})
			})
		},
	}
}

func newExtractCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <message>",
		Short: "Extract location, date, party size and cuisines from a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app.App) (interface{}, error) {
				h := a.Handlers(nil)
				return h.Extract.Execute(ctx, &extractrequest.Input{
					Message:         strings.Join(args, " "),
					SessionDefaults: opts.sessionOverride(),
				})
			})
		},
	}
}

func newPlanCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <message>",
		Short: "Plan restaurant, date and time options for a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, a *app.App) (interface{}, error) {
				h := a.Handlers(nil)
				return h.Plan.Execute(ctx, &planoptions.Input{
					Message:         strings.Join(args, " "),
					SessionDefaults: opts.sessionOverride(),
					TargetCount:     opts.target,
				})
			})
		},
	}
	cmd.Flags().IntVar(&opts.target, "target", 0, "number of options to return")
	return cmd
}

func (o *options) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if o.configPath != "" {
		loaded, err := config.LoadFromFile(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Defaults()
	}
	if o.fixtures != "" {
		cfg.Assistant.FixturePath = o.fixtures
	}
	if o.source != "" {
		cfg.Assistant.RestaurantSource = o.source
	}
	return cfg, nil
}

func (o *options) sessionOverride() *models.SessionDefaults {
	if o.location == "" && o.teamSize == 0 {
		return nil
	}
	return &models.SessionDefaults{DefaultLocation: o.location, TeamSize: o.teamSize}
}

func (o *options) run(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) (interface{}, error)) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}

	log := logger.NewNoOpLogger()
	if o.verbose {
		log = logger.NewStructured("debug", "console", "stderr")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.Build(ctx, cfg, log, app.Options{Offline: true})
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := fn(ctx, a)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
