package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/pathform/pkg/config"
	"github.com/arthur-debert/pathform/pkg/logging"
	"github.com/arthur-debert/pathform/pkg/resolver"
	"github.com/arthur-debert/pathform/pkg/rootstate"
	"github.com/arthur-debert/pathform/pkg/template"
)

var (
	verbosity   int
	definitions string
	rootPath    string
	noRoot      bool

	rootCmd = &cobra.Command{
		Use:   "pathform",
		Short: "A filesystem path template resolver",
		Long: `pathform resolves reusable path templates: parse existing paths into
their field values, format fields into concrete paths, and discover the
paths on disk that match a template with unbound fields.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVarP(&definitions, "definitions", "d", "",
		"Definitions file (default $"+config.EnvDefinitions+")")
	rootCmd.PersistentFlags().StringVar(&rootPath, "root", "",
		"Override the root path for this invocation")
	rootCmd.PersistentFlags().BoolVar(&noRoot, "no-root", false,
		"Suppress the root prefix, including any configured default")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(sampleCmd)
}

// newResolver loads the definitions file and builds a ready resolver
func newResolver() (*resolver.Resolver, error) {
	var (
		defs *config.Definitions
		err  error
	)
	if definitions != "" {
		defs, err = config.Load(definitions)
	} else {
		defs, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}

	if defs.DefaultRoot != "" {
		rootstate.SetDefaultRoot(defs.DefaultRoot)
	}

	r := resolver.New()
	if err := defs.Apply(r.Store()); err != nil {
		return nil, err
	}
	return r, nil
}

// rootOptions converts the --root/--no-root flags into per-call options
func rootOptions() []template.RootOption {
	if noRoot {
		return []template.RootOption{template.WithNoRoot()}
	}
	if rootPath != "" {
		return []template.RootOption{template.WithRoot(rootPath)}
	}
	return nil
}
