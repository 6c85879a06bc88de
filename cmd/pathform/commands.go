package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/pathform/pkg/config"
	"github.com/arthur-debert/pathform/pkg/template"
)

var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pathform version %s\n", version)
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse PATH",
	Short: "Parse a path against the registered templates",
	Long: `Parse tries the path against every registered template and prints the
first template that matches along with its extracted field values.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newResolver()
		if err != nil {
			return err
		}
		name, fields, err := r.ParsePath(args[0], rootOptions()...)
		if err != nil {
			return err
		}
		fmt.Println(titleStyle.Render(name))
		printFields(fields)
		return nil
	},
}

var formatCmd = &cobra.Command{
	Use:   "format TEMPLATE [field=value...]",
	Short: "Format a template into a concrete path",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newResolver()
		if err != nil {
			return err
		}
		fields, err := parseFieldArgs(args[1:])
		if err != nil {
			return err
		}
		path, err := r.FormatPath(args[0], fields, rootOptions()...)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var useDefaults bool

var pathsCmd = &cobra.Command{
	Use:   "paths TEMPLATE [field=value...]",
	Short: "Discover existing paths matching a template",
	Long: `Paths formats the template with the given fields, using wildcards for
any field left unbound, and lists the paths on disk that match. Hidden
files and folders are never matched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newResolver()
		if err != nil {
			return err
		}
		fields, err := parseFieldArgs(args[1:])
		if err != nil {
			return err
		}
		matches, err := r.Paths(args[0], fields, useDefaults, rootOptions()...)
		if err != nil {
			return err
		}
		for _, m := range matches {
			fmt.Println(m.Path)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newResolver()
		if err != nil {
			return err
		}
		store := r.Store()
		for _, name := range store.Names() {
			def, err := store.Get(name)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s\n", titleStyle.Render(name), def.Pattern())
		}
		return nil
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print a sample definitions file",
	RunE: func(cmd *cobra.Command, args []string) error {
		sample, err := config.SampleDefinitions()
		if err != nil {
			return err
		}
		fmt.Print(sample)
		return nil
	},
}

func init() {
	pathsCmd.Flags().BoolVar(&useDefaults, "use-defaults", false,
		"Use token defaults instead of wildcards for missing fields")
}

// parseFieldArgs converts field=value arguments into a fields mapping.
// Values stay strings; tokens coerce them to their declared type.
func parseFieldArgs(args []string) (template.Fields, error) {
	fields := make(template.Fields, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid field argument %q, expected field=value", arg)
		}
		fields[k] = v
	}
	return fields, nil
}

func printFields(fields template.Fields) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s = %v\n", fieldStyle.Render(name), fields[name])
	}
}
