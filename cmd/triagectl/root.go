package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Maanisha27/MediTriage/internal/dataset"
	"github.com/Maanisha27/MediTriage/pkg/logger"
)

type rootOptions struct {
	datasetPath string
	logLevel    string
	output      string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "triagectl",
		Short: "Offline patient triage and specialist routing",
		Long: "triagectl ranks patients and routes them to specialists using the same\n" +
			"engines as the API server, without any external stores.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "text" && opts.output != "json" {
				return fmt.Errorf("invalid output format: %s (must be text or json)", opts.output)
			}
			return logger.Init(opts.logLevel, "console", "stderr")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.datasetPath, "dataset", "d", "", "dataset file (default: built-in reference pool)")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.output, "output", "o", "text", "output format (text, json)")

	cmd.AddCommand(newTriageCommand(opts))
	cmd.AddCommand(newRouteCommand(opts))

	return cmd
}

func (o *rootOptions) bundle() (*dataset.Bundle, error) {
	if o.datasetPath == "" {
		return dataset.Reference(), nil
	}
	return dataset.Load(o.datasetPath)
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
