// Package cmd contains all CLI commands for site-admin.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-site-router/pkg/config"
	"github.com/sirosfoundation/go-site-router/pkg/logging"
)

// options holds the global flags
type options struct {
	configFile string
	output     string
	verbose    bool
}

// loadConfig loads the site configuration named by --config
func (o *options) loadConfig() (*config.Config, error) {
	return config.Load(o.configFile)
}

// logger returns a logger for commands that build a router
func (o *options) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	logger, err := logging.NewLogger(logging.Config{Level: "debug", Format: "text"})
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func (o *options) jsonOutput() bool {
	return o.output == "json"
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "site-admin",
		Short: "CLI tool for inspecting a site served by the site router",
		Long: `site-admin resolves requests offline against a site configuration,
without starting the HTTP server.

It provides commands for:
  - Resolving a request path exactly as the server would
  - Listing rewrite rules and tracing which rule rewrites a path
  - Listing the SSR placeholders of a page and whether each one resolves
  - Printing the effective configuration

Examples:
  # Resolve a page
  site-admin resolve /reports

  # Call an API endpoint with another method
  site-admin resolve /api/users --method POST --data '{"name":"ana"}'

  # Trace the rewrite rules for a path
  site-admin rewrites /old

Environment Variables:
  SITE_ADMIN_CONFIG  Configuration file (default: phpconfig.json)
  SITE_*             Configuration overrides, as for the server`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", getEnvOrDefault("SITE_ADMIN_CONFIG", "phpconfig.json"), "Configuration file (YAML or JSON)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "Output format: table, json")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log router activity to stderr")

	root.AddCommand(
		newResolveCmd(opts),
		newRewritesCmd(opts),
		newPlaceholdersCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printTable prints data in a simple table format
func printTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i, h := range headers {
		fmt.Fprintf(w, "%-*s  ", widths[i], h)
	}
	fmt.Fprintln(w)

	for i := range headers {
		fmt.Fprintf(w, "%s  ", strings.Repeat("-", widths[i]))
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(w, "%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(w)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
