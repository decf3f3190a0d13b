package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/go-site-router/internal/placeholder"
	"github.com/sirosfoundation/go-site-router/internal/router"
	"github.com/sirosfoundation/go-site-router/internal/safepath"
	"github.com/sirosfoundation/go-site-router/internal/script"
	"github.com/sirosfoundation/go-site-router/pkg/handler"
)

// PlaceholderStatus tells whether one SSR variable of a page has a handler
type PlaceholderStatus struct {
	Name     string `json:"name"`
	Resolves bool   `json:"resolves"`
	Error    string `json:"error,omitempty"`
}

func newPlaceholdersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "placeholders [route]",
		Short: "List the SSR placeholders of a page",
		Long: `List the {%name%} placeholders of the page serving a route and whether
a handler exists for each SSR variable. Handlers are loaded but not run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			file, err := safepath.Join(cfg.Routing.BuildDir, router.PagePath(args[0]))
			if err != nil {
				return fmt.Errorf("invalid route %q: %w", args[0], err)
			}
			src, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read page: %w", err)
			}

			loader := script.NewLoader(cfg.Routing.SSRDir, opts.logger())
			names := placeholder.Names(string(src))
			statuses := make([]PlaceholderStatus, 0, len(names))
			for _, name := range names {
				s := PlaceholderStatus{Name: name}
				_, err := loader.LookupSSR(name)
				switch {
				case err == nil:
					s.Resolves = true
				case !errors.Is(err, handler.ErrNotFound):
					s.Error = err.Error()
				}
				statuses = append(statuses, s)
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput() {
				return printJSON(out, statuses)
			}

			if len(statuses) == 0 {
				fmt.Fprintf(out, "No placeholders in %s.\n", file)
				return nil
			}

			rows := make([][]string, len(statuses))
			for i, s := range statuses {
				rows[i] = []string{s.Name, yesNo(s.Resolves), s.Error}
			}
			printTable(out, []string{"NAME", "RESOLVES", "ERROR"}, rows)
			return nil
		},
	}
}
