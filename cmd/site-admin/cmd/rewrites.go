package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/go-site-router/internal/router"
	"github.com/sirosfoundation/go-site-router/internal/safepath"
)

// RewriteTrace describes what one rule does to a path
type RewriteTrace struct {
	Index       int    `json:"index"`
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
	Matches     bool   `json:"matches"`
	Target      string `json:"target,omitempty"`
	PageExists  bool   `json:"page_exists"`
	Selected    bool   `json:"selected"`
}

func newRewritesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rewrites [path]",
		Short: "List rewrite rules or trace them for a path",
		Long: `Without a path, list the rewrite rules in the order they are tried.
With a path, show for each rule whether it matches and the candidate it
yields (the path itself when the rule does not match), whether the candidate
names a page, and which rule serves the request.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			var path string
			if len(args) == 1 {
				path = args[0]
			}

			traces := make([]RewriteTrace, 0, len(cfg.Routing.Rewrites))
			selected := false
			for i, rule := range cfg.Routing.Rewrites {
				t := RewriteTrace{Index: i + 1, Pattern: rule.Pattern, Replacement: rule.Replacement}
				if path != "" {
					candidate, matched := rule.Apply(path)
					t.Matches = matched
					t.Target = candidate
					target, _ := router.SplitCandidate(candidate)
					t.PageExists = pageExists(cfg.Routing.BuildDir, target)
					if t.PageExists && !selected {
						t.Selected = true
						selected = true
					}
				}
				traces = append(traces, t)
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput() {
				return printJSON(out, traces)
			}

			if len(traces) == 0 {
				fmt.Fprintln(out, "No rewrite rules configured.")
				return nil
			}

			if path == "" {
				rows := make([][]string, len(traces))
				for i, t := range traces {
					rows[i] = []string{strconv.Itoa(t.Index), t.Pattern, t.Replacement}
				}
				printTable(out, []string{"#", "PATTERN", "REPLACEMENT"}, rows)
				return nil
			}

			rows := make([][]string, len(traces))
			for i, t := range traces {
				rows[i] = []string{strconv.Itoa(t.Index), t.Pattern, yesNo(t.Matches), t.Target, yesNo(t.PageExists), yesNo(t.Selected)}
			}
			printTable(out, []string{"#", "PATTERN", "MATCHES", "TARGET", "PAGE", "SELECTED"}, rows)
			if !selected {
				fmt.Fprintf(out, "No rule produces a page; %s is resolved as %s\n", path, router.PagePath(path))
			}
			return nil
		},
	}
}

// pageExists reports whether route has a page file under buildDir
func pageExists(buildDir, route string) bool {
	file, err := safepath.Join(buildDir, router.PagePath(route))
	if err != nil {
		return false
	}
	info, err := os.Stat(file)
	return err == nil && !info.IsDir()
}

