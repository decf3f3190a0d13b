package cmd

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/go-site-router/internal/server"
	"github.com/sirosfoundation/go-site-router/pkg/handler"
)

// ResolveOutput is the JSON form of a resolved request
type ResolveOutput struct {
	Method      string              `json:"method"`
	Path        string              `json:"path"`
	Status      int                 `json:"status"`
	ContentType string              `json:"content_type"`
	Strategy    string              `json:"strategy"`
	Header      map[string][]string `json:"header,omitempty"`
	Body        string              `json:"body"`
}

func newResolveCmd(opts *options) *cobra.Command {
	var (
		method string
		data   string
	)

	c := &cobra.Command{
		Use:   "resolve [path]",
		Short: "Resolve a request path offline",
		Long: `Resolve a request path against the configured site exactly as the
server would, and print the status, content type, strategy and body.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			r, err := server.NewSiteRouter(cfg.Routing, handler.NewTable(), opts.logger())
			if err != nil {
				return err
			}

			target := args[0]
			if !strings.HasPrefix(target, "/") {
				target = "/" + target
			}

			var body io.Reader
			if data != "" {
				body = strings.NewReader(data)
			}
			req, err := http.NewRequestWithContext(cmd.Context(), method, target, body)
			if err != nil {
				return fmt.Errorf("invalid request: %w", err)
			}

			res, err := r.Resolve(handler.NewExchange(req))
			if err != nil {
				return fmt.Errorf("handler failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput() {
				return printJSON(out, ResolveOutput{
					Method:      method,
					Path:        target,
					Status:      res.Status,
					ContentType: res.ContentType,
					Strategy:    string(res.Strategy),
					Header:      res.Header,
					Body:        string(res.Body),
				})
			}

			fmt.Fprintf(out, "Status:       %d %s\n", res.Status, http.StatusText(res.Status))
			fmt.Fprintf(out, "Content-Type: %s\n", res.ContentType)
			fmt.Fprintf(out, "Strategy:     %s\n", res.Strategy)
			keys := make([]string, 0, len(res.Header))
			for k := range res.Header {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "%s: %s\n", k, strings.Join(res.Header[k], ", "))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, string(res.Body))
			return nil
		},
	}

	c.Flags().StringVarP(&method, "method", "X", http.MethodGet, "Request method")
	c.Flags().StringVarP(&data, "data", "d", "", "Request body")
	return c
}
