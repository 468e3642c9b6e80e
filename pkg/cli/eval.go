package cli

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getmockd/interceptd/pkg/intercept"
)

var (
	evalFile    string
	evalMethod  string
	evalHost    string
	evalPath    string
	evalBody    string
	evalHeaders []string
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Dry-run a request against a rule file",
	Long: `Eval builds a request descriptor from the flags, evaluates it against
the rule file, and prints the outcome: either "forward" or the synthesized
status, headers, and body.`,
	Example: `  interceptd eval -f rules.yaml --host api.openai.com --path /v1/chat/completions \
      -X POST -H "Content-Type: application/json" -d '{"model":"gpt-4"}'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := loadRules(evalFile)
		if err != nil {
			return err
		}

		engine, err := intercept.New(rs.Rules, intercept.WithLogger(newLogger()))
		if err != nil {
			return err
		}

		desc, err := buildDescriptor()
		if err != nil {
			return err
		}

		out := engine.Evaluate(cmd.Context(), desc)
		if out.Forwarded() {
			fmt.Println("forward")
			return nil
		}

		resp := out.Response()
		fmt.Printf("respond %d\n", resp.StatusCode)

		names := make([]string, 0, len(resp.Headers))
		for name := range resp.Headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			for _, v := range resp.Headers[name] {
				fmt.Printf("%s: %s\n", name, v)
			}
		}
		if resp.Delay > 0 {
			fmt.Printf("delay: %s\n", resp.Delay)
		}
		if len(resp.Body) > 0 {
			fmt.Printf("\n%s\n", resp.Body)
		}
		return nil
	},
}

func buildDescriptor() (*intercept.RequestDescriptor, error) {
	if evalHost == "" {
		return nil, fmt.Errorf("a target host is required (--host)")
	}

	path := evalPath
	if path == "" {
		path = "/"
	}

	u, err := url.Parse("https://" + evalHost + path)
	if err != nil {
		return nil, fmt.Errorf("invalid host/path: %w", err)
	}

	headers := http.Header{}
	for _, h := range evalHeaders {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("invalid header %q, expected name:value", h)
		}
		headers.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	return &intercept.RequestDescriptor{
		Method:  strings.ToUpper(evalMethod),
		Host:    u.Hostname(),
		Path:    u.Path,
		URL:     u.String(),
		Headers: headers,
		Query:   u.Query(),
		Body:    []byte(evalBody),
	}, nil
}

func init() {
	evalCmd.Flags().StringVarP(&evalFile, "file", "f",
		envString("INTERCEPTD_RULES", ""), "Rule file path or glob")
	evalCmd.Flags().StringVarP(&evalMethod, "request", "X", "GET", "HTTP method")
	evalCmd.Flags().StringVar(&evalHost, "host", "", "Target host")
	evalCmd.Flags().StringVar(&evalPath, "path", "/", "Request path (may include a query string)")
	evalCmd.Flags().StringVarP(&evalBody, "data", "d", "", "Request body")
	evalCmd.Flags().StringArrayVarP(&evalHeaders, "header", "H", nil, "Request header (name:value, repeatable)")
	rootCmd.AddCommand(evalCmd)
}
