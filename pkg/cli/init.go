package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// starterRules is the scaffold rule file: an OpenAI chat-completion
// interception plus a commented pass-through example.
const starterRules = `version: "1.0"
name: example rules
rules:
  # Substitute a canned chat completion for any request to the OpenAI API.
  - name: mock-openai
    match:
      host:
        contains: api.openai.com
    action: respond
    respond:
      statusCode: 200
      headers:
        Content-Type: application/json
      body: |
        {
          "id": "chatcmpl-{{id}}",
          "object": "chat.completion",
          "created": {{timestamp}},
          "model": "gpt-4-mocked",
          "choices": [
            {
              "index": 0,
              "message": {
                "role": "assistant",
                "content": "This is a mocked response from the intercepting proxy."
              },
              "finish_reason": "stop"
            }
          ],
          "usage": {"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30}
        }

  # Anything else passes through to the upstream.
  # - name: pass-health
  #   match:
  #     path:
  #       prefix: /health
  #   action: forward
`

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter rule file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "rules.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		if err := os.WriteFile(path, []byte(starterRules), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		fmt.Printf("Wrote starter rules to %s\n", path)
		fmt.Println("Validate with: interceptd validate -f", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}
