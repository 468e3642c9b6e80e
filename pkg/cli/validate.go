package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/interceptd/pkg/config"
	"github.com/getmockd/interceptd/pkg/intercept"
)

var validateFile string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a rule file without serving anything",
	Long: `Validate loads a rule file, checks its syntax, and compiles every rule
(matcher patterns, globs, JSONPath conditions, when-expressions, response
templates). A proxy must refuse to start on a file this command rejects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := loadRules(validateFile)
		if err != nil {
			return err
		}

		// The load already validated; compiling through the engine also
		// exercises bodyFile reads and expression compilation.
		if _, err := intercept.New(rs.Rules); err != nil {
			return err
		}

		label := rs.Name
		if label == "" {
			label = validateFile
		}
		fmt.Printf("%s is valid (%d rules)\n", label, len(rs.Rules))
		return nil
	},
}

// loadRules loads one rule file or a glob of them.
func loadRules(path string) (*config.RuleSet, error) {
	if path == "" {
		return nil, fmt.Errorf("a rule file is required (-f)")
	}
	if hasGlobMeta(path) {
		return config.LoadFromGlob(path)
	}
	return config.LoadFromFile(path)
}

func hasGlobMeta(path string) bool {
	for _, c := range path {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "file", "f",
		envString("INTERCEPTD_RULES", ""), "Rule file path or glob (e.g. rules/**/*.yaml)")
	rootCmd.AddCommand(validateCmd)
}
