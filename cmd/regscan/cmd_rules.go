package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"regscan/internal/rules"
)

// rulesCmd groups rule-set management subcommands
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and manage the keyword rule sets",
}

// rulesInitCmd exports the built-in rule set for editing
var rulesInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the built-in curated rule set to a YAML file",
	Long: `Exports the built-in curated rule set so it can be edited and passed
back via --rules or the config file. Refuses to overwrite an existing file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "rules.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("refusing to overwrite existing file %s", path)
		}
		if err := rules.Default().Save(path); err != nil {
			return err
		}
		fmt.Printf("Wrote built-in rule set to %s\n", path)
		return nil
	},
}

// rulesShowCmd prints the active rule set
var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active rule set as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rs, err := loadRules(cfg)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(rs)
		if err != nil {
			return fmt.Errorf("failed to marshal rules: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

// rulesValidateCmd checks a rule file without running a classification
var rulesValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate a rules YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := rules.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s is valid (%d exclusion, %d strong, %d probable patterns, %d simplicity terms)\n",
			args[0], len(rs.Exclusions), len(rs.Strong), len(rs.Probable), len(rs.SimplicityTerms))
		return nil
	},
}

func init() {
	rulesShowCmd.Flags().StringVar(&flagRules, "rules", "", "rules YAML file (overrides config)")
	rulesCmd.AddCommand(rulesInitCmd)
	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesValidateCmd)
}
