package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/outcomed/internal/execution"
)

var rulesDomain string

// rulesCmd lists the execution rules in effect
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List execution rules",
	Long: `List the built-in execution rules merged with any configured overrides.

Examples:
  outcome rules
  outcome rules --domain test`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().StringVarP(&rulesDomain, "domain", "d", "", "only list rules of this domain")
}

func runRules(cmd *cobra.Command, _ []string) error {
	if rulesDomain != "" && !execution.Domain(rulesDomain).IsValid() {
		return fmt.Errorf("unknown domain %q (valid: %v)", rulesDomain, execution.Domains())
	}

	l, err := newLocal()
	if err != nil {
		return err
	}
	defer l.close()

	rules := filterRules(l.svc.Rules(), execution.Domain(rulesDomain))
	return printReport(cmd, rules, renderRules(rules))
}

func filterRules(rules []execution.Rule, d execution.Domain) []execution.Rule {
	if d == "" {
		return rules
	}
	out := make([]execution.Rule, 0, len(rules))
	for _, r := range rules {
		if r.Domain == d {
			out = append(out, r)
		}
	}
	return out
}
