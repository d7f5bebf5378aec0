package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/patrol/internal/config"
	"github.com/dshills/patrol/internal/review"
)

var (
	flagRulesCategory string
	flagRulesPack     string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect detection rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the active rules grouped by category",
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := map[string]string{}
		if flagRulesPack != "" {
			overrides["rulesFile"] = flagRulesPack
		}
		cfg, err := config.Load(overrides)
		if err != nil {
			return err
		}
		set, err := loadRuleSet(cfg)
		if err != nil {
			return err
		}

		want := review.Category(strings.ToLower(strings.TrimSpace(flagRulesCategory)))
		out := cmd.OutOrStdout()
		byCat := set.ByCategory()
		for _, cat := range []review.Category{review.CategorySecurity, review.CategoryPerformance, review.CategoryGeneral} {
			if want != "" && cat != want {
				continue
			}
			rules := byCat[cat]
			if len(rules) == 0 {
				continue
			}
			fmt.Fprintf(out, "%s:\n", cat)
			for _, r := range rules {
				fmt.Fprintf(out, "  - %-24s %-6s  %s\n", r.ID, r.Severity.Label(), r.Message)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check <pack.yaml>",
	Short: "Validate a rule pack against the built-in rules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pack, err := review.LoadRulePack(args[0])
		if err != nil {
			return err
		}
		set, err := pack.Apply(review.Builtin())
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK: %d rules active (fingerprint %s)\n", set.Len(), set.Fingerprint())
		return nil
	},
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesCheckCmd)
	rulesListCmd.Flags().StringVar(&flagRulesCategory, "category", "", "Only list one category (security, performance, general)")
	rulesListCmd.Flags().StringVar(&flagRulesPack, "rules", "", "Rule pack file to apply before listing")
}
