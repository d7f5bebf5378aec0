package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/patrol/internal/config"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect review checklist templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		reg, err := loadTemplates(cfg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, name := range reg.Names() {
			t, _ := reg.Get(name)
			fmt.Fprintf(out, "%-12s %-32s %d items\n", t.Name, t.Title, t.ItemCount())
		}
		return nil
	},
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a template's checklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		reg, err := loadTemplates(cfg)
		if err != nil {
			return err
		}
		t, ok := reg.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown template %q (available: %s)", args[0], strings.Join(reg.Names(), ", "))
		}

		out := cmd.OutOrStdout()
		if t.Title != "" {
			fmt.Fprintf(out, "# %s\n", t.Title)
		}
		for _, sec := range t.Sections {
			if len(sec.Items) == 0 {
				continue
			}
			heading := sec.Heading
			if heading == "" {
				heading = "Checklist"
			}
			fmt.Fprintf(out, "\n## %s\n\n", heading)
			for _, item := range sec.Items {
				fmt.Fprintf(out, "- [ ] %s\n", item)
			}
		}
		return nil
	},
}

func init() {
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)
}
