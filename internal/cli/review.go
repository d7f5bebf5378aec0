package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/patrol/internal/config"
	"github.com/dshills/patrol/internal/logging"
	"github.com/dshills/patrol/internal/output"
	"github.com/dshills/patrol/internal/review"
	"github.com/dshills/patrol/internal/templates"
)

// Review flags
var (
	flagTemplate    string
	flagFormat      string
	flagOut         string
	flagRules       string
	flagMinSeverity string
	flagMaxIssues   int
	flagFailOn      string
	flagStaged      bool
	flagStdinName   string
	flagNoRedact    bool
	flagNoCache     bool
	flagConcurrency int
	flagVerbose     bool
	flagInclude     string
	flagExclude     string
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagTemplate, "template", "t", "", "Review template (general, security, performance)")
	cmd.Flags().StringVarP(&flagFormat, "format", "f", "", "Output format ("+strings.Join(output.Formats, ", ")+")")
	cmd.Flags().StringVarP(&flagOut, "out", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagRules, "rules", "", "Rule pack file (YAML)")
	cmd.Flags().StringVar(&flagMinSeverity, "min-severity", "", "Drop issues below this severity (low, medium, high)")
	cmd.Flags().IntVar(&flagMaxIssues, "max-issues", 0, "Maximum issues reported per file (0 = no limit)")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "Exit 1 when an issue meets this severity (none, low, medium, high)")
	cmd.Flags().BoolVar(&flagStaged, "staged", false, "Review the staged version of files in the git index")
	cmd.Flags().StringVar(&flagStdinName, "stdin-name", "", "File name reported for content read from stdin")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction in snippets (use with caution)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the result cache")
	cmd.Flags().IntVarP(&flagConcurrency, "concurrency", "j", 0, "Files analyzed in parallel")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log each scanned file to stderr")
	cmd.Flags().StringVar(&flagInclude, "include", "", "Include path globs (comma-separated)")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "Extra exclude path globs (comma-separated)")
}

// buildOverrides maps explicitly set review flags to config keys.
func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagTemplate != "" {
		m["template"] = flagTemplate
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagFailOn != "" {
		m["failOn"] = flagFailOn
	}
	if flagMinSeverity != "" {
		m["minSeverity"] = flagMinSeverity
	}
	if flagMaxIssues > 0 {
		m["maxIssues"] = strconv.Itoa(flagMaxIssues)
	}
	if flagConcurrency > 0 {
		m["concurrency"] = strconv.Itoa(flagConcurrency)
	}
	if flagRules != "" {
		m["rulesFile"] = flagRules
	}
	if flagInclude != "" {
		m["include"] = flagInclude
	}
	if flagNoCache {
		m["cache.enabled"] = "false"
	}
	if flagNoRedact {
		m["privacy.redactSecrets"] = "false"
	}
	if flagVerbose {
		m["log.level"] = "debug"
	}
	return m
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// loadRuleSet returns the built-in rules with the configured rule pack applied.
func loadRuleSet(cfg config.Config) (*review.RuleSet, error) {
	base := review.Builtin()
	if cfg.RulesFile == "" {
		return base, nil
	}
	pack, err := review.LoadRulePack(cfg.RulesFile)
	if err != nil {
		return nil, err
	}
	return pack.Apply(base)
}

// loadTemplates returns the embedded templates, overlaid by templatesDir.
func loadTemplates(cfg config.Config) (*templates.Registry, error) {
	reg, err := templates.Builtin().WithDir(cfg.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	return reg, nil
}

var reviewCmd = &cobra.Command{
	Use:   "review [path|-]...",
	Short: "Scan files for issues and render a review report",
	Long: `Scan files line by line with the configured rules and render a review
report using a checklist template. Paths may be files or directories; "-"
reads from stdin. With --staged the git index is reviewed instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !flagStaged && len(args) == 0 {
			return errors.New("no paths given (pass files, directories, \"-\" for stdin, or --staged)")
		}
		if flagStaged && len(args) > 0 {
			return errors.New("--staged does not take path arguments")
		}

		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		if flagExclude != "" {
			cfg.Exclude = append(cfg.Exclude, splitComma(flagExclude)...)
		}
		logger := logging.New(os.Stderr, cfg.Log.Format, cfg.Log.Level)
		if !cfg.Privacy.RedactSecrets {
			logger.Warn("secret redaction is disabled")
		}

		set, err := loadRuleSet(cfg)
		if err != nil {
			return err
		}
		reg, err := loadTemplates(cfg)
		if err != nil {
			return err
		}
		writer, err := output.GetWriter(cfg.Format, reg)
		if err != nil {
			return err
		}
		if tw, ok := writer.(*output.TextWriter); ok {
			tw.Color = flagOut == "" && !color.NoColor && term.IsTerminal(int(os.Stdout.Fd()))
		}

		exitCode = runReview(cmd.Context(), args, cfg, set, reg, writer, logger)
		return nil
	},
}

// runReview gathers sources, scans them and writes the reports. It returns
// the process exit code.
func runReview(ctx context.Context, args []string, cfg config.Config, set *review.RuleSet, reg *templates.Registry, writer output.Writer, logger *slog.Logger) int {
	if ctx == nil {
		ctx = context.Background()
	}

	minSev, err := review.ParseSeverity(cfg.MinSeverity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: minSeverity: %v\n", err)
		return ExitUsageError
	}

	tmpl := reg.Resolve(cfg.Template)
	if !strings.EqualFold(tmpl.Name, strings.TrimSpace(cfg.Template)) {
		logger.Warn("unknown template, using default", "template", cfg.Template, "using", tmpl.Name)
	}

	sources, skipped, err := gatherSources(args, cfg, flagStaged, flagStdinName, os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitRuntimeError
	}
	for _, s := range skipped {
		logger.Warn("skipping file", "path", s.Path, "reason", s.Reason)
	}
	logger.Debug("collected sources", "files", len(sources), "skipped", len(skipped), "rules", set.Len())

	sc, err := newScanner(cfg, set, tmpl.Name, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitRuntimeError
	}

	prog := startProgress(len(sources), cfg.Log.Level == "debug")
	reports, failures := sc.scan(ctx, sources)
	prog.stop()

	for _, f := range failures {
		logger.Warn("file not analyzed", "path", f.Path, "reason", f.Reason)
	}

	failed := false
	for _, r := range reports {
		for _, is := range r.Issues {
			if review.MeetsThreshold(is.Severity, cfg.FailOn) {
				failed = true
			}
		}
	}

	shown := make([]*review.Report, len(reports))
	for i, r := range reports {
		issues := review.Limit(review.FilterBySeverity(r.Issues, minSev), cfg.MaxIssues)
		shown[i] = review.NewReport(r.File, r.Template, issues)
	}

	if err := output.WriteReports(shown, writer, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		return ExitRuntimeError
	}

	switch {
	case len(failures) > 0 || hasExplicitFile(skipped, args):
		return ExitRuntimeError
	case failed:
		return ExitFindings
	default:
		return ExitSuccess
	}
}

func init() {
	addReviewFlags(reviewCmd)
}
