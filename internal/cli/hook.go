package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/patrol/internal/gitctx"
)

const (
	hookMarkerStart = "# >>> patrol pre-commit hook >>>"
	hookMarkerEnd   = "# <<< patrol pre-commit hook <<<"
	hookShebang     = "#!/bin/sh\n"
)

var (
	hookFailOn   string
	hookFormat   string
	hookTemplate string
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage git pre-commit hook",
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install patrol as a git pre-commit hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		if hookFailOn != "none" {
			if _, err := parseThreshold(hookFailOn); err != nil {
				return err
			}
		}
		path, err := preCommitPath()
		if err != nil {
			return hookError(err)
		}
		if err := installHook(path, generateHookScript(hookFailOn, hookFormat, hookTemplate)); err != nil {
			return hookError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Installed patrol pre-commit hook at %s\n", path)
		return nil
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove patrol pre-commit hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := preCommitPath()
		if err != nil {
			return hookError(err)
		}
		msg, err := uninstallHook(path)
		if err != nil {
			return hookError(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

// hookError reports a runtime failure without turning it into a usage error.
func hookError(err error) error {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	exitCode = ExitRuntimeError
	return nil
}

func parseThreshold(s string) (string, error) {
	switch t := strings.ToLower(strings.TrimSpace(s)); t {
	case "low", "medium", "high":
		return t, nil
	default:
		return "", fmt.Errorf("invalid --fail-on %q (want none, low, medium or high)", s)
	}
}

func preCommitPath() (string, error) {
	dir, err := gitctx.HooksDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pre-commit"), nil
}

// installHook writes section into the hook at path, replacing an earlier
// patrol section and keeping any other hook content.
func installHook(path, section string) error {
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading hook file: %w", err)
	}

	content := hookShebang + section
	if len(existing) > 0 {
		content = replaceHookSection(string(existing), section)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating hooks directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		return fmt.Errorf("writing hook file: %w", err)
	}
	return nil
}

// uninstallHook removes the patrol section from the hook at path. A hook left
// with nothing but a shebang is deleted. It returns a message for the user.
func uninstallHook(path string) (string, error) {
	existing, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "No pre-commit hook found.", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading hook file: %w", err)
	}

	content := removeHookSection(string(existing))
	if content == string(existing) {
		return "No patrol section in " + path, nil
	}

	switch strings.TrimSpace(content) {
	case "", "#!/bin/sh", "#!/bin/bash":
		if err := os.Remove(path); err != nil {
			return "", fmt.Errorf("removing hook file: %w", err)
		}
		return "Removed patrol pre-commit hook at " + path, nil
	}

	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		return "", fmt.Errorf("writing hook file: %w", err)
	}
	return "Removed patrol section from " + path, nil
}

func generateHookScript(failOn, format, template string) string {
	var b strings.Builder
	b.WriteString(hookMarkerStart + "\n")
	fmt.Fprintf(&b, "patrol review --staged --fail-on %s --format %s --template %s\n", failOn, format, template)
	b.WriteString("PATROL_EXIT=$?\n")
	b.WriteString("if [ $PATROL_EXIT -eq 1 ]; then\n")
	fmt.Fprintf(&b, "  echo \"patrol: issues at or above %s severity, commit blocked\"\n", failOn)
	b.WriteString("  exit 1\n")
	b.WriteString("elif [ $PATROL_EXIT -ge 2 ]; then\n")
	b.WriteString("  echo \"patrol: warning, review encountered an error (exit $PATROL_EXIT), allowing commit\"\n")
	b.WriteString("fi\n")
	b.WriteString(hookMarkerEnd + "\n")
	return b.String()
}

// sectionBounds returns the byte range of the patrol section including the
// end marker line, or ok=false when the markers are missing or out of order.
func sectionBounds(s string) (start, end int, ok bool) {
	start = strings.Index(s, hookMarkerStart)
	if start < 0 {
		return 0, 0, false
	}
	rel := strings.Index(s[start:], hookMarkerEnd)
	if rel < 0 {
		return 0, 0, false
	}
	end = start + rel + len(hookMarkerEnd)
	if end < len(s) && s[end] == '\n' {
		end++
	}
	return start, end, true
}

func replaceHookSection(existing, section string) string {
	start, end, ok := sectionBounds(existing)
	if !ok {
		if !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}
	return existing[:start] + section + existing[end:]
}

func removeHookSection(existing string) string {
	start, end, ok := sectionBounds(existing)
	if !ok {
		return existing
	}
	return existing[:start] + existing[end:]
}

func init() {
	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
	hookInstallCmd.Flags().StringVar(&hookFailOn, "fail-on", "high", "Block the commit at this severity (none, low, medium, high)")
	hookInstallCmd.Flags().StringVar(&hookFormat, "format", "text", "Output format (markdown, text, json, yaml, sarif)")
	hookInstallCmd.Flags().StringVar(&hookTemplate, "template", "general", "Review template (general, security, performance)")
}
