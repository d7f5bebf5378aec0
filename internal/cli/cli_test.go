package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/patrol/internal/config"
	"github.com/dshills/patrol/internal/gitctx"
	"github.com/dshills/patrol/internal/logging"
	"github.com/dshills/patrol/internal/output"
	"github.com/dshills/patrol/internal/review"
	"github.com/dshills/patrol/internal/templates"
)

const samplePython = `password = "hunter2"
try:
    run()
except:
    pass
`

// resetFlags resets all package-level flag variables to their zero values.
func resetFlags() {
	flagTemplate = ""
	flagFormat = ""
	flagOut = ""
	flagRules = ""
	flagMinSeverity = ""
	flagMaxIssues = 0
	flagFailOn = ""
	flagStaged = false
	flagStdinName = ""
	flagNoRedact = false
	flagNoCache = false
	flagConcurrency = 0
	flagVerbose = false
	flagInclude = ""
	flagExclude = ""
	flagRulesCategory = ""
	flagRulesPack = ""
	configInitForce = false
	cacheShowJSON = false
}

// isolate points config and cache lookups at a temp dir and resets state.
func isolate(t *testing.T) string {
	t.Helper()
	resetFlags()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("XDG_CACHE_HOME", tmpDir)
	for _, k := range []string{"PATROL_TEMPLATE", "PATROL_FORMAT", "PATROL_FAIL_ON", "PATROL_MIN_SEVERITY", "PATROL_CACHE"} {
		t.Setenv(k, "")
	}
	saved := exitCode
	t.Cleanup(func() { exitCode = saved })
	exitCode = ExitSuccess
	return tmpDir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

type jsonDoc struct {
	Tool    string           `json:"tool"`
	Reports []*review.Report `json:"reports"`
}

// runReviewJSON runs the review command with JSON output to a file and
// decodes the result.
func runReviewJSON(t *testing.T, args ...string) jsonDoc {
	t.Helper()
	out := filepath.Join(t.TempDir(), "report.json")
	reviewCmd.SetArgs(append(args, "--format", "json", "--out", out))
	if err := reviewCmd.Execute(); err != nil {
		t.Fatalf("review returned error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	var doc jsonDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("report is not valid JSON: %v\n%s", err, data)
	}
	return doc
}

// --- splitComma tests ---

func TestSplitComma(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", nil},
		{"single value", "foo", []string{"foo"}},
		{"multiple values", "a,b,c", []string{"a", "b", "c"}},
		{"whitespace trimmed", " a , b , c ", []string{"a", "b", "c"}},
		{"empty parts skipped", "a,,b", []string{"a", "b"}},
		{"all empty", ",,,", nil},
		{"glob patterns", "*.go,src/**/*.ts", []string{"*.go", "src/**/*.ts"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitComma(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitComma(%q) = %v (len %d), want %v (len %d)",
					tt.input, got, len(got), tt.want, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitComma(%q)[%d] = %q, want %q",
						tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// --- buildOverrides tests ---

func TestBuildOverrides_NoFlags(t *testing.T) {
	resetFlags()
	m := buildOverrides()
	if len(m) != 0 {
		t.Errorf("buildOverrides() with no flags = %v, want empty map", m)
	}
}

func TestBuildOverrides_AllFlags(t *testing.T) {
	resetFlags()
	flagTemplate = "security"
	flagFormat = "json"
	flagFailOn = "high"
	flagMinSeverity = "medium"
	flagMaxIssues = 10
	flagConcurrency = 8
	flagRules = "rules.yaml"
	flagInclude = "*.py"
	flagNoCache = true
	flagNoRedact = true
	flagVerbose = true

	m := buildOverrides()

	expected := map[string]string{
		"template":              "security",
		"format":                "json",
		"failOn":                "high",
		"minSeverity":           "medium",
		"maxIssues":             "10",
		"concurrency":           "8",
		"rulesFile":             "rules.yaml",
		"include":               "*.py",
		"cache.enabled":         "false",
		"privacy.redactSecrets": "false",
		"log.level":             "debug",
	}

	if len(m) != len(expected) {
		t.Fatalf("buildOverrides() returned %d entries, want %d", len(m), len(expected))
	}
	for k, v := range expected {
		if m[k] != v {
			t.Errorf("buildOverrides()[%q] = %q, want %q", k, m[k], v)
		}
	}

	// Every override key must be accepted by config.SetField.
	cfg := config.Default()
	for k, v := range m {
		if err := config.SetField(&cfg, k, v); err != nil {
			t.Errorf("SetField(%q): %v", k, err)
		}
	}
}

// --- version command tests ---

func TestVersionCmd_Execute(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.SetArgs([]string{})
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	if err := versionCmd.Execute(); err != nil {
		t.Fatalf("version command returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "patrol version "+version) {
		t.Errorf("version output = %q", buf.String())
	}
}

// --- rules command tests ---

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs(args)
	t.Cleanup(func() { cmd.SetOut(nil) })
	err := cmd.Execute()
	return buf.String(), err
}

func TestRulesList(t *testing.T) {
	isolate(t)

	out, err := execute(t, rulesCmd, "list")
	if err != nil {
		t.Fatalf("rules list returned error: %v", err)
	}
	for _, want := range []string{"security:", "performance:", "general:", review.RuleHardcodedCredentials, review.RuleCommentedOutCode} {
		if !strings.Contains(out, want) {
			t.Errorf("rules list output missing %q:\n%s", want, out)
		}
	}
}

func TestRulesList_Category(t *testing.T) {
	isolate(t)

	out, err := execute(t, rulesCmd, "list", "--category", "performance")
	if err != nil {
		t.Fatalf("rules list returned error: %v", err)
	}
	if !strings.Contains(out, review.RuleNestedLoop) {
		t.Errorf("performance listing missing %s:\n%s", review.RuleNestedLoop, out)
	}
	if strings.Contains(out, review.RuleHardcodedCredentials) {
		t.Errorf("performance listing should not include security rules:\n%s", out)
	}
}

func TestRulesCheck(t *testing.T) {
	dir := isolate(t)
	good := writeFile(t, dir, "good.yaml", `rules:
  - id: todo-marker
    category: general
    severity: low
    message: TODO left in code
    substring: TODO
disable:
  - debug-print
`)
	bad := writeFile(t, dir, "bad.yaml", `rules:
  - id: broken
    severity: high
    message: broken
    regex: "("
`)

	out, err := execute(t, rulesCmd, "check", good)
	if err != nil {
		t.Fatalf("rules check on a valid pack returned error: %v", err)
	}
	if !strings.Contains(out, "OK: 7 rules active") {
		t.Errorf("rules check output = %q", out)
	}

	_, err = execute(t, rulesCmd, "check", bad)
	if !review.IsConfigError(err) {
		t.Errorf("rules check on a bad pack = %v, want ConfigError", err)
	}
}

// --- templates command tests ---

func TestTemplatesList(t *testing.T) {
	isolate(t)

	out, err := execute(t, templatesCmd, "list")
	if err != nil {
		t.Fatalf("templates list returned error: %v", err)
	}
	for _, name := range []string{"general", "security", "performance"} {
		if !strings.Contains(out, name) {
			t.Errorf("templates list missing %q:\n%s", name, out)
		}
	}
}

func TestTemplatesShow(t *testing.T) {
	isolate(t)

	out, err := execute(t, templatesCmd, "show", "security")
	if err != nil {
		t.Fatalf("templates show returned error: %v", err)
	}
	if !strings.HasPrefix(out, "# Security Code Review\n") {
		t.Errorf("templates show output should start with the title:\n%s", out)
	}
	if !strings.Contains(out, "- [ ] ") {
		t.Errorf("templates show output has no checklist items:\n%s", out)
	}

	if _, err := execute(t, templatesCmd, "show", "nope"); err == nil {
		t.Error("templates show with unknown name should return error")
	}
}

// --- config command tests ---

func TestConfigInit_CreatesFile(t *testing.T) {
	tmpDir := isolate(t)

	if _, err := execute(t, configCmd, "init"); err != nil {
		t.Fatalf("config init returned error: %v", err)
	}

	configPath := filepath.Join(tmpDir, "patrol", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("config init did not create config.yaml: %v", err)
	}
	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("config file is not valid YAML: %v", err)
	}
	if cfg.Template != "general" {
		t.Errorf("template = %q, want general", cfg.Template)
	}
}

func TestConfigInit_AlreadyExists(t *testing.T) {
	tmpDir := isolate(t)
	path := writeFile(t, tmpDir, filepath.Join("patrol", "config.yaml"), "template: security\n")

	if _, err := execute(t, configCmd, "init"); err != nil {
		t.Fatalf("config init with existing file returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "template: security\n" {
		t.Errorf("config init overwrote existing file: %q", data)
	}
}

func TestConfigInit_Force(t *testing.T) {
	tmpDir := isolate(t)
	path := writeFile(t, tmpDir, filepath.Join("patrol", "config.yaml"), "template: security\n")

	if _, err := execute(t, configCmd, "init", "--force"); err != nil {
		t.Fatalf("config init --force returned error: %v", err)
	}
	cfg, err := config.LoadFile()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Template != "general" {
		t.Errorf("template = %q after --force, want general (file %s)", cfg.Template, path)
	}
}

func TestConfigGetAndPath(t *testing.T) {
	tmpDir := isolate(t)
	t.Setenv("PATROL_MAX_ISSUES", "3")

	out, err := execute(t, configCmd, "get", "maxIssues")
	if err != nil {
		t.Fatalf("config get returned error: %v", err)
	}
	if strings.TrimSpace(out) != "3" {
		t.Errorf("config get maxIssues = %q, want 3", out)
	}
	if _, err := execute(t, configCmd, "get", "nope"); err == nil {
		t.Error("config get with unknown key should fail")
	}

	out, err = execute(t, configCmd, "path")
	if err != nil {
		t.Fatalf("config path returned error: %v", err)
	}
	if want := filepath.Join(tmpDir, "patrol", "config.yaml"); strings.TrimSpace(out) != want {
		t.Errorf("config path = %q, want %q", out, want)
	}
}

func TestConfigSet_UpdatesFile(t *testing.T) {
	isolate(t)

	if _, err := execute(t, configCmd, "set", "template", "performance"); err != nil {
		t.Fatalf("config set returned error: %v", err)
	}
	cfg, err := config.LoadFile()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Template != "performance" {
		t.Errorf("template = %q, want performance", cfg.Template)
	}
}

func TestConfigSet_Errors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown key", []string{"set", "unknownKey", "value"}},
		{"invalid value", []string{"set", "format", "html"}},
		{"not an integer", []string{"set", "maxIssues", "many"}},
		{"missing value", []string{"set", "template"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, configCmd, tt.args...); err == nil {
				t.Errorf("config %v should return error", tt.args)
			}
		})
	}
}

func TestConfigShow(t *testing.T) {
	isolate(t)
	t.Setenv("PATROL_TEMPLATE", "security")

	out, err := execute(t, configCmd, "show")
	if err != nil {
		t.Fatalf("config show returned error: %v", err)
	}
	if !strings.Contains(out, "template: security") {
		t.Errorf("config show should reflect env overrides:\n%s", out)
	}
}

// --- cache command tests ---

func TestCacheShow(t *testing.T) {
	isolate(t)

	out, err := execute(t, cacheCmd, "show")
	if err != nil {
		t.Fatalf("cache show returned error: %v", err)
	}
	if !strings.Contains(out, "entries: 0 (0 expired)") {
		t.Errorf("cache show output = %q", out)
	}

	out, err = execute(t, cacheCmd, "show", "--json")
	if err != nil {
		t.Fatalf("cache show --json returned error: %v", err)
	}
	if !strings.Contains(out, `"entries": 0`) {
		t.Errorf("cache show --json output = %q", out)
	}
}

func TestCacheShow_Disabled(t *testing.T) {
	isolate(t)
	t.Setenv("PATROL_CACHE", "false")

	out, err := execute(t, cacheCmd, "show")
	if err != nil {
		t.Fatalf("cache show returned error: %v", err)
	}
	if !strings.Contains(out, "Cache is disabled.") {
		t.Errorf("cache show output = %q", out)
	}
}

func TestCacheClear(t *testing.T) {
	tmpDir := isolate(t)
	cacheDir := filepath.Join(tmpDir, "patrol")
	writeFile(t, tmpDir, filepath.Join("patrol", "abc123.json"), `{"key":"test"}`)

	out, err := execute(t, cacheCmd, "clear")
	if err != nil {
		t.Fatalf("cache clear returned error: %v", err)
	}
	if !strings.Contains(out, "1 entries removed") {
		t.Errorf("cache clear output = %q", out)
	}

	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		t.Fatalf("cannot read cache dir: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			t.Errorf("cache clear did not remove %s", e.Name())
		}
	}
}

// --- review command tests ---

func TestReview_JSON(t *testing.T) {
	dir := isolate(t)
	src := writeFile(t, dir, "app.py", samplePython)

	doc := runReviewJSON(t, src)

	if exitCode != ExitSuccess {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitSuccess)
	}
	if doc.Tool != review.Tool {
		t.Errorf("tool = %q", doc.Tool)
	}
	if len(doc.Reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(doc.Reports))
	}
	r := doc.Reports[0]
	if r.Template != "general" {
		t.Errorf("template = %q, want general", r.Template)
	}
	if len(r.Issues) != 2 {
		t.Fatalf("got %d issues, want 2: %+v", len(r.Issues), r.Issues)
	}
	if r.Issues[0].RuleID != review.RuleHardcodedCredentials || r.Issues[0].Line != 1 {
		t.Errorf("first issue = %+v", r.Issues[0])
	}
	if r.Issues[1].RuleID != review.RuleBareExcept || r.Issues[1].Line != 4 {
		t.Errorf("second issue = %+v", r.Issues[1])
	}
	if strings.Contains(r.Issues[0].Snippet, "hunter2") {
		t.Errorf("snippet not redacted: %q", r.Issues[0].Snippet)
	}
}

func TestReview_NoRedact(t *testing.T) {
	dir := isolate(t)
	src := writeFile(t, dir, "app.py", samplePython)

	doc := runReviewJSON(t, src, "--no-redact", "--no-cache")

	if got := doc.Reports[0].Issues[0].Snippet; got != `password = "hunter2"` {
		t.Errorf("snippet = %q, want it unredacted", got)
	}
}

func TestReview_FailOn(t *testing.T) {
	dir := isolate(t)
	src := writeFile(t, dir, "app.py", samplePython)

	runReviewJSON(t, src, "--fail-on", "high")
	if exitCode != ExitFindings {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitFindings)
	}
}

func TestReview_FailOnNotMet(t *testing.T) {
	dir := isolate(t)
	src := writeFile(t, dir, "loop.py", "for i in range(3):\n    pass\n")

	runReviewJSON(t, src, "--fail-on", "high")
	if exitCode != ExitSuccess {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitSuccess)
	}
}

func TestReview_MinSeverityAndMaxIssues(t *testing.T) {
	dir := isolate(t)
	src := writeFile(t, dir, "app.py", samplePython)

	doc := runReviewJSON(t, src, "--min-severity", "high")
	if n := len(doc.Reports[0].Issues); n != 1 {
		t.Errorf("min-severity high kept %d issues, want 1", n)
	}

	resetFlags()
	doc = runReviewJSON(t, src, "--max-issues", "1")
	issues := doc.Reports[0].Issues
	if len(issues) != 1 || issues[0].Line != 1 {
		t.Errorf("max-issues 1 kept %+v, want the first issue only", issues)
	}
	if doc.Reports[0].Summary.Counts.Total() != 1 {
		t.Errorf("summary should count the reported issues, got %+v", doc.Reports[0].Summary)
	}
}

func TestReview_Directory(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "src/b.py", "print(x)\n")
	writeFile(t, dir, "src/a.py", samplePython)
	writeFile(t, dir, "src/vendor/skip.py", samplePython)
	writeFile(t, dir, "src/logo.png", "\x89PNG\x00\x00")

	doc := runReviewJSON(t, filepath.Join(dir, "src"), "--exclude", "vendor/**")

	if exitCode != ExitSuccess {
		t.Errorf("binary files found by a walk should not fail the run, exitCode = %d", exitCode)
	}
	if len(doc.Reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(doc.Reports))
	}
	if !strings.HasSuffix(doc.Reports[0].File, "src/a.py") || !strings.HasSuffix(doc.Reports[1].File, "src/b.py") {
		t.Errorf("reports out of order: %s, %s", doc.Reports[0].File, doc.Reports[1].File)
	}
}

func TestReview_ExplicitBinaryFile(t *testing.T) {
	dir := isolate(t)
	bin := writeFile(t, dir, "blob.bin", "abc\x00def")

	runReviewJSON(t, bin)
	if exitCode != ExitRuntimeError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitRuntimeError)
	}
}

func TestReview_InvalidUTF8(t *testing.T) {
	dir := isolate(t)
	src := writeFile(t, dir, "latin1.py", "name = \"caf\xe9\"\n")

	doc := runReviewJSON(t, src)
	if exitCode != ExitRuntimeError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitRuntimeError)
	}
	if len(doc.Reports) != 0 {
		t.Errorf("undecodable file should not produce a report, got %d", len(doc.Reports))
	}
}

func TestReview_UsageErrors(t *testing.T) {
	dir := isolate(t)
	src := writeFile(t, dir, "app.py", samplePython)
	badPack := writeFile(t, dir, "bad.yaml", "rules:\n  - id: x\n")

	tests := []struct {
		name string
		args []string
	}{
		{"no paths", []string{}},
		{"unknown format", []string{src, "--format", "html"}},
		{"bad rule pack", []string{src, "--rules", badPack}},
		{"staged with paths", []string{src, "--staged"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			reviewCmd.SetArgs(tt.args)
			if err := reviewCmd.Execute(); err == nil {
				t.Errorf("review %v should return error", tt.args)
			}
		})
	}
}

func TestReview_UnknownTemplateFallsBack(t *testing.T) {
	dir := isolate(t)
	src := writeFile(t, dir, "app.py", samplePython)
	out := filepath.Join(dir, "report.md")

	reviewCmd.SetArgs([]string{src, "--template", "nonexistent", "--out", out})
	if err := reviewCmd.Execute(); err != nil {
		t.Fatalf("review returned error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	md := string(data)
	if !strings.Contains(md, "Using the general template.") {
		t.Errorf("markdown should fall back to the general template:\n%s", md)
	}
	if !strings.Contains(md, "- [HIGH] Line 1: ") {
		t.Errorf("markdown missing issue line:\n%s", md)
	}
}

func TestRunReview_InvalidMinSeverity(t *testing.T) {
	dir := isolate(t)
	src := writeFile(t, dir, "app.py", samplePython)
	out := filepath.Join(dir, "report.json")
	flagOut = out

	cfg := config.Default()
	cfg.MinSeverity = "urgent"
	code := runReview(context.Background(), []string{src}, cfg, review.Builtin(), templates.Builtin(), &output.JSONWriter{}, logging.Discard())
	if code != ExitUsageError {
		t.Errorf("exit code = %d, want %d", code, ExitUsageError)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("no report should be written when minSeverity is invalid")
	}
}

// --- source gathering and scanning ---

func TestGatherSources_Stdin(t *testing.T) {
	cfg := config.Default()

	sources, skipped, err := gatherSources([]string{"-"}, cfg, false, "snippet.py", strings.NewReader("print(1)\n"))
	if err != nil {
		t.Fatalf("gatherSources: %v", err)
	}
	if len(skipped) != 0 {
		t.Errorf("skipped = %v", skipped)
	}
	if len(sources) != 1 || sources[0].Name != "snippet.py" || string(sources[0].Content) != "print(1)\n" {
		t.Errorf("sources = %+v", sources)
	}

	sources, _, err = gatherSources([]string{"-"}, cfg, false, "", strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if sources[0].Name != defaultStdinName {
		t.Errorf("default stdin name = %q, want %q", sources[0].Name, defaultStdinName)
	}
}

func TestGatherSources_Staged(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	git := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	git("init", "-q")
	writeFile(t, dir, "app.py", samplePython)
	writeFile(t, dir, "logo.png", "\x89PNG\x00")
	git("add", "app.py", "logo.png")
	writeFile(t, dir, "app.py", "x = 1\n")

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(origDir) })

	sources, skipped, err := gatherSources(nil, config.Default(), true, "", nil)
	if err != nil {
		t.Fatalf("gatherSources: %v", err)
	}
	if len(sources) != 1 || sources[0].Name != "app.py" {
		t.Fatalf("sources = %+v, want app.py only", sources)
	}
	if string(sources[0].Content) != samplePython {
		t.Errorf("staged content = %q, want the index version", sources[0].Content)
	}
	if len(skipped) != 1 || skipped[0].Path != "logo.png" || skipped[0].Reason != "binary" {
		t.Errorf("skipped = %+v", skipped)
	}
}

func TestHasExplicitFile(t *testing.T) {
	skipped := []gitctx.Skipped{{Path: "dir/logo.png", Reason: "binary"}}

	if hasExplicitFile(skipped, []string{"dir"}) {
		t.Error("a file skipped during a walk is not explicit")
	}
	if !hasExplicitFile(skipped, []string{"./dir/logo.png"}) {
		t.Error("a named file should count as explicit")
	}
	if hasExplicitFile(nil, []string{"x"}) {
		t.Error("no skipped files means nothing explicit")
	}
}

func TestScanner_UsesCache(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()
	cfg.Privacy.RedactSecrets = false

	sc, err := newScanner(cfg, review.Builtin(), "general", logging.Discard())
	if err != nil {
		t.Fatalf("newScanner: %v", err)
	}
	sources := []review.Source{{Name: "app.py", Content: []byte(samplePython)}}

	first, failures := sc.scan(t.Context(), sources)
	if len(failures) != 0 {
		t.Fatalf("failures = %v", failures)
	}
	stats, err := sc.cache.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 1 {
		t.Fatalf("cache entries = %d, want 1", stats.Entries)
	}

	second, _ := sc.scan(t.Context(), sources)
	if len(second) != 1 || len(second[0].Issues) != len(first[0].Issues) {
		t.Fatalf("cached scan differs: %+v vs %+v", second, first)
	}
	for i := range first[0].Issues {
		if first[0].Issues[i] != second[0].Issues[i] {
			t.Errorf("issue %d differs: %+v vs %+v", i, first[0].Issues[i], second[0].Issues[i])
		}
	}
}

func TestScanner_RedactsCachedIssuesByPath(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()

	sc, err := newScanner(cfg, review.Builtin(), "general", logging.Discard())
	if err != nil {
		t.Fatalf("newScanner: %v", err)
	}
	content := []byte(samplePython)

	// Same content under two names shares one cache entry; only the
	// path-matched file loses its snippets.
	reports, _ := sc.scan(t.Context(), []review.Source{
		{Name: "app.py", Content: content},
		{Name: "config/.env", Content: content},
	})
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}
	if got := reports[1].Issues[1].Snippet; !strings.Contains(got, "redacted by path policy") {
		t.Errorf(".env snippet = %q, want path redaction", got)
	}
	if got := reports[0].Issues[1].Snippet; got != "except:" {
		t.Errorf("app.py snippet = %q, want it untouched", got)
	}
}

// --- exit code constants tests ---

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		want int
	}{
		{"ExitSuccess", ExitSuccess, 0},
		{"ExitFindings", ExitFindings, 1},
		{"ExitUsageError", ExitUsageError, 2},
		{"ExitRuntimeError", ExitRuntimeError, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.code, tt.want)
			}
		})
	}
}
