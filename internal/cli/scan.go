package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"

	"github.com/dshills/patrol/internal/cache"
	"github.com/dshills/patrol/internal/config"
	"github.com/dshills/patrol/internal/gitctx"
	"github.com/dshills/patrol/internal/redact"
	"github.com/dshills/patrol/internal/review"
)

// stdinArg is the path argument that reads content from stdin.
const stdinArg = "-"

// defaultStdinName names stdin content when --stdin-name is not given.
const defaultStdinName = "stdin"

// spinnerThreshold is the number of files above which a progress spinner is
// shown on an interactive stderr.
const spinnerThreshold = 20

// gatherSources reads every input into memory. Files the collector rejects
// are returned as skipped rather than failing the run.
func gatherSources(args []string, cfg config.Config, staged bool, stdinName string, stdin io.Reader) ([]review.Source, []gitctx.Skipped, error) {
	opts := gitctx.Options{
		Include:      cfg.Include,
		Exclude:      cfg.Exclude,
		MaxFileBytes: cfg.MaxFileBytes,
	}
	if staged {
		return gatherStaged(opts)
	}

	var sources []review.Source
	var paths []string
	for _, a := range args {
		if a != stdinArg {
			paths = append(paths, a)
			continue
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, nil, fmt.Errorf("reading stdin: %w", err)
		}
		name := stdinName
		if name == "" {
			name = defaultStdinName
		}
		sources = append(sources, review.Source{Name: name, Content: data})
	}
	if len(paths) == 0 {
		return sources, nil, nil
	}

	files, skipped, err := gitctx.Collect(paths, opts)
	if err != nil {
		return nil, nil, err
	}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", f, err)
		}
		sources = append(sources, review.Source{Name: filepath.ToSlash(f), Content: data})
	}
	return sources, skipped, nil
}

func gatherStaged(opts gitctx.Options) ([]review.Source, []gitctx.Skipped, error) {
	if _, err := gitctx.RepoRoot(); err != nil {
		return nil, nil, err
	}
	files, err := gitctx.StagedFiles(opts)
	if err != nil {
		return nil, nil, err
	}
	var sources []review.Source
	var skipped []gitctx.Skipped
	for _, f := range files {
		data, err := gitctx.ReadStaged(f)
		if err != nil {
			return nil, nil, err
		}
		switch {
		case opts.MaxFileBytes > 0 && len(data) > opts.MaxFileBytes:
			skipped = append(skipped, gitctx.Skipped{Path: f, Reason: fmt.Sprintf("larger than %d bytes", opts.MaxFileBytes)})
		case gitctx.IsBinary(data):
			skipped = append(skipped, gitctx.Skipped{Path: f, Reason: "binary"})
		default:
			sources = append(sources, review.Source{Name: f, Content: data})
		}
	}
	return sources, skipped, nil
}

// hasExplicitFile reports whether any skipped file was named directly on the
// command line. Files skipped during a directory walk do not count.
func hasExplicitFile(skipped []gitctx.Skipped, args []string) bool {
	named := make(map[string]bool, len(args))
	for _, a := range args {
		named[filepath.Clean(a)] = true
	}
	for _, s := range skipped {
		if named[filepath.Clean(s.Path)] {
			return true
		}
	}
	return false
}

// failure is a source that could not be analyzed.
type failure struct {
	Path   string
	Reason string
}

// scanner runs the rule engine over sources, consulting the result cache
// and redacting snippets on the way out.
type scanner struct {
	set         *review.RuleSet
	fingerprint string
	template    string
	concurrency int
	cache       *cache.Cache
	policy      redact.Policy
	logger      *slog.Logger
}

func newScanner(cfg config.Config, set *review.RuleSet, template string, logger *slog.Logger) (*scanner, error) {
	c, err := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return &scanner{
		set:         set,
		fingerprint: set.Fingerprint(),
		template:    template,
		concurrency: cfg.Concurrency,
		cache:       c,
		policy:      redact.Policy{Secrets: cfg.Privacy.RedactSecrets, Paths: cfg.Privacy.RedactPaths},
		logger:      logger,
	}, nil
}

// scan returns one report per analyzable source, in input order, plus the
// sources that failed.
func (s *scanner) scan(ctx context.Context, sources []review.Source) ([]*review.Report, []failure) {
	found := make([][]review.Issue, len(sources))
	ok := make([]bool, len(sources))
	keys := make([]string, len(sources))

	var pending []review.Source
	var pendingIdx []int
	for i, src := range sources {
		keys[i] = cache.BuildCacheKey(s.fingerprint, src.Content)
		if issues, hit := s.cache.Get(keys[i]); hit {
			s.logger.Debug("cache hit", "path", src.Name, "issues", len(issues))
			found[i], ok[i] = issues, true
			continue
		}
		pending = append(pending, src)
		pendingIdx = append(pendingIdx, i)
	}

	var failures []failure
	for j, res := range review.AnalyzeAll(ctx, pending, s.set, s.template, s.concurrency) {
		i := pendingIdx[j]
		if res.Err != nil {
			failures = append(failures, failure{Path: res.Name, Reason: failureReason(res.Err)})
			continue
		}
		s.logger.Debug("scanned", "path", res.Name, "issues", len(res.Report.Issues))
		found[i], ok[i] = res.Report.Issues, true
		if err := s.cache.Put(keys[i], res.Report.Issues); err != nil {
			s.logger.Warn("cache write failed", "path", res.Name, "error", err)
		}
	}

	reports := make([]*review.Report, 0, len(sources))
	for i, src := range sources {
		if !ok[i] {
			continue
		}
		reports = append(reports, review.NewReport(src.Name, s.template, s.policy.Issues(src.Name, found[i])))
	}
	return reports, failures
}

func failureReason(err error) string {
	var ie *review.InputError
	if errors.As(err, &ie) {
		return ie.Reason
	}
	return err.Error()
}

// progress wraps an optional spinner on stderr.
type progress struct {
	s *spinner.Spinner
}

// startProgress shows a spinner when stderr is a terminal and there is enough
// work to notice. Verbose runs log per file instead.
func startProgress(files int, verbose bool) *progress {
	if verbose || files < spinnerThreshold || !term.IsTerminal(int(os.Stderr.Fd())) {
		return &progress{}
	}
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = fmt.Sprintf(" Scanning %d files...", files)
	s.Start()
	return &progress{s: s}
}

func (p *progress) stop() {
	if p.s != nil {
		p.s.Stop()
	}
}
