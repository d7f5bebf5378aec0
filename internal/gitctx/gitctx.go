package gitctx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Options controls which files are collected.
type Options struct {
	Include      []string
	Exclude      []string
	MaxFileBytes int
}

// Skipped records a file left out of collection and why.
type Skipped struct {
	Path   string
	Reason string
}

// binarySniffLen matches git's heuristic: a NUL in the first 8000 bytes means binary.
const binarySniffLen = 8000

// skipDirs are never descended into.
var skipDirs = map[string]bool{".git": true, ".hg": true, ".svn": true}

// Collect expands paths into a sorted, de-duplicated list of files. Directories
// are walked with the include/exclude filters; files named explicitly are
// always kept unless they are binary or too large.
func Collect(paths []string, opts Options) ([]string, []Skipped, error) {
	seen := make(map[string]bool)
	var files []string
	var skipped []Skipped

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			if reason := checkFile(p, info.Size(), opts.MaxFileBytes); reason != "" {
				skipped = append(skipped, Skipped{Path: p, Reason: reason})
				continue
			}
			add(p)
			continue
		}
		walked, sk, err := WalkFiles(p, opts)
		if err != nil {
			return nil, nil, err
		}
		for _, f := range walked {
			add(f)
		}
		skipped = append(skipped, sk...)
	}

	sort.Strings(files)
	return files, skipped, nil
}

// WalkFiles returns all non-binary files under root matching the
// include/exclude filters. Patterns are matched against slash-separated paths
// relative to root.
func WalkFiles(root string, opts Options) ([]string, []Skipped, error) {
	var files []string
	var skipped []Skipped

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if p != root && (skipDirs[d.Name()] || MatchesAny(rel+"/", opts.Exclude)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if len(opts.Include) > 0 && !MatchesAny(rel, opts.Include) {
			return nil
		}
		if MatchesAny(rel, opts.Exclude) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if reason := checkFile(p, info.Size(), opts.MaxFileBytes); reason != "" {
			skipped = append(skipped, Skipped{Path: p, Reason: reason})
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Strings(files)
	return files, skipped, nil
}

func checkFile(p string, size int64, maxBytes int) string {
	if maxBytes > 0 && size > int64(maxBytes) {
		return fmt.Sprintf("larger than %d bytes", maxBytes)
	}
	bin, err := isBinaryFile(p)
	if err != nil {
		return "unreadable: " + err.Error()
	}
	if bin {
		return "binary"
	}
	return ""
}

func isBinaryFile(p string) (bool, error) {
	f, err := os.Open(p)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, binarySniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return IsBinary(buf[:n]), nil
}

// IsBinary reports whether data looks binary.
func IsBinary(data []byte) bool {
	if len(data) > binarySniffLen {
		data = data[:binarySniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}

// MatchesAny returns true if the slash-separated path matches any of the
// given glob patterns. A "**" segment matches zero or more path segments, and
// a pattern ending in "/**" matches everything below that directory.
func MatchesAny(p string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchGlob(pattern, p) {
			return true
		}
		// Bare file patterns like "*.go" also match by base name.
		if !strings.Contains(pattern, "/") {
			if ok, _ := path.Match(pattern, path.Base(p)); ok {
				return true
			}
		}
	}
	return false
}

func matchGlob(pattern, p string) bool {
	return matchSegments(strings.Split(pattern, "/"), strings.Split(strings.TrimSuffix(p, "/"), "/"))
}

func matchSegments(pat, segs []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			if len(pat) == 1 {
				return true
			}
			for i := 0; i <= len(segs); i++ {
				if matchSegments(pat[1:], segs[i:]) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 {
			return false
		}
		if ok, err := path.Match(pat[0], segs[0]); err != nil || !ok {
			return false
		}
		pat, segs = pat[1:], segs[1:]
	}
	return len(segs) == 0
}

// RepoRoot returns the top-level directory of the enclosing git repository.
func RepoRoot() (string, error) {
	root, err := gitOutput("rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	return strings.TrimSpace(root), nil
}

// HooksDir returns the directory git runs hooks from. core.hooksPath is
// honored when set; relative results are resolved against the working
// directory git reports them for.
func HooksDir() (string, error) {
	dir, err := gitOutput("rev-parse", "--git-path", "hooks")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	dir = strings.TrimSpace(dir)
	if !filepath.IsAbs(dir) {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(wd, dir)
	}
	return dir, nil
}

// StagedFiles lists files added, copied, modified or renamed in the index,
// as repo-relative slash paths filtered by include/exclude.
func StagedFiles(opts Options) ([]string, error) {
	out, err := gitOutput("diff", "--cached", "--name-only", "--diff-filter=ACMR")
	if err != nil {
		return nil, fmt.Errorf("git diff --cached: %w", err)
	}

	var files []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(opts.Include) > 0 && !MatchesAny(line, opts.Include) {
			continue
		}
		if MatchesAny(line, opts.Exclude) {
			continue
		}
		files = append(files, line)
	}
	sort.Strings(files)
	return files, nil
}

// ReadStaged returns the index version of a repo-relative path, which may
// differ from the working tree.
func ReadStaged(rel string) ([]byte, error) {
	out, err := gitOutput("show", ":"+rel)
	if err != nil {
		return nil, fmt.Errorf("git show :%s: %w", rel, err)
	}
	return []byte(out), nil
}

func gitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
