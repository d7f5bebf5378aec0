package review

import (
	"context"
	"fmt"
	"sync"
)

// DefaultConcurrency limits parallel file analysis when the caller passes 0.
const DefaultConcurrency = 4

// Source is one unit of batch input.
type Source struct {
	Name    string
	Content []byte
}

// Result pairs a source with its report or error. Exactly one of Report and
// Err is set.
type Result struct {
	Name   string
	Report *Report
	Err    error
}

// AnalyzeAll analyzes sources in parallel with at most concurrency workers.
// Results are returned in input order. Sources not yet started when ctx is
// cancelled get ctx.Err() as their error.
func AnalyzeAll(ctx context.Context, sources []Source, set *RuleSet, template string, concurrency int) []Result {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	// Rules are copied once and shared read-only by every worker.
	rules := set.Rules()
	results := make([]Result, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for i, src := range sources {
		results[i].Name = src.Name
		select {
		case <-ctx.Done():
			results[i].Err = ctx.Err()
			continue
		case sem <- struct{}{}: // acquire
		}

		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			defer func() { <-sem }() // release

			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}
			lines, err := SplitLines(src.Content)
			if err != nil {
				if ie, ok := err.(*InputError); ok {
					ie.File = src.Name
				}
				results[i].Err = fmt.Errorf("analyze %s: %w", src.Name, err)
				return
			}
			results[i].Report = NewReport(src.Name, template, FindIssues(lines, rules))
		}(i, src)
	}

	wg.Wait()
	return results
}
