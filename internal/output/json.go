package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/patrol/internal/review"
)

// JSONWriter outputs the reports as a JSON document.
type JSONWriter struct{}

// batchDoc is the envelope for structured output formats.
type batchDoc struct {
	Tool    string           `json:"tool" yaml:"tool"`
	Version string           `json:"version" yaml:"version"`
	Summary review.Summary   `json:"summary" yaml:"summary"`
	Reports []*review.Report `json:"reports" yaml:"reports"`
}

func newBatchDoc(reports []*review.Report) batchDoc {
	var all []review.Issue
	for _, r := range reports {
		all = append(all, r.Issues...)
	}
	if reports == nil {
		reports = []*review.Report{}
	}
	return batchDoc{
		Tool:    review.Tool,
		Version: review.Version,
		Summary: review.ComputeSummary(all),
		Reports: reports,
	}
}

func (j *JSONWriter) Write(w io.Writer, reports []*review.Report) error {
	data, err := json.MarshalIndent(newBatchDoc(reports), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
