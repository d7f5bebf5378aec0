package output

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dshills/patrol/internal/review"
)

// YAMLWriter outputs the reports as a YAML document.
type YAMLWriter struct{}

func (y *YAMLWriter) Write(w io.Writer, reports []*review.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newBatchDoc(reports)); err != nil {
		return fmt.Errorf("writing YAML: %w", err)
	}
	return enc.Close()
}
