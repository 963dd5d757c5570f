package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/octobees/contact-enricher/internal/entity"
	"github.com/octobees/contact-enricher/internal/service/batch"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func progressPrinter(w io.Writer) batch.ProgressFunc {
	var mu sync.Mutex
	return func(position, total int, r entity.EnrichmentResult) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "[%d/%d] %-8s %s: %s\n", position, total, r.Status, r.Input, r.Message)
	}
}

func writeSummary(w io.Writer, report batch.Report) {
	s := report.Summary
	fmt.Fprintf(w, "\nProcessed %d rows in %s: %d succeeded, %d skipped, %d failed\n",
		s.Total, report.Finished.Sub(report.Started).Round(time.Millisecond), s.Success, s.Skipped, s.Failed)
}
