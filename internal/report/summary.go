package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Summary is the aggregate tally of one finished deploy run: how many
// of each artifact kind were staged, how many warnings were logged,
// how long it took, and how many bytes were written in total.
type Summary struct {
	RunID              string        `json:"run_id"`
	LibrariesStaged    int           `json:"libraries_staged"`
	PluginsStaged      int           `json:"plugins_staged"`
	UIModulesStaged    int           `json:"ui_modules_staged"`
	TranslationsStaged int           `json:"translations_staged"`
	Warnings           int           `json:"warnings"`
	Elapsed            time.Duration `json:"elapsed_ns"`
	BytesWritten       int64         `json:"bytes_written"`
}

// NewSummary allocates a Summary tagged with a fresh run ID, so
// --verbose traces and a written RunReport can be correlated to the
// same invocation.
func NewSummary() *Summary {
	return &Summary{RunID: uuid.New().String()}
}

// Print writes a short human-readable tally to p's writer.
func (p *Printer) Print(s *Summary) {
	fmt.Fprintf(p.w, "%s\n",
		p.colorize(colorGreen, fmt.Sprintf(
			"deploy %s complete: %d libraries, %d plugins, %d UI-modules, %d translation catalogs, %d warnings, %s written in %s",
			s.RunID, s.LibrariesStaged, s.PluginsStaged, s.UIModulesStaged, s.TranslationsStaged,
			s.Warnings, humanize.Bytes(uint64(s.BytesWritten)), s.Elapsed.Round(time.Millisecond),
		)),
	)
}

// Report is the JSON-serializable form of a finished run, written to
// disk with --report: the Summary plus the full resolved dependency
// list the transitive walker produced.
type Report struct {
	Summary  *Summary `json:"summary"`
	Resolved []string `json:"resolved"`
}

// JSON marshals r with indentation, for both --json stdout output and
// --report file output.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
