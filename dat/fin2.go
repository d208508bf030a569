package dat

import (
	"fmt"
	"strings"

	"github.com/jhh67/extractdat/errs"
)

// fin2NamesLine is the 1-based line of a FIN2 sidecar carrying the mass
// table: a comma-separated row whose first field is a row label and whose
// remaining fields name the monitored masses in slot order.
const fin2NamesLine = 8

// ParseFIN2 extracts the element names from a FIN2 sidecar file.
//
// FIN2 files open with a free-text preamble (title, acquisition date,
// operator fields) and carry the mass table on line 8. The preamble is not
// CSV, so only the names line is split; fields are trimmed of surrounding
// whitespace. The returned names feed WithElementNames positionally.
func ParseFIN2(data []byte) ([]string, error) {
	lines := strings.Split(string(data), "\n")
	if len(lines) < fin2NamesLine {
		return nil, fmt.Errorf("%w: FIN2 sidecar has %d lines, want at least %d",
			errs.ErrTruncated, len(lines), fin2NamesLine)
	}

	fields := strings.Split(strings.TrimRight(lines[fin2NamesLine-1], "\r"), ",")
	if len(fields) < 2 {
		return nil, fmt.Errorf("%w: FIN2 names line carries no element fields", errs.ErrMalformedHeader)
	}

	names := make([]string, 0, len(fields)-1)
	for _, f := range fields[1:] {
		names = append(names, strings.TrimSpace(f))
	}

	return names, nil
}
