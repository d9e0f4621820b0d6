// Package domains ships the builtin list of known URL-shortening services.
// The list is packaged with the binary so a default run needs no external
// files; callers can extend it or opt out entirely.
//
// List derived from https://github.com/sambokai/ShortURL-Services-List.
package domains

import (
	_ "embed"
	"strings"
)

//go:embed shorturl-services-list.csv
var builtinCSV string

// Builtin returns the packaged shortener-domain list. The first line of the
// CSV is a header and is skipped; surrounding whitespace and trailing commas
// are trimmed. The returned slice is a fresh copy on every call.
func Builtin() []string {
	lines := strings.Split(builtinCSV, "\n")

	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if i == 0 {
			// header row
			continue
		}
		domain := strings.Trim(strings.TrimSpace(line), ",")
		if domain == "" {
			continue
		}
		out = append(out, domain)
	}

	return out
}
