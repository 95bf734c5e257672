package pretty

import "fmt"

// Stats counts the outcome of checking a set of files.
type Stats struct {
	FilesChecked    int
	FilesWithErrors int
	Errors          int
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "5 syntax errors in 2 files (3 files checked)".
func (s *Styles) FormatSummaryOneLine(stats Stats) string {
	checked := s.Dim.Render(fmt.Sprintf(" (%d %s checked)", stats.FilesChecked, plural(stats.FilesChecked, "file", "files")))
	if stats.Errors == 0 {
		return s.Success.Render("No syntax errors") + checked + "\n"
	}
	return s.Failure.Render(fmt.Sprintf("%d syntax %s", stats.Errors, plural(stats.Errors, "error", "errors"))) +
		fmt.Sprintf(" in %d %s", stats.FilesWithErrors, plural(stats.FilesWithErrors, "file", "files")) +
		checked + "\n"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
