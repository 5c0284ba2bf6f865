package formatters

import (
	"github.com/kevin-valerio/phink/logging/colors"
	"regexp"
	"strings"
)

// FuzzingSummaryFormatter will colorize and update the format of the fuzzing session summary for console output
func FuzzingSummaryFormatter(fields map[string]any, msg string) string {
	// Use testSummaryRegex to split the summary into its integer and non-integer parts
	re := regexp.MustCompile(testSummaryRegex)
	matches := re.FindAllString(msg, -1)

	// The first index and 3rd index are the number of passed and failed invariants, respectively
	matches[1] = colors.Colorize(colors.Colorize(matches[1], passedColor), colors.BOLD)
	matches[3] = colors.Colorize(colors.Colorize(matches[3], failedColor), colors.BOLD)

	// Merge the string back together
	return strings.Join(matches, "")
}
