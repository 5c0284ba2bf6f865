package formatters

import (
	"github.com/kevin-valerio/phink/logging/colors"
	"regexp"
)

// InvariantFormatter will colorize and update the format of an invariant result, its call sequence, and
// execution trace for console output
func InvariantFormatter(fields map[string]any, msg string) string {
	var re *regexp.Regexp

	// Colorize [Execution Trace]
	re = regexp.MustCompile(executionTraceRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(`$1`, colors.BOLD))

	// Colorize [Call Sequence]
	re = regexp.MustCompile(callSequenceRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(`$1`, colors.BOLD))

	// Colorize [PASSED]
	re = regexp.MustCompile(passedRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, passedColor), colors.BOLD))

	// Colorize [FAILED]
	re = regexp.MustCompile(failedRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, failedColor), colors.BOLD))

	// Colorize [dispatch]
	re = regexp.MustCompile(dispatchRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, dispatchColor), colors.BOLD))

	// Colorize [constructor]
	re = regexp.MustCompile(constructorRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, constructorColor), colors.BOLD))

	// Colorize [event]
	re = regexp.MustCompile(eventRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, eventColor), colors.BOLD))

	// Colorize [trap]
	re = regexp.MustCompile(trapRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, trapColor), colors.BOLD))

	// Colorize [return (%v)]
	re = regexp.MustCompile(returnRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, returnColor), colors.BOLD))

	// Colorize [revert (%v)]
	re = regexp.MustCompile(revertRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, revertColor), colors.BOLD))

	// Colorize and replace '=>'
	re = regexp.MustCompile(doubleLeftArrowRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(colors.DOWNWARD_LEFT_ARROW, colors.COLOR_GREEN), colors.BOLD))

	// Colorize and replace '->'
	re = regexp.MustCompile(leftArrowRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(colors.LEFT_ARROW, colors.COLOR_GREEN), colors.BOLD))

	return msg
}
