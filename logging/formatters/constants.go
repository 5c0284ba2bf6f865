package formatters

import "github.com/kevin-valerio/phink/logging/colors"

// The list of constants below are used to search and replace various elements of a call sequence, dispatch trace,
// or fuzzing summary with a colorized, formatted version for console output
const (
	// passedRegex is the regex to find [PASSED] in a summary or invariant report
	passedRegex = `(\[PASSED\])`
	// failedRegex is the regex to find [FAILED] in a summary or invariant report
	failedRegex = `(\[FAILED\])`
	// dispatchRegex is the regex to find [dispatch] in the execution trace
	dispatchRegex = `(\[dispatch\])`
	// constructorRegex is the regex to find [constructor] in the execution trace
	constructorRegex = `(\[constructor\])`
	// eventRegex is the regex to find [event] in the execution trace
	eventRegex = `(\[event\])`
	// trapRegex is the regex to find [trap] in the execution trace
	trapRegex = `(\[trap\])`
	// revertRegex is the regex to find [revert (%v)] in the execution trace
	revertRegex = `(\[revert \(.*\)\])`
	// returnRegex is the regex to find [return (%v)] in the execution trace
	returnRegex = `(\[return \(.*\)\])`
	// doubleLeftArrowRegex is the regex to find => in the execution trace
	doubleLeftArrowRegex = `(\=\>)`
	// leftArrowRegex is the regex to find -> in the execution trace
	leftArrowRegex = `(\-\>)`
	// executionTraceRegex is the regex to find [Execution Trace] in the execution trace
	executionTraceRegex = `(\[Execution Trace\])`
	// callSequenceRegex is the regex to find [Call Sequence] in the call sequence
	callSequenceRegex = `(\[Call Sequence\])`
	// testSummaryRegex is the regex used to capture all integer and non-integer parts of a fuzzing summary string
	testSummaryRegex = `([-+]?\d+|\D+)`
)

// The list of constants below are used to map a specific color to a specific type of text for console output
const (
	// passedColor is the color to use for [PASSED] in the execution trace or the number of passed invariants
	passedColor = colors.GREEN
	// returnColor is the color to use for [return (%v)] in the execution trace
	returnColor = colors.GREEN
	// failedColor is the color to use for [FAILED] in the execution trace or the number of failed invariants
	failedColor = colors.RED
	// revertColor is the color to use for [revert (%v)] in the execution trace
	revertColor = colors.RED
	// trapColor is the color to use for [trap] in the execution trace
	trapColor = colors.RED
	// dispatchColor is the color to use for [dispatch] in the execution trace
	dispatchColor = colors.BLUE
	// constructorColor is the color to use for [constructor] in the execution trace
	constructorColor = colors.YELLOW
	// eventColor is the color to use for [event] in the execution trace
	eventColor = colors.MAGENTA
)
