package coverage

import (
	"regexp"
	"strconv"
	"strings"
)

// beaconLinePattern identifies a beacon emission statement by the literal event construction
// instrument.go inserts, capturing its cov_of argument.
var beaconLinePattern = regexp.MustCompile(`emit_event\(Coverage \{ cov_of: (\d+) \}\)`)

// SourceAnalysis is one instrumented source file's lines, each annotated with coverage state,
// ready for HTML rendering.
type SourceAnalysis struct {
	Path  string
	Lines []sourceLine
}

// AnalyzeSource applies the three line-covering rules to an instrumented source file given the set
// of beacon ids observed across a fuzzing session:
//
//  1. a line is covered if it is itself a beacon emission for an observed id;
//  2. a line is covered if it is the opening line of a block whose beacon was observed, in which
//     case every line within the block up to the closing brace is also covered;
//  3. a line is covered if it is the nearest non-empty line preceding an observed beacon emission,
//     attributing coverage to the instrumented statement's header.
//
// Beacon-emission lines stay in the returned Lines with IsBeacon set, whatever their coverage
// state; the report template uses that flag to leave them out of the rendered page.
func AnalyzeSource(path string, source []byte, observed map[uint32]bool) *SourceAnalysis {
	lines := splitSourceLines(source)

	beaconLineToID := make(map[int]uint32)
	for _, match := range beaconLinePattern.FindAllSubmatchIndex(source, -1) {
		lineNum := lineAt(source, match[0])
		id, _ := strconv.ParseUint(string(source[match[2]:match[3]]), 10, 32)
		beaconLineToID[lineNum] = uint32(id)
		lines[lineNum-1].IsBeacon = true
	}

	// Rule (i).
	for lineNum, id := range beaconLineToID {
		if observed[id] {
			lines[lineNum-1].IsCovered = true
		}
	}

	// Rule (ii): a block whose opening line carries an observed beacon covers its whole range.
	for _, b := range findBlocks(source) {
		if id, ok := beaconLineToID[b.openLine]; ok && observed[id] {
			for l := b.openLine; l <= b.closeLine && l <= len(lines); l++ {
				lines[l-1].IsCovered = true
			}
		}
	}

	// Rule (iii): the nearest non-empty line preceding an observed beacon emission is covered.
	for lineNum, id := range beaconLineToID {
		if !observed[id] {
			continue
		}
		for l := lineNum - 1; l >= 1; l-- {
			if strings.TrimSpace(lines[l-1].Contents) == "" {
				continue
			}
			lines[l-1].IsCovered = true
			break
		}
	}

	return &SourceAnalysis{Path: path, Lines: lines}
}
