// Package instrumentation rewrites ink! contract source to emit a per-statement coverage beacon,
// turning ordinary contract execution into a source of branch coverage the Coverage Bridge can
// lift into the external mutation driver's feedback loop.
//
// No Rust-syntax parser exists anywhere in this project's dependency graph, so the rewriter is a
// purpose-built line/brace-scanning text transformer rather than an AST-driven one; this is the
// one genuinely novel piece of domain logic in the whole system.
package instrumentation

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/kevin-valerio/phink/logging"
	"github.com/kevin-valerio/phink/utils"
)

// EntrypointFile is the conventional name of a contract's top-level source file.
const EntrypointFile = "lib.rs"

// sentinel marks a file as already instrumented. Its presence makes re-instrumentation a no-op.
const sentinel = "pub struct Coverage"

// eventDeclaration is the event type Pass A injects at the top of the contract module.
const eventDeclaration = "#[ink(event)]\npub struct Coverage { cov_of: i32 }\n"

// Result reports where the instrumented fork lives and the highest beacon id assigned.
type Result struct {
	ForkPath    string
	MaxBeaconID uint32
}

// insertion is one point in the original source where new text must be spliced in.
type insertion struct {
	offset int
	line   int
}

var logger = logging.GlobalLogger.NewSubLogger("module", logging.INSTRUMENTATION_SERVICE)

// Instrument forks contractDir into a fresh temporary directory, rewrites its entrypoint file in
// place within the fork, and returns the fork's location plus the highest beacon id assigned.
// Re-instrumenting an already-instrumented tree is a no-op: the fork is still produced (so callers
// always get a forward-compatible path), but the source is copied unchanged.
func Instrument(contractDir string) (*Result, error) {
	entrypoint := filepath.Join(contractDir, EntrypointFile)
	original, err := readFile(entrypoint)
	if err != nil {
		return nil, newError("failed to read contract entrypoint", err)
	}

	forkPath, err := fork(contractDir)
	if err != nil {
		return nil, newError("failed to fork contract source tree", err)
	}

	if bytes.Contains(original, []byte(sentinel)) {
		logger.Info("contract is already instrumented, skipping rewrite")
		return &Result{ForkPath: forkPath, MaxBeaconID: existingMaxBeaconID(original)}, nil
	}

	rewritten, maxID := rewrite(original)

	forkEntrypoint := filepath.Join(forkPath, EntrypointFile)
	if err := writeFile(forkEntrypoint, rewritten); err != nil {
		return nil, newError("failed to write instrumented source", err)
	}

	if err := format(forkEntrypoint); err != nil {
		// Formatting failure is non-fatal to the rewrite itself; the source is syntactically
		// complete, just not canonically formatted. Log and continue.
		logger.Warn(fmt.Sprintf("failed to format instrumented source: %v", err))
	}

	return &Result{ForkPath: forkPath, MaxBeaconID: maxID}, nil
}

// rewrite performs both passes over src and returns the rewritten source plus the highest beacon
// id assigned.
func rewrite(src []byte) ([]byte, uint32) {
	insertAt := declarationInsertionPoint(src)
	beacons := collectAllBeacons(src)

	var maxID uint32
	for _, b := range beacons {
		if uint32(b.line) > maxID {
			maxID = uint32(b.line)
		}
	}

	// Merge the single declaration insertion with every beacon insertion, sorted ascending by
	// offset, then splice them into the source in one forward pass.
	all := make([]insertion, 0, len(beacons)+1)
	all = append(all, insertion{offset: insertAt, line: 0})
	all = append(all, beacons...)
	sortInsertions(all)

	var out bytes.Buffer
	cursor := 0
	for _, ins := range all {
		out.Write(src[cursor:ins.offset])
		if ins.line == 0 {
			out.WriteString(eventDeclaration)
		} else {
			out.WriteString(beaconText(ins.line))
		}
		cursor = ins.offset
	}
	out.Write(src[cursor:])

	return out.Bytes(), maxID
}

// beaconText renders the beacon-emitting statement for the given source line.
func beaconText(line int) string {
	return "Self::env().emit_event(Coverage { cov_of: " + strconv.Itoa(line) + " }); "
}

// sortInsertions sorts insertions ascending by offset using a simple insertion sort (the number of
// insertions per file is small relative to file size, so this is not a hot path).
func sortInsertions(ins []insertion) {
	for i := 1; i < len(ins); i++ {
		for j := i; j > 0 && ins[j-1].offset > ins[j].offset; j-- {
			ins[j-1], ins[j] = ins[j], ins[j-1]
		}
	}
}

// declarationInsertionPoint locates the byte offset just after the contract module's opening
// brace, falling back to the start of the file if no "#[ink::contract]"-annotated module is found.
func declarationInsertionPoint(src []byte) int {
	attrIdx := bytes.Index(src, []byte("#[ink::contract]"))
	if attrIdx == -1 {
		return 0
	}
	modIdx := bytes.Index(src[attrIdx:], []byte("mod "))
	if modIdx == -1 {
		return 0
	}
	braceIdx := bytes.IndexByte(src[attrIdx+modIdx:], '{')
	if braceIdx == -1 {
		return 0
	}
	return attrIdx + modIdx + braceIdx + 1
}

// collectAllBeacons walks the whole file looking for block-open braces. Braces that open an item
// container (impl/trait/mod/struct/enum bodies) are descended into looking for further item
// containers or function bodies; braces that open a function body switch to statement-level
// instrumentation (collectBeacons), which instruments every syntactic block reachable from it.
func collectAllBeacons(src []byte) []insertion {
	var out []insertion
	scanItems(src, 0, len(src), &out)
	return out
}

func scanItems(src []byte, start, end int, out *[]insertion) {
	i := start
	for i < end {
		if j := skipLiteralOrComment(src, i); j != i {
			i = j
			continue
		}
		if src[i] != '{' {
			i++
			continue
		}
		if !isBlockOpenBrace(src, i) {
			close := findMatchingBrace(src, i)
			if close == -1 {
				return
			}
			i = close + 1
			continue
		}
		close := findMatchingBrace(src, i)
		if close == -1 || close > end {
			return
		}
		if headerNamesFunction(src, i) {
			collectBeacons(src, i+1, close, out)
		} else {
			scanItems(src, i+1, close, out)
		}
		i = close + 1
	}
}

// headerNamesFunction reports whether the block opening at bracePos is a function body (as
// opposed to an impl/trait/mod body, which contains items rather than statements).
func headerNamesFunction(src []byte, bracePos int) bool {
	header := precedingHeader(src, bracePos)
	word := ""
	for i := 0; i <= len(header); i++ {
		if i < len(header) && isIdentByte(header[i]) {
			word += string(header[i])
			continue
		}
		if word == "fn" {
			return true
		}
		word = ""
	}
	return false
}

// collectBeacons walks one statement-containing block's body, recording one beacon insertion
// point per top-level statement and recursing into any nested block found along the way.
func collectBeacons(src []byte, bodyStart, bodyEnd int, out *[]insertion) {
	i := bodyStart
	stmtStart := -1
	for i < bodyEnd {
		if j := skipLiteralOrComment(src, i); j != i {
			i = j
			continue
		}
		c := src[i]
		if stmtStart == -1 {
			if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
				i++
				continue
			}
			stmtStart = i
		}
		if c == '{' {
			if !isBlockOpenBrace(src, i) {
				close := findMatchingBrace(src, i)
				if close == -1 {
					return
				}
				i = close + 1
				continue
			}
			close := findMatchingBrace(src, i)
			if close == -1 || close > bodyEnd {
				return
			}
			collectBeacons(src, i+1, close, out)

			// An else/else-if immediately following this block's close is still part of the same
			// if/else statement; ending the statement here would insert the beacon call between the
			// closing brace and else, breaking the syntax.
			if followedByElse(src, close+1) {
				i = close + 1
				continue
			}

			// A nested block ends the enclosing statement here only when it is not itself part of
			// an assignment/let initializer (`let x = if .. {} else {};`), which continues to the
			// next top-level ';'.
			if !looksLikeAssignment(src[stmtStart:i]) {
				*out = append(*out, insertion{offset: stmtStart, line: lineOf(src, stmtStart)})
				stmtStart = -1
			}
			i = close + 1
			continue
		}
		if c == ';' {
			*out = append(*out, insertion{offset: stmtStart, line: lineOf(src, stmtStart)})
			stmtStart = -1
			i++
			continue
		}
		i++
	}
	if stmtStart != -1 {
		*out = append(*out, insertion{offset: stmtStart, line: lineOf(src, stmtStart)})
	}
}

// looksLikeAssignment reports whether the given statement prefix (from its start up to, but not
// including, a nested block's opening brace) looks like an assignment or let-binding whose
// initializer is the block expression, as opposed to the block being the whole statement.
func looksLikeAssignment(prefix []byte) bool {
	return bytes.ContainsRune(prefix, '=')
}

// followedByElse reports whether the next non-whitespace, non-comment token starting at pos is
// the "else" keyword.
func followedByElse(src []byte, pos int) bool {
	i := pos
	for i < len(src) {
		if j := skipLiteralOrComment(src, i); j != i {
			i = j
			continue
		}
		c := src[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			i++
			continue
		}
		break
	}
	return i+4 <= len(src) && string(src[i:i+4]) == "else" &&
		(i+4 == len(src) || !isIdentByte(src[i+4]))
}

var beaconIDPattern = regexp.MustCompile(`cov_of:\s*(\d+)`)

// existingMaxBeaconID scans an already-instrumented file for the highest beacon id present.
func existingMaxBeaconID(src []byte) uint32 {
	var max uint32
	for _, match := range beaconIDPattern.FindAllSubmatch(src, -1) {
		n, err := strconv.ParseUint(string(match[1]), 10, 32)
		if err == nil && uint32(n) > max {
			max = uint32(n)
		}
	}
	return max
}

// fork copies contractDir into a fresh temporary directory and returns the new root.
func fork(contractDir string) (string, error) {
	forkPath, err := mkdirTemp()
	if err != nil {
		return "", err
	}
	if err := utils.CopyDirectory(contractDir, forkPath, true); err != nil {
		return "", err
	}
	return forkPath, nil
}

// format shells out to the project's source formatter on the rewritten entrypoint. Formatter
// failures are surfaced to the caller, which treats them as non-fatal warnings.
func format(path string) error {
	cmd := exec.Command("rustfmt", path)
	_, _, _, err := utils.RunCommandWithOutputAndError(cmd)
	return err
}
