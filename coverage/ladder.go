package coverage

import (
	"bytes"
	"text/template"
)

// ladderSource is rendered by GenerateLadderSource, keyed on the contract's highest beacon id. No
// command in this module calls GenerateLadderSource, so coverage/ladder_generated.go keeps whatever
// bound it was last generated with. The external driver here is a native Go fuzzing corpus runner (see
// the driver package), so lifting contract-level coverage into its feedback loop means exercising
// ordinary Go branches the toolchain's own coverage instrumentation (go test -cover) already
// tracks: one literal `case` per beacon id, rather than a runtime loop whose body would collapse
// every id into a single edge.
const ladderSource = `// Code generated by phink's instrument step from the contract's highest beacon id. DO NOT EDIT.
package coverage

// Ladder exercises one of LadderMax+1 distinct source-level branches for id, giving the external
// driver's binary-level coverage instrumentation a distinct edge per beacon.
func Ladder(id uint32) {
	switch id {
	{{- range $i := .IDs }}
	case {{ $i }}:
		return
	{{- end }}
	}
}

// LadderMax is the highest beacon id this ladder was generated for.
const LadderMax uint32 = {{ .Max }}
`

var ladderTemplate = template.Must(template.New("ladder").Parse(ladderSource))

// GenerateLadderSource renders the unrolled decision ladder covering beacon ids [0, max] as Go
// source. The caller writes the result into the module tree (conventionally
// coverage/ladder_generated.go); the harness binary must be rebuilt to pick it up, the same as any
// other code-generation step run after instrumentation.
func GenerateLadderSource(max uint32) ([]byte, error) {
	ids := make([]uint32, max+1)
	for i := range ids {
		ids[i] = uint32(i)
	}

	var buf bytes.Buffer
	err := ladderTemplate.Execute(&buf, struct {
		IDs []uint32
		Max uint32
	}{IDs: ids, Max: max})
	if err != nil {
		return nil, newError("failed to render coverage ladder template", err)
	}
	return buf.Bytes(), nil
}
