package bugs

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"

	"github.com/kevin-valerio/phink/payload"
	"github.com/kevin-valerio/phink/utils"
)

// DefaultCrashDirectory is the subdirectory a fresh checkout writes confirmed crashes under.
const DefaultCrashDirectory = "./output/phink/crashes"

// messageSummary is the JSON-friendly rendering of one payload.Message within a crash sidecar.
type messageSummary struct {
	Selector    string `json:"selector"`
	OriginIndex uint8  `json:"originIndex"`
	Value       string `json:"value"`
	Metadata    string `json:"metadata,omitempty"`
}

// findingSummary is the JSON-friendly rendering of one Finding within a crash sidecar.
type findingSummary struct {
	Label    string `json:"label"`
	Selector string `json:"selector"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

// CrashReport is the persisted record of a confirmed invariant violation: the raw blob that
// produced it, the decoded sequence that was actually dispatched, the findings from the invariant
// check that followed, and a content digest of the terminal chain state the findings were checked
// against.
type CrashReport struct {
	Digest      string           `json:"digest"`
	Sequence    []messageSummary `json:"sequence"`
	Findings    []findingSummary `json:"findings"`
	StateDigest string           `json:"stateDigest,omitempty"`
	RecentLogs  []string         `json:"recentLogs,omitempty"`
}

// NewCrashReport builds a CrashReport from a decoded sequence and the findings Manager.Check
// produced against its terminal state. digest is the content hash of the raw blob that decoded to
// sequence, shared with the file names WriteCrash uses so the blob, sidecar, and report all agree.
func NewCrashReport(digest string, sequence payload.CallSequence, findings []Finding) *CrashReport {
	messages := make([]messageSummary, len(sequence.Messages))
	for i, msg := range sequence.Messages {
		value := "0"
		if msg.Value != nil {
			value = msg.Value.String()
		}
		messages[i] = messageSummary{
			Selector:    msg.Selector.String(),
			OriginIndex: msg.OriginIndex,
			Value:       value,
			Metadata:    msg.Metadata,
		}
	}
	findingSummaries := make([]findingSummary, len(findings))
	for i, f := range findings {
		findingSummaries[i] = findingSummary{
			Label:    f.Label,
			Selector: f.Selector.String(),
			Kind:     f.Kind.String(),
			Message:  f.Message,
		}
	}
	return &CrashReport{Digest: digest, Sequence: messages, Findings: findingSummaries}
}

// Digest returns the hex-encoded sha3-256 content hash of raw, the key WriteCrash and
// NewCrashReport agree on for naming a crash's blob and sidecar.
func Digest(raw []byte) string {
	digest := sha3.Sum256(raw)
	return hex.EncodeToString(digest[:])
}

// WriteCrash persists raw (the seed blob that produced this crash) and its CrashReport sidecar to
// dir, both named after raw's sha3-256 content hash, so re-discovering the same crash is a no-op.
func WriteCrash(dir string, raw []byte, report *CrashReport) error {
	if err := utils.MakeDirectory(dir); err != nil {
		return errors.WithStack(err)
	}

	key := Digest(raw)

	blobPath := filepath.Join(dir, key+".bin")
	if err := os.WriteFile(blobPath, raw, 0644); err != nil {
		return errors.WithStack(err)
	}

	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	sidecarPath := filepath.Join(dir, key+".json")
	if err := os.WriteFile(sidecarPath, encoded, 0644); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
