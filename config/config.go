// Package config defines the JSON project configuration a phink fuzzing session is driven from:
// a FuzzingConfig plus a LoggingConfig, read from and written to disk as a single JSON document.
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/kevin-valerio/phink/logging"
	"github.com/kevin-valerio/phink/payload"
)

// ProjectConfig is the root configuration document for a phink session.
type ProjectConfig struct {
	// Fuzzing describes the configuration used in fuzzing campaigns.
	Fuzzing FuzzingConfig `json:"fuzzing"`

	// Logging describes the configuration used for logging to console and, optionally, to file.
	Logging LoggingConfig `json:"logging"`
}

// FuzzingConfig describes the configuration options used by fuzzing.Campaign.
type FuzzingConfig struct {
	// ContractDirectory is the root of the ink! contract source tree to instrument and fuzz.
	ContractDirectory string `json:"contractDirectory"`

	// Workers describes the number of in-process worker goroutines the convenience Campaign runner
	// uses when no external driver is attached (a real parallel campaign is expected to attach one;
	// this field only backs `cmd fuzz`/`cmd run`).
	Workers int `json:"workers"`

	// Timeout describes a time threshold in seconds for which the fuzzing operation should run. A
	// non-positive value means no timeout.
	Timeout int `json:"timeout"`

	// TestLimit describes a threshold for the number of transactions to test, after which the
	// campaign halts. A zero value means the limit is not enforced.
	TestLimit uint64 `json:"testLimit"`

	// CallSequenceLength describes the maximum number of messages a synthesized CallSequence may
	// contain. Validate requires it to be positive; the payload decoder does not read it, so a
	// decoded sequence's length is bounded only by the blob's size.
	CallSequenceLength int `json:"callSequenceLength"`

	// MinSeedLength and MaxSeedLength describe the raw input blob length bounds communicated to
	// the external driver via --minlength/--maxlength.
	MinSeedLength int `json:"minSeedLength"`
	MaxSeedLength int `json:"maxSeedLength"`

	// CorpusDirectory is where accepted seeds are persisted (empty disables persistence).
	CorpusDirectory string `json:"corpusDirectory"`

	// TraceDirectory is where coverage traces are persisted (./output/phink/traces.cov by default).
	TraceDirectory string `json:"traceDirectory"`

	// CoverageIDsPath is where the set of observed beacon ids is persisted (./output/phink/coverage.ids
	// by default), read back by `cmd cover` in a separate process from the one that fuzzed.
	CoverageIDsPath string `json:"coverageIdsPath"`

	// SelectorDictPath is where the selector dictionary (every constructor and message selector,
	// invariants included) is written at instrument time (./output/phink/selectors.dict by default).
	SelectorDictPath string `json:"selectorDictPath"`

	// CoverageEnabled toggles whether the coverage bridge is exercised at all during a campaign.
	CoverageEnabled bool `json:"coverageEnabled"`

	// Origins holds the hex-encoded addresses of the accounts a campaign dispatches calls from.
	Origins []string `json:"origins"`

	// MaxBeaconID is the highest beacon id the instrument step assigned (instrumentation.Result.
	// MaxBeaconID), persisted here so a later `fuzz`/`run`/`execute`/`cover` invocation can size its
	// coverage bridge's compiled ladder without re-running instrumentation.
	MaxBeaconID uint32 `json:"maxBeaconId"`
}

// LoggingConfig describes the configuration options used for logging. The fields are read from and
// written to the project file, but no command in this module applies them to its loggers.
type LoggingConfig struct {
	// Level names the minimum severity level to emit; higher values are more severe.
	Level zerolog.Level `json:"level"`

	// LogDirectory names a directory for log files.
	LogDirectory string `json:"logDirectory"`

	// NoColor selects uncolored console formatting.
	NoColor bool `json:"noColor"`
}

// DefaultProjectConfig returns a ProjectConfig populated with the same defaults a fresh checkout's
// `phink init`-style command would write out.
func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Fuzzing: FuzzingConfig{
			Workers:            1,
			Timeout:            0,
			TestLimit:          0,
			CallSequenceLength: 100,
			MinSeedLength:      payload.MinSeedLen,
			MaxSeedLength:      payload.MaxSeedLen,
			TraceDirectory:     "./output/phink/traces.cov",
			CoverageIDsPath:    "./output/phink/coverage.ids",
			SelectorDictPath:   "./output/phink/selectors.dict",
			CoverageEnabled:    true,
		},
		Logging: LoggingConfig{
			Level: zerolog.InfoLevel,
		},
	}
}

// ReadProjectConfigFromFile reads a JSON-serialized ProjectConfig from path, applying it on top of
// DefaultProjectConfig so any field the file omits keeps its default value.
func ReadProjectConfigFromFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := DefaultProjectConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.WithStack(err)
	}
	return cfg, nil
}

// WriteToFile serializes p as indented JSON to path.
func (p *ProjectConfig) WriteToFile(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Validate checks p for internally-inconsistent or out-of-range settings.
func (p *ProjectConfig) Validate() error {
	logger := logging.GlobalLogger.NewSubLogger("module", "config")

	if p.Fuzzing.Workers <= 0 {
		return errors.New("project configuration must specify a positive number of workers")
	}
	if p.Fuzzing.CallSequenceLength <= 0 {
		return errors.New("project configuration must specify a positive call sequence length")
	}
	if p.Fuzzing.MinSeedLength <= 0 || p.Fuzzing.MaxSeedLength <= 0 {
		return errors.New("project configuration must specify positive seed length bounds")
	}
	if p.Fuzzing.MinSeedLength > p.Fuzzing.MaxSeedLength {
		return errors.New("project configuration's minimum seed length must not exceed its maximum")
	}
	if p.Fuzzing.ContractDirectory == "" {
		return errors.New("project configuration must specify a contract directory")
	}
	if len(p.Fuzzing.Origins) == 0 {
		logger.Warn("project configuration specifies no origin accounts; a single zero address will be used")
	}

	return nil
}
