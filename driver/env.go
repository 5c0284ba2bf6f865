// Package driver provides the glue between phink's core pipeline and an external mutation driver:
// typed environment accessors, the selector dictionary the driver seeds mutations from, and an
// adapter exposing a fuzzing.Campaign as both a libFuzzer-style callback and a native Go fuzz
// target.
package driver

import (
	"os"
	"strconv"
)

const (
	// EnvContractDir names the environment variable carrying the instrumented contract root.
	EnvContractDir = "PHINK_CONTRACT_DIR"
	// EnvFromZiggy is set by the external driver when invoking the harness binary directly.
	EnvFromZiggy = "PHINK_FROM_ZIGGY"
	// EnvStartFuzzing, when set, makes the harness enter its fuzz loop on startup.
	EnvStartFuzzing = "PHINK_START_FUZZING"
	// EnvCores carries a parallelism hint forwarded to the driver.
	EnvCores = "PHINK_CORES"
)

// Env is a typed view over the four environment variables an external mutation driver and the
// phink harness binary agree on.
type Env struct {
	ContractDir  string
	FromZiggy    bool
	StartFuzzing bool
	Cores        int
}

// ReadEnv reads Env from the process's current environment. Cores defaults to 0 (unset/unknown)
// if PHINK_CORES is absent or unparseable.
func ReadEnv() Env {
	cores, _ := strconv.Atoi(os.Getenv(EnvCores))
	return Env{
		ContractDir:  os.Getenv(EnvContractDir),
		FromZiggy:    os.Getenv(EnvFromZiggy) != "",
		StartFuzzing: os.Getenv(EnvStartFuzzing) != "",
		Cores:        cores,
	}
}
