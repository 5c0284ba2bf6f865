// Package fuzzing ties together the ABI reader, input parser, runtime harness, coverage bridge,
// and bug manager into a Campaign: one call to RunOne drives a single raw blob through the full
// decode/dispatch/invariant-check pipeline, and Run provides an in-process worker-pool convenience
// loop for `cmd fuzz`/`cmd run` when no external mutation driver is attached.
package fuzzing

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kevin-valerio/phink/abi"
	"github.com/kevin-valerio/phink/bugs"
	"github.com/kevin-valerio/phink/chain"
	chainTypes "github.com/kevin-valerio/phink/chain/types"
	"github.com/kevin-valerio/phink/config"
	"github.com/kevin-valerio/phink/coverage"
	"github.com/kevin-valerio/phink/events"
	"github.com/kevin-valerio/phink/logging"
	"github.com/kevin-valerio/phink/payload"
	"github.com/kevin-valerio/phink/utils"
	"github.com/kevin-valerio/phink/utils/randomutils"
)

var logger = logging.GlobalLogger.NewSubLogger("module", logging.FUZZING_SERVICE)

// ProgramFactory produces a fresh chain.ContractProgram for one execution. A real build shells
// into the instrumented contract's compiled artifact; tests supply deterministic fakes. A new
// instance is requested for every RunOne call: chain state is owned by exactly one execution at a
// time, never shared across iterations.
type ProgramFactory func() chain.ContractProgram

// IterationResult is everything RunOne learned from driving one raw blob through the pipeline.
type IterationResult struct {
	// Sequence is the decoded CallSequence the blob produced.
	Sequence payload.CallSequence
	// Responses holds one entry per message actually dispatched.
	Responses []chainTypes.Response
	// Findings holds every invariant violated against the run's terminal state, plus one
	// KindMessageTrap finding if a message trapped mid-sequence; empty if none.
	Findings []bugs.Finding
	// Coverage is the beacon-id trace this iteration produced.
	Coverage *coverage.Coverage
}

// Campaign drives the fuzzing pipeline: Input Parser -> Runtime Harness -> Coverage Bridge -> Bug
// Manager, accumulating coverage across iterations and persisting confirmed crashes.
type Campaign struct {
	cfg        config.FuzzingConfig
	reader     *abi.Reader
	decoder    *payload.Decoder
	newProgram ProgramFactory
	origins    []common.Address
	bugManager *bugs.Manager

	coverageMap *coverage.Map
	bridge      *coverage.Bridge
	traceStore  *coverage.TraceStore

	metrics *Metrics

	logBuffer *logging.LogBufferWriter

	onSequenceExecuted  events.EventEmitter[SequenceExecutedEvent]
	onCoverageUpdated   events.EventEmitter[CoverageUpdatedEvent]
	onInvariantViolated events.EventEmitter[InvariantViolatedEvent]

	ctx       context.Context
	ctxCancel context.CancelFunc
}

// NewCampaign constructs a Campaign bound to reader's ABI, a factory that produces a fresh program
// per iteration, and cfg. maxBeaconID bounds the coverage bridge's compiled ladder (normally
// instrumentation.Result.MaxBeaconID from the instrument step that produced the contract under
// test).
func NewCampaign(cfg config.FuzzingConfig, reader *abi.Reader, newProgram ProgramFactory, maxBeaconID uint32) (*Campaign, error) {
	origins, err := utils.HexStringsToAddresses(cfg.Origins)
	if err != nil {
		return nil, newError("failed to parse configured origin addresses", err)
	}
	if len(origins) == 0 {
		origins = []common.Address{{}}
	}

	logBuffer := logging.NewLogBufferWriter(256)
	logger.AddWriter(logBuffer, logging.UNSTRUCTURED)

	return &Campaign{
		cfg:         cfg,
		reader:      reader,
		decoder:     payload.NewDecoder(reader),
		newProgram:  newProgram,
		origins:     origins,
		bugManager:  bugs.NewManager(reader, origins[0]),
		coverageMap: coverage.NewMap(),
		bridge:      coverage.NewBridge(maxBeaconID),
		traceStore:  coverage.NewTraceStore(),
		metrics:     NewMetrics(),
		logBuffer:   logBuffer,
	}, nil
}

// OnSequenceExecuted subscribes callback to every RunOne call's completion.
func (c *Campaign) OnSequenceExecuted(callback events.EventHandler[SequenceExecutedEvent]) {
	c.onSequenceExecuted.Subscribe(callback)
}

// OnCoverageUpdated subscribes callback to every RunOne call that contributes new coverage.
func (c *Campaign) OnCoverageUpdated(callback events.EventHandler[CoverageUpdatedEvent]) {
	c.onCoverageUpdated.Subscribe(callback)
}

// OnInvariantViolated subscribes callback to every RunOne call that violates at least one
// invariant.
func (c *Campaign) OnInvariantViolated(callback events.EventHandler[InvariantViolatedEvent]) {
	c.onInvariantViolated.Subscribe(callback)
}

// Metrics returns the Campaign's running counters.
func (c *Campaign) Metrics() *Metrics {
	return c.metrics
}

// CoverageMap returns the Campaign's accumulated beacon-id coverage.
func (c *Campaign) CoverageMap() *coverage.Map {
	return c.coverageMap
}

// LogBuffer returns the Campaign's recent-log ring buffer, consulted when building a crash
// reproducer's surrounding log context.
func (c *Campaign) LogBuffer() *logging.LogBufferWriter {
	return c.logBuffer
}

// FlushTraces persists every trace recorded so far to path as a serialized list of byte arrays.
// Call this once at session shutdown; Run and RunOne never flush on their own, since a long
// campaign should not pay a disk write per iteration.
func (c *Campaign) FlushTraces(path string) error {
	return c.traceStore.Flush(path)
}

// FlushCoverage persists the set of beacon ids observed so far to path, letting a later `cmd cover`
// invocation (a separate process) render a report without re-running the campaign.
func (c *Campaign) FlushCoverage(path string) error {
	return c.coverageMap.Flush(path)
}

// RunOne decodes raw into a CallSequence and drives it through a fresh Harness, collecting
// coverage and checking invariants against the terminal state. A rejected blob (payload.ErrInputReject)
// is reported as an error but is not a crash: the caller should simply move on to the next blob.
func (c *Campaign) RunOne(raw []byte) (*IterationResult, error) {
	sequence, err := c.decoder.Decode(raw, len(c.origins))
	if err != nil {
		return nil, err
	}

	program := c.newProgram()
	harness := chain.NewHarness(program, c.origins)
	if err := harness.Deploy(c.origins[0]); err != nil {
		return nil, newError("contract deployment failed", err)
	}

	responses, err := harness.Run(sequence)
	if err != nil {
		return nil, newError("call sequence execution failed", err)
	}
	c.metrics.sequencesTested.Add(1)
	c.metrics.transactionsTested.Add(uint64(len(responses)))

	cov := coverage.NewCoverage(c.bridge.Max())
	cov.Collect(responses)
	if c.cfg.CoverageEnabled {
		c.bridge.Observe(cov)
		newEdges := c.coverageMap.Update(cov.BeaconIDs())
		if newEdges > 0 {
			c.onCoverageUpdated.Publish(CoverageUpdatedEvent{
				NewEdges:     newEdges,
				TotalCovered: c.coverageMap.Len(),
				RawInput:     raw,
			})
		}
		c.traceStore.Append(coverage.Clean(coverage.CoverageTrace(rawTrace(responses))))
	}

	c.onSequenceExecuted.Publish(SequenceExecutedEvent{Responses: responses})

	findings := c.bugManager.Check(program, harness.ContractAddress())
	if trap := harness.Trap(); trap != nil {
		findings = append(findings, c.messageTrapFinding(trap))
	}
	if len(findings) > 0 {
		c.metrics.invariantsViolated.Add(1)
		digest := c.persistCrash(raw, sequence, findings, program)
		c.onInvariantViolated.Publish(InvariantViolatedEvent{Findings: findings, Digest: digest})
	} else {
		c.metrics.invariantsPassed.Add(1)
	}

	return &IterationResult{Sequence: sequence, Responses: responses, Findings: findings, Coverage: cov}, nil
}

// messageTrapFinding converts a mid-sequence chain.MessageTrap into a Finding of equal severity to
// an invariant violation, carrying the distinguished bugs.KindMessageTrap.
func (c *Campaign) messageTrapFinding(trap *chain.MessageTrap) bugs.Finding {
	selector := abi.Selector(trap.Selector)
	label := "message"
	if message, ok := c.reader.MessageBySelector(selector); ok {
		label = message.Label
	}
	return bugs.Finding{
		Label:    label,
		Selector: selector,
		Kind:     bugs.KindMessageTrap,
		Message:  trap.Error(),
	}
}

// persistCrash writes the crash directory entry for a confirmed invariant violation or message
// trap and returns the content-hash digest used to name it.
func (c *Campaign) persistCrash(raw []byte, sequence payload.CallSequence, findings []bugs.Finding, program chain.ContractProgram) string {
	digest := bugs.Digest(raw)
	report := bugs.NewCrashReport(digest, sequence, findings)
	report.StateDigest = program.StateDigest()
	report.RecentLogs = c.logBuffer.RecentMessages(20)
	if err := bugs.WriteCrash(bugs.DefaultCrashDirectory, raw, report); err != nil {
		logger.Error("failed to persist crash report: " + err.Error())
	}
	return digest
}

// rawTrace concatenates every response's debug output, the shape coverage.ExtractBeaconIDs expects.
func rawTrace(responses []chainTypes.Response) []byte {
	var out []byte
	for _, r := range responses {
		out = append(out, r.DebugOutput...)
	}
	return out
}

// Run starts a convenience in-process worker pool of cfg.Workers goroutines, each synthesizing
// random-length blobs via its own PRNG (forked from a shared session seed so each worker stays
// lock-free on its random source) and driving them
// through RunOne until ctx is cancelled, cfg.Timeout elapses, or cfg.TestLimit transactions have
// been tested. This exists only for `cmd fuzz`/`cmd run` convenience: the real parallel fuzzing
// loop is owned by an external driver.
func (c *Campaign) Run(ctx context.Context, seed int64) error {
	if c.cfg.Timeout > 0 {
		ctx, c.ctxCancel = context.WithTimeout(ctx, time.Duration(c.cfg.Timeout)*time.Second)
	} else {
		ctx, c.ctxCancel = context.WithCancel(ctx)
	}
	c.ctx = ctx
	defer c.ctxCancel()

	workers := c.cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	sessionRand := rand.New(rand.NewSource(seed))
	reserve := make(chan struct{}, workers)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.runMetricsPrintLoop(ctx)
	}()

	for {
		if utils.CheckContextDone(ctx) {
			break
		}
		if limit := c.cfg.TestLimit; limit > 0 && c.metrics.TransactionsTested() >= limit {
			break
		}

		reserve <- struct{}{}
		workerRand := randomutils.ForkRandomProvider(sessionRand)
		c.metrics.workerStartupCount.Add(1)

		wg.Add(1)
		go func(rng *rand.Rand) {
			defer wg.Done()
			defer func() { <-reserve }()
			blob := randomBlob(rng, c.cfg.MinSeedLength, c.cfg.MaxSeedLength)
			if _, err := c.RunOne(blob); err != nil {
				logger.Warn("iteration rejected: " + err.Error())
			}
		}(workerRand)
	}

	wg.Wait()
	return nil
}

// Stop cancels a running Run call's context. Run returns once its in-flight workers and its
// metrics loop have finished.
func (c *Campaign) Stop() {
	if c.ctxCancel != nil {
		c.ctxCancel()
	}
}

// runMetricsPrintLoop prints a delta-based throughput summary once per second until ctx is done.
// This exists only for the in-process convenience loop Run drives; an external driver reports its
// own metrics on whatever cadence it chooses.
func (c *Campaign) runMetricsPrintLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var lastTransactionsTested, lastSequencesTested uint64
	lastPrintedTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			transactionsTested := c.metrics.TransactionsTested()
			sequencesTested := c.metrics.SequencesTested()

			secondsSinceLastUpdate := time.Since(lastPrintedTime).Seconds()
			if secondsSinceLastUpdate <= 0 {
				secondsSinceLastUpdate = 1
			}

			summary := fmt.Sprintf(
				"invariants: %d passed / %d failed, tx: %d, tx/s: %d, seq/s: %d",
				c.metrics.InvariantsPassed(),
				c.metrics.InvariantsViolated(),
				transactionsTested,
				uint64(float64(transactionsTested-lastTransactionsTested)/secondsSinceLastUpdate),
				uint64(float64(sequencesTested-lastSequencesTested)/secondsSinceLastUpdate),
			)
			logger.Info(logging.StructuredLogInfo{"format": logging.FUZZING_SUMMARY}, summary)

			lastPrintedTime = time.Now()
			lastTransactionsTested = transactionsTested
			lastSequencesTested = sequencesTested
		}
	}
}

// randomBlob synthesizes a uniformly random-length raw blob within [minLen, maxLen], filled with
// uniformly random bytes. This is the in-process convenience generator used only when no external
// mutation driver or go test -fuzz corpus is attached.
func randomBlob(rng *rand.Rand, minLen, maxLen int) []byte {
	if maxLen < minLen {
		maxLen = minLen
	}
	length := minLen
	if maxLen > minLen {
		length += rng.Intn(maxLen - minLen + 1)
	}
	blob := make([]byte, length)
	rng.Read(blob)
	return blob
}
