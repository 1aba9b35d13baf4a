package translate

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"slidecast/internal/logging"
	"slidecast/internal/services"
	"slidecast/internal/textgen"
)

// extraAttempts is how many times a failed batch call is retried before the
// batch degrades to passthrough.
const extraAttempts = 2

// EventKind classifies a reconciliation event.
type EventKind string

const (
	// EventBackfill marks a single cue whose translation could not be parsed
	// and was substituted with its source text.
	EventBackfill EventKind = "backfill"
	// EventPassthrough marks a whole batch that failed after retries and kept
	// source text for every cue.
	EventPassthrough EventKind = "passthrough"
)

// Event records a recovery taken during reconciliation, for diagnostics.
type Event struct {
	Kind     EventKind
	Batch    int
	CueIndex int // index into the full cue list; -1 for batch-level events
	Detail   string
}

// Result is the outcome of translating a full cue sequence.
type Result struct {
	// Translations has exactly one entry per input cue, in input order.
	Translations []string
	Events       []Event
}

// Engine translates cue text through a provider in adaptively sized batches.
type Engine struct {
	provider    textgen.Provider
	concurrency int
	logger      *slog.Logger
}

// NewEngine builds an Engine. Concurrency bounds how many batch requests may
// be in flight at once; values below 1 are treated as sequential.
func NewEngine(provider textgen.Provider, concurrency int, logger *slog.Logger) *Engine {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Engine{
		provider:    provider,
		concurrency: concurrency,
		logger:      logging.NewComponentLogger(logger, "translate"),
	}
}

// Translate translates every text into targetLang. The returned result always
// holds len(texts) translations in input order; cues the provider failed on
// carry their source text. Only a nil provider or a cancelled context fail
// the call outright.
func (e *Engine) Translate(ctx context.Context, texts []string, targetLang string) (Result, error) {
	if e.provider == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "translate", "translate", "no provider configured", nil)
	}
	if len(texts) == 0 {
		return Result{Translations: []string{}}, nil
	}

	size := BatchSize(texts)
	batches := makeBatches(texts, size)
	e.logger.Info("translating cues",
		logging.Int("cues", len(texts)),
		logging.Int("batch_size", size),
		logging.Int("batches", len(batches)),
		logging.String("target", targetLang),
		logging.String("provider", e.provider.Name()))

	type outcome struct {
		translations []string
		events       []Event
	}
	outcomes := make([]outcome, len(batches))

	// Batches run with bounded parallelism; results are keyed by batch
	// number so assembly order never depends on completion order.
	sem := make(chan struct{}, e.concurrency)
	var wg sync.WaitGroup
	for _, b := range batches {
		wg.Add(1)
		go func(b batch) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			translations, events := e.translateBatch(ctx, b, targetLang)
			outcomes[b.number] = outcome{translations: translations, events: events}
		}(b)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	result := Result{Translations: make([]string, 0, len(texts))}
	for _, out := range outcomes {
		result.Translations = append(result.Translations, out.translations...)
		result.Events = append(result.Events, out.events...)
	}
	sort.SliceStable(result.Events, func(a, b int) bool {
		return result.Events[a].Batch < result.Events[b].Batch
	})
	return result, nil
}

// translateBatch always returns exactly len(b.texts) translations.
func (e *Engine) translateBatch(ctx context.Context, b batch, targetLang string) ([]string, []Event) {
	prompt := buildPrompt(b.texts, targetLang)

	var response string
	var lastErr error
	for attempt := 0; attempt <= extraAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		text, err := e.provider.Complete(ctx, prompt)
		if err == nil && strings.TrimSpace(text) != "" {
			response = text
			lastErr = nil
			break
		}
		if err == nil {
			err = services.Wrap(services.ErrProvider, "translate", "complete", "empty response", nil)
		}
		lastErr = err
		e.logger.Warn("batch translation attempt failed",
			logging.Int("batch", b.number),
			logging.Int("attempt", attempt+1),
			logging.Error(err))
	}

	if lastErr != nil {
		e.logger.Warn("batch degraded to passthrough",
			logging.Int("batch", b.number),
			logging.Int("cues", len(b.texts)),
			logging.Error(lastErr))
		passthrough := make([]string, len(b.texts))
		copy(passthrough, b.texts)
		return passthrough, []Event{{
			Kind:     EventPassthrough,
			Batch:    b.number,
			CueIndex: -1,
			Detail:   lastErr.Error(),
		}}
	}

	parsed, strategy := reconcile(response, len(b.texts))
	translations := make([]string, len(b.texts))
	var events []Event
	for i := range b.texts {
		if text, ok := parsed[i]; ok {
			translations[i] = text
			continue
		}
		translations[i] = b.texts[i]
		events = append(events, Event{
			Kind:     EventBackfill,
			Batch:    b.number,
			CueIndex: b.first + i,
			Detail:   "translation missing from response, source text kept",
		})
	}
	if len(events) > 0 || strategy != "strict" {
		e.logger.Debug("batch reconciled",
			logging.Int("batch", b.number),
			logging.String("strategy", strategy),
			logging.Int("backfilled", len(events)))
	}
	return translations, events
}
