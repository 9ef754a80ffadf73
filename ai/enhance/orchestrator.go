// Package enhance drives one enhancement request end to end: classify, compose, call the
// provider under the retry policy (through the cache unless bypassed), and post-process.
package enhance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/hrygo/clipsense/ai/cache"
	"github.com/hrygo/clipsense/ai/catalog"
	"github.com/hrygo/clipsense/ai/classifier"
	"github.com/hrygo/clipsense/ai/core/llm"
	"github.com/hrygo/clipsense/ai/observability/logging"
	"github.com/hrygo/clipsense/ai/observability/tracing"
	"github.com/hrygo/clipsense/ai/postprocess"
	"github.com/hrygo/clipsense/ai/prompt"
)

// Stage names, logged and traced as the request moves through the pipeline.
const (
	StageClassifying    = "classifying"
	StageComposing      = "composing"
	StageCalling        = "calling"
	StagePostProcessing = "post_processing"
)

// Request is one enhancement call.
type Request struct {
	Text         string
	Mode         prompt.Mode
	Model        string // empty selects the provider default
	NoCache      bool   // bypass the cache and ask for a fresh variant
	Instructions string
}

// Outcome describes a finished request. It is handed to the HistoryRecorder.
type Outcome struct {
	RequestID    string
	Mode         prompt.Mode
	Provider     string
	Model        string
	Result       classifier.Result
	Input        string
	Output       string
	Kind         ErrorKind // empty on success
	CacheHit     bool
	NoCache      bool
	Attempts     int
	Duration     time.Duration
	ProviderTime time.Duration
	CreatedAt    time.Time
}

// Succeeded reports whether the request produced output.
func (o Outcome) Succeeded() bool { return o.Kind == "" }

// Recorder receives pipeline metrics.
type Recorder interface {
	RecordEnhance(mode, platform, status string, latency time.Duration)
	RecordCacheLookup(mode string, hit bool)
	RecordAttempt(provider, outcome string)
	RecordRetry(kind string)
}

// HistoryRecorder persists finished requests. Failures are logged and never surfaced.
type HistoryRecorder interface {
	RecordOutcome(ctx context.Context, o Outcome) error
}

// Config wires an Orchestrator. Only Provider is required.
type Config struct {
	Provider   llm.Provider
	Classifier *classifier.Classifier
	Composer   *prompt.Composer
	Cache      *cache.EnhancementCache
	Retry      RetryPolicy
	Limiter    *rate.Limiter // consulted before every provider attempt
	Recorder   Recorder
	History    HistoryRecorder
}

// Orchestrator is safe for concurrent use.
type Orchestrator struct {
	provider   llm.Provider
	classifier *classifier.Classifier
	composer   *prompt.Composer
	cache      *cache.EnhancementCache
	retry      RetryPolicy
	limiter    *rate.Limiter
	recorder   Recorder
	history    HistoryRecorder

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// New creates an orchestrator, filling unset collaborators with defaults.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Provider == nil {
		return nil, errors.New("enhance: provider is required")
	}
	o := &Orchestrator{
		provider:   cfg.Provider,
		classifier: cfg.Classifier,
		composer:   cfg.Composer,
		cache:      cfg.Cache,
		retry:      cfg.Retry.withDefaults(),
		limiter:    cfg.Limiter,
		recorder:   cfg.Recorder,
		history:    cfg.History,
		sleep:      sleepContext,
		now:        time.Now,
	}
	if o.classifier == nil {
		o.classifier = classifier.New(nil)
	}
	if o.composer == nil {
		o.composer = prompt.NewComposer(nil)
	}
	if o.cache == nil {
		o.cache = cache.New(cache.Config{})
	}
	return o, nil
}

// Cache returns the enhancement cache.
func (o *Orchestrator) Cache() *cache.EnhancementCache { return o.cache }

// Enhance runs req through the pipeline. Every error it returns is an *Error.
func (o *Orchestrator) Enhance(ctx context.Context, req Request) (string, error) {
	start := o.now()
	mode, err := prompt.ParseMode(string(req.Mode))
	if err != nil {
		mode = prompt.ModeGeneral
	}

	requestID := uuid.NewString()
	ctx, logger := logging.WithRequestID(ctx, requestID)
	logger = logger.With("mode", mode)
	ctx = logging.ToContext(ctx, logger)
	tracer := tracing.NewTracer(logger, true)
	ctx = tracing.ToContext(ctx, tracer)

	outcome := Outcome{
		RequestID: requestID,
		Mode:      mode,
		Provider:  o.provider.Name(),
		Model:     req.Model,
		Input:     req.Text,
		NoCache:   req.NoCache,
		CreatedAt: start,
		Result: classifier.Result{
			Platform: catalog.PlatformGeneral,
			Tone:     catalog.ToneNeutral,
			Format:   catalog.FormatMessage,
		},
	}

	// attempts is shared with a cache flight that may outlive this call.
	var attempts atomic.Int32
	var out string
	if mode == prompt.ModeAnswer {
		out, err = o.answer(ctx, req, &attempts)
	} else {
		out, err = o.enhance(ctx, req, mode, &outcome, &attempts)
	}

	outcome.Attempts = int(attempts.Load())
	outcome.Duration = o.now().Sub(start)
	outcome.ProviderTime = tracer.Total(StageCalling)

	status := "success"
	if err != nil {
		classified := Classify(err)
		outcome.Kind = classified.Kind
		status = string(classified.Kind)
		err = classified
		logger.Error("enhance: failed", "state", "failed", "kind", classified.Kind, "error", classified.Err)
	} else {
		outcome.Output = out
		logger.Debug("enhance: state", "state", "done", "cache_hit", outcome.CacheHit, "duration_ms", outcome.Duration.Milliseconds())
	}

	if o.recorder != nil {
		o.recorder.RecordEnhance(string(mode), string(outcome.Result.Platform), status, outcome.Duration)
	}
	o.recordHistory(ctx, outcome)

	if err != nil {
		return "", err
	}
	return out, nil
}

// answer issues a single direct-answer completion, bypassing the cache and classification.
func (o *Orchestrator) answer(ctx context.Context, req Request, attempts *atomic.Int32) (string, error) {
	spec := o.composer.ComposeAnswer(req.Text, prompt.Options{Instructions: req.Instructions})
	raw, err := o.completeWithRetry(ctx, spec, req.Model, attempts)
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(postprocess.Normalize(raw))
	if out == "" {
		return "", &Error{Kind: Unknown, Message: UserMessage(Unknown), Err: ErrEmptyResult}
	}
	return out, nil
}

func (o *Orchestrator) enhance(ctx context.Context, req Request, mode prompt.Mode, outcome *Outcome, attempts *atomic.Int32) (string, error) {
	logger := logging.FromContext(ctx)
	tracer := tracing.FromContext(ctx)

	logger.Debug("enhance: state", "state", StageClassifying)
	span := tracer.StartSpan(StageClassifying)
	result := o.classifier.Classify(req.Text)
	span.SetMetadata("platform", result.Platform)
	span.SetMetadata("format", result.Format)
	span.End()
	outcome.Result = result

	logger.Debug("enhance: state", "state", StageComposing,
		"platform", result.Platform, "tone", result.Tone, "format", result.Format)
	span = tracer.StartSpan(StageComposing)
	spec := o.composer.Compose(req.Text, result, mode, prompt.Options{
		Instructions: req.Instructions,
		Regenerate:   req.NoCache,
	})
	span.End()

	complete := func(ctx context.Context) (string, error) {
		raw, err := o.completeWithRetry(ctx, spec, req.Model, attempts)
		if err != nil {
			return "", err
		}
		logging.FromContext(ctx).Debug("enhance: state", "state", StagePostProcessing)
		var out string
		err = tracing.WithSpan(ctx, StagePostProcessing, func(context.Context) error {
			out = postprocess.Process(postprocess.Normalize(raw), result.Platform, req.Text, result.Format)
			if out == "" {
				return &Error{Kind: Unknown, Message: UserMessage(Unknown), Err: ErrEmptyResult}
			}
			return nil
		})
		if err != nil {
			return "", err
		}
		return out, nil
	}

	if req.NoCache {
		return complete(ctx)
	}

	out, hit, err := o.cache.GetOrCompute(ctx, req.Text, cacheMode(mode, req), complete)
	outcome.CacheHit = hit
	if o.recorder != nil {
		o.recorder.RecordCacheLookup(string(mode), hit)
	}
	if hit {
		logger.Debug("enhance: state", "state", "cache_hit")
	}
	return out, err
}

// cacheMode is the mode component of the cache key. Caller instructions and an explicit model
// change the output, so they are folded in.
func cacheMode(mode prompt.Mode, req Request) string {
	key := string(mode)
	if instructions := strings.TrimSpace(req.Instructions); instructions != "" {
		key += "\x00i:" + instructions
	}
	if req.Model != "" {
		key += "\x00m:" + req.Model
	}
	return key
}

// completeWithRetry calls the provider under the retry policy and returns the raw output.
// On exhaustion it returns the last failure.
func (o *Orchestrator) completeWithRetry(ctx context.Context, spec prompt.Spec, model string, attempts *atomic.Int32) (string, error) {
	logger := logging.FromContext(ctx)
	tracer := tracing.FromContext(ctx)
	provider := o.provider.Name()

	var lastErr *Error
	for attempt := 1; attempt <= o.retry.MaxAttempts; attempt++ {
		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				return "", Classify(fmt.Errorf("rate limiter: %w", err))
			}
		}

		logger.Debug("enhance: state", "state", StageCalling, "attempt", attempt)
		span := tracer.StartSpan(StageCalling)
		span.SetMetadata("attempt", attempt)
		out, err := o.provider.Complete(ctx, spec.SystemPrompt, spec.UserPrompt, model)
		span.RecordError(err)
		span.End()
		attempts.Add(1)

		if err == nil {
			o.recordAttempt(provider, "success")
			return out, nil
		}

		lastErr = Classify(err)
		o.recordAttempt(provider, string(lastErr.Kind))

		if ctx.Err() != nil {
			return "", lastErr
		}
		if !o.retry.Retryable(lastErr.Kind) {
			logger.Warn("enhance: not retrying", "attempt", attempt, "kind", lastErr.Kind, "error", err)
			return "", lastErr
		}
		if attempt == o.retry.MaxAttempts {
			break
		}

		delay := o.retry.Delay(lastErr.Kind, attempt)
		logger.Warn("enhance: retrying",
			"attempt", attempt,
			"kind", lastErr.Kind,
			"delay_ms", delay.Milliseconds(),
			"error", err,
		)
		if o.recorder != nil {
			o.recorder.RecordRetry(string(lastErr.Kind))
		}
		if err := o.sleep(ctx, delay); err != nil {
			return "", Classify(err)
		}
	}
	return "", lastErr
}

func (o *Orchestrator) recordAttempt(provider, outcome string) {
	if o.recorder != nil {
		o.recorder.RecordAttempt(provider, outcome)
	}
}

func (o *Orchestrator) recordHistory(ctx context.Context, outcome Outcome) {
	if o.history == nil {
		return
	}
	if err := o.history.RecordOutcome(context.WithoutCancel(ctx), outcome); err != nil {
		logging.FromContext(ctx).Warn("enhance: failed to record history", "error", err)
	}
}
