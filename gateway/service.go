package gateway

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	"github.com/jonwraymond/contentgate/auth"
	"github.com/jonwraymond/contentgate/cache"
	"github.com/jonwraymond/contentgate/observe"
	"github.com/jonwraymond/contentgate/resilience"
	"github.com/jonwraymond/contentgate/upstream"
	"github.com/jonwraymond/contentgate/usage"
)

// Upstream deadlines per pipeline.
const (
	DefaultGenerateTimeout = 30 * time.Second
	DefaultOutlineTimeout  = 45 * time.Second
)

// Block types recorded for pipelines that are not tied to one block.
const (
	BlockTypeRefinement = "refinement"
	BlockTypeOutline    = "outline"
	BlockTypeImage      = "image"
)

// Operation names used for telemetry.
const (
	OpGenerate   = "generate"
	OpRefine     = "refine"
	OpOutline    = "outline"
	OpAltText    = "alt-text"
	OpUsageStats = "usage-stats"
)

// ErrEmptyReply indicates the upstream returned no usable text.
var ErrEmptyReply = errors.New("gateway: upstream reply is empty")

// Config wires a Service.
type Config struct {
	// Generator is the upstream text generator (required).
	Generator upstream.Generator

	// Ledger records every completed pipeline invocation (required).
	Ledger usage.Ledger

	// Cache stores generate results by fingerprint. Nil disables caching.
	Cache cache.Cache

	// Templates resolves generate prompt templates. Nil uses DefaultTemplates.
	Templates TemplateSource

	// Fingerprinter derives cache keys. Nil uses cache.NewFingerprinter.
	Fingerprinter cache.Fingerprinter

	// Middleware wraps every operation with telemetry. Nil records nothing.
	Middleware *observe.Middleware

	// GenerateTimeout bounds generate, refine and alt-text upstream calls.
	GenerateTimeout time.Duration

	// OutlineTimeout bounds outline upstream calls.
	OutlineTimeout time.Duration

	// Bulkhead optionally caps concurrent upstream calls. The wait for a
	// slot counts against the call's timeout.
	Bulkhead *resilience.Bulkhead

	// Now overrides the clock used for result and ledger timestamps.
	Now func() time.Time
}

// Service runs the generation, refinement, outline and alt-text pipelines.
//
// Contract:
//   - Concurrency: safe for concurrent use; only the cache and ledger are shared.
//   - Context: work is detached from caller cancellation once accepted, so a
//     disconnecting client does not abort the upstream call or the writes.
//   - Errors: *ValidationError before any external work, *upstream.Error
//     after a failed upstream call. Cache and ledger failures never surface.
type Service struct {
	gen         upstream.Generator
	ledger      usage.Ledger
	cache       cache.Cache
	templates   TemplateSource
	fp          cache.Fingerprinter
	mw          *observe.Middleware
	logger      observe.Logger
	metrics     observe.Metrics
	standard    *resilience.Executor
	outlineExec *resilience.Executor
	now         func() time.Time
}

// NewService creates a Service from cfg.
func NewService(cfg Config) (*Service, error) {
	if cfg.Generator == nil {
		return nil, ErrNilGenerator
	}
	if cfg.Ledger == nil {
		return nil, ErrNilLedger
	}
	if cfg.Templates == nil {
		cfg.Templates = DefaultTemplates()
	}
	if cfg.Fingerprinter == nil {
		cfg.Fingerprinter = cache.NewFingerprinter()
	}
	if cfg.Middleware == nil {
		cfg.Middleware = observe.NewMiddleware(nil, nil, nil, observe.WithExpectedErrors(IsValidationError))
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = DefaultGenerateTimeout
	}
	if cfg.OutlineTimeout <= 0 {
		cfg.OutlineTimeout = DefaultOutlineTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		gen:       cfg.Generator,
		ledger:    cfg.Ledger,
		cache:     cfg.Cache,
		templates: cfg.Templates,
		fp:        cfg.Fingerprinter,
		mw:        cfg.Middleware,
		logger:    cfg.Middleware.Logger(),
		metrics:   cfg.Middleware.Metrics(),
		standard: resilience.NewExecutor(
			resilience.WithTimeout(cfg.GenerateTimeout),
			resilience.WithBulkhead(cfg.Bulkhead),
		),
		outlineExec: resilience.NewExecutor(
			resilience.WithTimeout(cfg.OutlineTimeout),
			resilience.WithBulkhead(cfg.Bulkhead),
		),
		now: func() time.Time { return cfg.Now().UTC() },
	}, nil
}

// run executes fn inside the telemetry middleware on a context that keeps
// the caller's values but not its cancellation.
func run[T any](ctx context.Context, s *Service, op observe.OperationMeta, fn func(context.Context) (T, error)) (T, error) {
	var result T
	err := s.mw.Wrap(func(ctx context.Context, _ observe.OperationMeta) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})(context.WithoutCancel(ctx), op)
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

func courseID(cc *CourseContext) string {
	if cc == nil {
		return ""
	}
	return cc.CourseID
}

// Generate produces a content block, serving identical requests from cache.
func (s *Service) Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error) {
	op := observe.OperationMeta{Name: OpGenerate, BlockType: req.BlockType, CourseID: courseID(req.Context)}
	return run(ctx, s, op, func(ctx context.Context) (*GenerationResult, error) {
		return s.generate(ctx, op, req)
	})
}

func (s *Service) generate(ctx context.Context, op observe.OperationMeta, req GenerationRequest) (*GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	tmpl, ok := s.templates.Template(req.BlockType)
	if !ok {
		return nil, invalid("blockType", "no template for block type %q", req.BlockType)
	}

	options := req.Options
	if options == nil {
		options = GenerationOptions{}
	}
	prompt := Interpolate(tmpl, generateVars(req, resolveOptions(options)))

	key := s.fingerprint(ctx, req, options)
	if cached, hit := s.cacheGet(ctx, key, req.BlockType); hit {
		s.logger.Debug(ctx, "cache hit", observe.F("fingerprint", key), observe.F("block_type", req.BlockType))
		s.record(ctx, usage.Record{
			CourseID:       req.Context.CourseID,
			BlockType:      req.BlockType,
			GenerationType: usage.GenerationGenerate,
			PromptLength:   utf8.RuneCountInString(prompt),
			ResponseLength: utf8.RuneCount(cached.Content),
			Cached:         true,
		})
		return &GenerationResult{GeneratedContent: *cached, Cached: true}, nil
	}

	resp, err := s.invoke(ctx, s.standard, op, prompt)
	if err != nil {
		return nil, err
	}

	content, err := contentFromText(resp.Text)
	if err != nil {
		return nil, &upstream.Error{Kind: upstream.KindOther, Err: err}
	}

	generated := GeneratedContent{
		Content: content,
		Metadata: ContentMetadata{
			BlockType:   req.BlockType,
			GeneratedAt: s.now(),
			PromptUsed:  prompt,
			TokensUsed:  resp.TokensUsed,
		},
	}
	s.cacheSet(ctx, key, generated)
	s.record(ctx, usage.Record{
		CourseID:       req.Context.CourseID,
		BlockType:      req.BlockType,
		GenerationType: usage.GenerationGenerate,
		PromptLength:   utf8.RuneCountInString(prompt),
		ResponseLength: utf8.RuneCount(content),
		TokensUsed:     resp.TokensUsed,
	})

	return &GenerationResult{GeneratedContent: generated}, nil
}

// Refine rewrites existing content. Results are never cached.
func (s *Service) Refine(ctx context.Context, req RefineRequest) (*RefineResult, error) {
	op := observe.OperationMeta{Name: OpRefine, BlockType: BlockTypeRefinement, CourseID: courseID(req.Context)}
	return run(ctx, s, op, func(ctx context.Context) (*RefineResult, error) {
		if err := req.Validate(); err != nil {
			return nil, err
		}

		prompt := refinePrompt(req)
		resp, err := s.invoke(ctx, s.standard, op, prompt)
		if err != nil {
			return nil, err
		}
		refined := strings.TrimSpace(resp.Text)
		if refined == "" {
			return nil, &upstream.Error{Kind: upstream.KindOther, Err: ErrEmptyReply}
		}

		result := &RefineResult{
			Content: refined,
			Metadata: RefineMetadata{
				RefinementType: req.RefinementType,
				OriginalLength: utf8.RuneCountInString(req.Content),
				RefinedLength:  utf8.RuneCountInString(refined),
				RefinedAt:      s.now(),
				TokensUsed:     resp.TokensUsed,
			},
		}
		s.record(ctx, usage.Record{
			CourseID:       req.Context.CourseID,
			BlockType:      BlockTypeRefinement,
			GenerationType: usage.GenerationRefine,
			PromptLength:   utf8.RuneCountInString(prompt),
			ResponseLength: result.Metadata.RefinedLength,
			TokensUsed:     resp.TokensUsed,
		})
		return result, nil
	})
}

// Outline plans an ordered list of lesson blocks in one upstream call.
func (s *Service) Outline(ctx context.Context, req OutlineRequest) (*OutlineResult, error) {
	op := observe.OperationMeta{Name: OpOutline, BlockType: BlockTypeOutline, CourseID: courseID(req.Context)}
	return run(ctx, s, op, func(ctx context.Context) (*OutlineResult, error) {
		if err := req.Validate(); err != nil {
			return nil, err
		}

		prompt := outlinePrompt(req, req.blockCount())
		resp, err := s.invoke(ctx, s.outlineExec, op, prompt)
		if err != nil {
			return nil, err
		}
		outline, err := parseOutline(resp.Text)
		if err != nil {
			return nil, &upstream.Error{Kind: upstream.KindOther, Err: err}
		}

		serialized, err := json.Marshal(outline)
		if err != nil {
			return nil, err
		}

		s.record(ctx, usage.Record{
			CourseID:       req.Context.CourseID,
			BlockType:      BlockTypeOutline,
			GenerationType: usage.GenerationOutline,
			PromptLength:   utf8.RuneCountInString(prompt),
			ResponseLength: utf8.RuneCount(serialized),
			TokensUsed:     resp.TokensUsed,
		})
		return &OutlineResult{
			Outline: outline,
			Metadata: OutlineMetadata{
				Topic:           strings.TrimSpace(req.Topic),
				ObjectivesCount: len(req.Objectives),
				BlocksGenerated: len(outline),
				GeneratedAt:     s.now(),
				TokensUsed:      resp.TokensUsed,
			},
		}, nil
	})
}

// AltText writes alternative text for an image. Results are never cached.
func (s *Service) AltText(ctx context.Context, req AltTextRequest) (*AltTextResult, error) {
	op := observe.OperationMeta{Name: OpAltText, BlockType: BlockTypeImage, CourseID: courseID(req.Context)}
	return run(ctx, s, op, func(ctx context.Context) (*AltTextResult, error) {
		if err := req.Validate(); err != nil {
			return nil, err
		}

		prompt := altTextPrompt(req)
		resp, err := s.invoke(ctx, s.standard, op, prompt)
		if err != nil {
			return nil, err
		}
		text := cleanAltText(resp.Text)
		if text == "" {
			return nil, &upstream.Error{Kind: upstream.KindOther, Err: ErrEmptyReply}
		}

		length := utf8.RuneCountInString(text)
		s.record(ctx, usage.Record{
			CourseID:       req.Context.CourseID,
			BlockType:      BlockTypeImage,
			GenerationType: usage.GenerationAltText,
			PromptLength:   utf8.RuneCountInString(prompt),
			ResponseLength: length,
			TokensUsed:     resp.TokensUsed,
		})
		return &AltTextResult{
			AltText: text,
			Metadata: AltTextMetadata{
				ImageURL:    strings.TrimSpace(req.ImageURL),
				Length:      length,
				GeneratedAt: s.now(),
				TokensUsed:  resp.TokensUsed,
			},
		}, nil
	})
}

// UsageStats aggregates the ledger. Query errors are returned.
func (s *Service) UsageStats(ctx context.Context, filter usage.Filter) (usage.Stats, error) {
	op := observe.OperationMeta{Name: OpUsageStats, CourseID: filter.CourseID}
	return run(ctx, s, op, func(ctx context.Context) (usage.Stats, error) {
		return s.ledger.Query(ctx, filter)
	})
}

// invoke calls the upstream through exec and classifies any failure.
func (s *Service) invoke(ctx context.Context, exec *resilience.Executor, op observe.OperationMeta, prompt string) (*upstream.Response, error) {
	start := time.Now()
	resp, err := resilience.Do(ctx, exec, func(ctx context.Context) (*upstream.Response, error) {
		return s.gen.Invoke(ctx, prompt)
	})
	if err == nil && resp == nil {
		err = &upstream.Error{Kind: upstream.KindOther, Err: ErrEmptyReply}
	}
	if err != nil {
		uerr := upstream.Classify(err)
		s.metrics.RecordUpstreamCall(ctx, op, time.Since(start), string(uerr.Kind))
		if uerr.Kind == upstream.KindTimeout {
			s.logger.Warn(ctx, "upstream deadline exceeded",
				observe.F("operation", op.Name),
				observe.F("timeout", exec.Timeout()),
			)
		}
		return nil, uerr
	}
	s.metrics.RecordUpstreamCall(ctx, op, time.Since(start), "")
	return resp, nil
}

// record writes a usage record. Failures are logged and counted only.
func (s *Service) record(ctx context.Context, rec usage.Record) {
	rec.UserID = auth.PrincipalFromContext(ctx)
	rec.Timestamp = s.now()

	defer func() {
		if r := recover(); r != nil {
			s.ledgerFailure(ctx, rec, panicError(r))
		}
	}()
	if err := s.ledger.Record(ctx, rec); err != nil {
		s.ledgerFailure(ctx, rec, err)
	}
}

func (s *Service) ledgerFailure(ctx context.Context, rec usage.Record, err error) {
	s.metrics.RecordLedgerFailure(ctx, string(rec.GenerationType))
	s.logger.Warn(ctx, "usage record dropped",
		observe.F("error", err),
		observe.F("generation_type", string(rec.GenerationType)),
		observe.F("course_id", rec.CourseID),
	)
}

// contentFromText turns upstream text into a JSON payload. JSON replies,
// optionally wrapped in a code fence, are kept structured. Anything else is
// stored as a JSON string.
func contentFromText(text string) ([]byte, error) {
	trimmed := stripCodeFence(strings.TrimSpace(text))
	if trimmed == "" {
		return nil, ErrEmptyReply
	}
	if json.Valid([]byte(trimmed)) {
		return []byte(trimmed), nil
	}
	return json.Marshal(trimmed)
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	body := strings.TrimSuffix(s[3:], "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		// drop the language tag line
		body = body[nl+1:]
	}
	return strings.TrimSpace(body)
}

// cleanAltText normalizes whitespace, drops wrapping quotes and caps the
// result at MaxAltTextLength characters.
func cleanAltText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	text = strings.Trim(text, `"'`)
	text = strings.TrimSpace(text)

	if utf8.RuneCountInString(text) <= MaxAltTextLength {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:MaxAltTextLength]))
}
