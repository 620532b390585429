package sections

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/listing-pipeline/internal/generation"
	"github.com/jonathan/listing-pipeline/internal/platforms"
	"github.com/jonathan/listing-pipeline/internal/types"
)

// DefaultConcurrency bounds the sections a sweep generates at once.
const DefaultConcurrency = 3

// Board holds the section states of one product across platforms. A
// platform's sections are created on first access: the default sections
// enabled and optional ones (faq) disabled.
type Board struct {
	productID string
	logger    *zap.Logger
	now       func() time.Time

	mu        sync.Mutex
	platforms map[types.Platform]map[types.SectionKey]*State
}

// NewBoard creates an empty board for a product.
func NewBoard(productID string, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{
		productID: productID,
		logger:    logger,
		now:       time.Now,
		platforms: make(map[types.Platform]map[types.SectionKey]*State),
	}
}

// ProductID returns the product the board belongs to.
func (b *Board) ProductID() string {
	return b.productID
}

// states returns the platform's section map, creating it on first use.
// Callers hold b.mu.
func (b *Board) states(p types.Platform) (map[types.SectionKey]*State, error) {
	if !platforms.Supported(p) {
		return nil, &platforms.UnknownPlatformError{Platform: string(p)}
	}
	m, ok := b.platforms[p]
	if !ok {
		now := b.now()
		m = make(map[types.SectionKey]*State, len(types.AllSections))
		for _, s := range types.AllSections {
			m[s] = &State{Section: s, Status: StatusIdle, Enabled: isDefault(s), UpdatedAt: now}
		}
		b.platforms[p] = m
	}
	return m, nil
}

func (b *Board) state(p types.Platform, s types.SectionKey) (*State, error) {
	m, err := b.states(p)
	if err != nil {
		return nil, err
	}
	st, ok := m[s]
	if !ok {
		return nil, &generation.UnknownSectionError{Section: string(s)}
	}
	return st, nil
}

func isDefault(s types.SectionKey) bool {
	for _, d := range types.DefaultSections {
		if d == s {
			return true
		}
	}
	return false
}

// Platform returns a snapshot of every section of p in page order.
func (b *Board) Platform(p types.Platform) ([]State, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, err := b.states(p)
	if err != nil {
		return nil, err
	}
	out := make([]State, 0, len(types.AllSections))
	for _, s := range types.AllSections {
		out = append(out, *m[s])
	}
	return out, nil
}

// Get returns a snapshot of one section.
func (b *Board) Get(p types.Platform, s types.SectionKey) (State, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, err := b.state(p, s)
	if err != nil {
		return State{}, err
	}
	return *st, nil
}

// Begin moves a section to generating.
func (b *Board) Begin(p types.Platform, s types.SectionKey) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, err := b.state(p, s)
	if err != nil {
		return err
	}
	return b.move(p, st, StatusGenerating)
}

// Complete records generated content. usedFallback marks template content
// that stood in for a failed model call.
func (b *Board) Complete(p types.Platform, s types.SectionKey, content string, usedFallback bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, err := b.state(p, s)
	if err != nil {
		return err
	}
	if err := b.move(p, st, StatusComplete); err != nil {
		return err
	}
	st.Content = content
	st.UsedFallback = usedFallback
	st.Error = ""
	return nil
}

// Fail records a generation failure. A non-empty fallback replaces the
// previous content so the section is never left blank.
func (b *Board) Fail(p types.Platform, s types.SectionKey, cause error, fallback string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, err := b.state(p, s)
	if err != nil {
		return err
	}
	if err := b.move(p, st, StatusError); err != nil {
		return err
	}
	if cause != nil {
		st.Error = cause.Error()
	}
	if fallback != "" {
		st.Content = fallback
		st.UsedFallback = true
	}
	return nil
}

// SetEnabled includes or excludes a section from sweeps. Content is kept.
func (b *Board) SetEnabled(p types.Platform, s types.SectionKey, enabled bool) (State, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, err := b.state(p, s)
	if err != nil {
		return State{}, err
	}
	st.Enabled = enabled
	st.UpdatedAt = b.now()
	return *st, nil
}

// Toggle flips a section's enabled flag.
func (b *Board) Toggle(p types.Platform, s types.SectionKey) (State, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, err := b.state(p, s)
	if err != nil {
		return State{}, err
	}
	st.Enabled = !st.Enabled
	st.UpdatedAt = b.now()
	return *st, nil
}

// PlatformComplete reports whether every enabled section of p is complete.
// A platform with no enabled sections is not complete.
func (b *Board) PlatformComplete(p types.Platform) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, err := b.states(p)
	if err != nil {
		return false
	}
	enabled := 0
	for _, st := range m {
		if !st.Enabled {
			continue
		}
		enabled++
		if st.Status != StatusComplete {
			return false
		}
	}
	return enabled > 0
}

func (b *Board) move(p types.Platform, st *State, to Status) error {
	if !CanTransition(st.Status, to) {
		return &TransitionError{Platform: p, Section: st.Section, From: st.Status, To: to}
	}
	st.Status = to
	st.UpdatedAt = b.now()
	return nil
}

// Generate runs one section through gen. Generator failures leave the
// section in error with template content; they are not returned. The error
// result covers only bad input, illegal transitions and cancellation.
func (b *Board) Generate(ctx context.Context, p types.Platform, s types.SectionKey, product *types.ProductData, gen generation.Generator) (State, error) {
	if err := b.Begin(p, s); err != nil {
		return State{}, err
	}

	var (
		content  string
		fallback string
		err      error
	)
	if r, ok := gen.(*generation.Resilient); ok {
		var out generation.Outcome
		out, err = r.GenerateDetailed(ctx, product, p, s)
		content = out.Content
		// A substituted template still counts as a failed section.
		if err == nil && out.UsedFallback && out.Cause != nil {
			err, fallback = out.Cause, out.Content
		}
	} else {
		content, err = gen.Generate(ctx, product, p, s)
	}

	if err != nil {
		if fallback == "" {
			fallback, _ = generation.FallbackGenerator{}.Generate(context.WithoutCancel(ctx), product, p, s)
		}
		b.logger.Warn("section generation failed",
			zap.String("platform", string(p)),
			zap.String("section", string(s)),
			zap.Error(err))
		if ferr := b.Fail(p, s, err, fallback); ferr != nil {
			return State{}, ferr
		}
		st, _ := b.Get(p, s)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return st, ctxErr
		}
		return st, nil
	}

	if err := b.Complete(p, s, content, false); err != nil {
		return State{}, err
	}
	return b.Get(p, s)
}

// SweepResult is the outcome of a sweep over a platform.
type SweepResult struct {
	Platform types.Platform `json:"platform"`
	Sections []State        `json:"sections"`
	Complete bool           `json:"complete"`
	// Busy lists enabled sections skipped because they were already generating.
	Busy []types.SectionKey `json:"busy,omitempty"`
}

// Sweep regenerates every enabled section of p, at most concurrency at a
// time. Each section succeeds or fails on its own.
func (b *Board) Sweep(ctx context.Context, p types.Platform, product *types.ProductData, gen generation.Generator, concurrency int) (*SweepResult, error) {
	snapshot, err := b.Platform(p)
	if err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var (
		busyMu sync.Mutex
		busy   []types.SectionKey
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, st := range snapshot {
		if !st.Enabled {
			continue
		}
		section := st.Section
		g.Go(func() error {
			_, err := b.Generate(gctx, p, section, product, gen)
			var te *TransitionError
			switch {
			case err == nil:
				return nil
			case errors.As(err, &te):
				busyMu.Lock()
				busy = append(busy, section)
				busyMu.Unlock()
				return nil
			default:
				return err
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sections, err := b.Platform(p)
	if err != nil {
		return nil, err
	}
	return &SweepResult{
		Platform: p,
		Sections: sections,
		Complete: b.PlatformComplete(p),
		Busy:     sortedKeys(busy),
	}, nil
}

func sortedKeys(keys []types.SectionKey) []types.SectionKey {
	if len(keys) == 0 {
		return nil
	}
	out := make([]types.SectionKey, 0, len(keys))
	for _, s := range types.AllSections {
		for _, k := range keys {
			if k == s {
				out = append(out, s)
			}
		}
	}
	return out
}
