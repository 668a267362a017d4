// Compares a reference icon against a list of candidates,
// one candidate at a time, reporting progress as it goes.
package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"maps"
	"sync"
	"time"

	"github.com/benoitkugler/icondup/pixdiff"
	"github.com/benoitkugler/icondup/svgnorm"
	"github.com/benoitkugler/icondup/svgraster"
	"go.uber.org/zap"
)

var (
	// ErrRunning is returned when a run is requested while another one is in progress.
	ErrRunning = errors.New("a comparison is already running")
	// ErrSuperseded is returned by a run interrupted by Reset.
	ErrSuperseded = errors.New("comparison superseded by a reset")
)

// Renderable is an icon source which may be turned into
// a canonical image.
type Renderable interface {
	Rasterize(ctx context.Context, r *svgraster.Rasterizer) (*image.RGBA, error)
}

// Candidate is one icon compared to the reference.
type Candidate struct {
	Name   string
	Source Renderable
}

// Progress counts the candidates attempted so far.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Orchestrator runs comparisons. At most one run is active at a time.
// Observers (Running, Progress, Scores) and Reset may be called from any goroutine.
type Orchestrator struct {
	raster     *svgraster.Rasterizer
	logger     *zap.Logger
	onProgress func(Progress)
	onComplete func(map[string]float64)

	// work serializes the use of raster, which a superseded
	// run may still hold
	work sync.Mutex

	mu         sync.Mutex
	running    bool
	generation uint64
	progress   Progress
	scores     map[string]float64
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used to report failing candidates.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithProgress registers a callback called on every progress update.
func WithProgress(fn func(Progress)) Option {
	return func(o *Orchestrator) { o.onProgress = fn }
}

// WithCompletion registers a callback called with the final scores
// of every completed run.
func WithCompletion(fn func(map[string]float64)) Option {
	return func(o *Orchestrator) { o.onComplete = fn }
}

// WithRasterizer sets the rasterizer used for every icon.
func WithRasterizer(r *svgraster.Rasterizer) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.raster = r
		}
	}
}

// New returns an idle orchestrator.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	if o.raster == nil {
		o.raster = svgraster.New(svgraster.WithLogger(o.logger))
	}
	return o
}

// Running returns true while a run is in progress.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// Progress returns the current progress, which is (0, 0) when idle.
func (o *Orchestrator) Progress() Progress {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.progress
}

// Scores returns a copy of the scores accumulated by the current
// or last completed run.
func (o *Orchestrator) Scores() map[string]float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return maps.Clone(o.scores)
}

// Reset clears the scores and the progress and goes back to idle.
// A run in progress is abandoned: it returns ErrSuperseded and its
// results are discarded.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generation++
	o.running = false
	o.progress = Progress{}
	o.scores = nil
}

// Run normalizes and rasterizes `referenceMarkup`, then compares it to every candidate,
// as RunImage does.
// An invalid reference is reported before any candidate is processed.
// A call made while another run is in progress is rejected with ErrRunning,
// leaving the running state untouched.
func (o *Orchestrator) Run(ctx context.Context, referenceMarkup string, candidates []Candidate) (map[string]float64, error) {
	gen, err := o.begin()
	if err != nil {
		return nil, err
	}
	reference, err := o.rasterizeReference(ctx, referenceMarkup)
	if err != nil {
		o.abort(gen)
		return nil, fmt.Errorf("invalid reference: %w", err)
	}
	return o.run(ctx, gen, reference, candidates)
}

func (o *Orchestrator) rasterizeReference(ctx context.Context, markup string) (*image.RGBA, error) {
	icon, err := svgnorm.Normalize(markup)
	if err != nil {
		return nil, err
	}
	o.work.Lock()
	defer o.work.Unlock()
	return o.raster.Rasterize(ctx, icon)
}

// RunImage compares `reference` to every candidate, in order, and returns
// the similarity (in [0, 100]) of every candidate which could be rasterized.
// Failing candidates are logged and skipped.
//
// It returns ErrRunning if another run is in progress, ErrSuperseded if Reset
// is called before completion, or the context error if `ctx` is done.
func (o *Orchestrator) RunImage(ctx context.Context, reference *image.RGBA, candidates []Candidate) (map[string]float64, error) {
	if reference == nil {
		return nil, errors.New("missing reference image")
	}
	gen, err := o.begin()
	if err != nil {
		return nil, err
	}
	return o.run(ctx, gen, reference, candidates)
}

// begin moves to the running state.
func (o *Orchestrator) begin() (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return 0, ErrRunning
	}
	o.running = true
	o.generation++
	o.progress = Progress{}
	o.scores = make(map[string]float64)
	return o.generation, nil
}

// abort goes back to idle, if the run is still current.
func (o *Orchestrator) abort(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return
	}
	o.running = false
	o.progress = Progress{}
}

// publish updates the progress, returning false if the run is superseded.
func (o *Orchestrator) publish(gen uint64, p Progress) bool {
	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return false
	}
	o.progress = p
	o.mu.Unlock()

	if o.onProgress != nil {
		o.onProgress(p)
	}
	return true
}

// record stores the score of one candidate, returning false if the run is superseded.
func (o *Orchestrator) record(gen uint64, name string, score float64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return false
	}
	o.scores[name] = score
	return true
}

func (o *Orchestrator) run(ctx context.Context, gen uint64, reference *image.RGBA, candidates []Candidate) (map[string]float64, error) {
	total := len(candidates)
	start := time.Now()
	o.logger.Info("starting comparison", zap.Int("candidates", total))

	if !o.publish(gen, Progress{Current: 0, Total: total}) {
		return nil, ErrSuperseded
	}
	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			o.abort(gen)
			return nil, err
		}
		if !o.publish(gen, Progress{Current: i + 1, Total: total}) {
			return nil, ErrSuperseded
		}

		score, err := o.score(ctx, reference, candidate)
		if err != nil {
			if ctx.Err() != nil {
				o.abort(gen)
				return nil, ctx.Err()
			}
			o.logger.Warn("skipping candidate", zap.String("candidate", candidate.Name), zap.Error(err))
			continue
		}
		if !o.record(gen, candidate.Name, score) {
			return nil, ErrSuperseded
		}
		o.logger.Debug("candidate compared", zap.String("candidate", candidate.Name), zap.Float64("score", score))
	}

	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return nil, ErrSuperseded
	}
	o.running = false
	o.progress = Progress{}
	result := maps.Clone(o.scores)
	o.mu.Unlock()

	o.logger.Info("comparison done", zap.Int("compared", len(result)),
		zap.Int("skipped", total-len(result)), zap.Duration("elapsed", time.Since(start)))
	if o.onProgress != nil {
		o.onProgress(Progress{})
	}
	if o.onComplete != nil {
		o.onComplete(maps.Clone(result))
	}
	return result, nil
}

// score rasterizes and compares one candidate, turning panics into errors.
func (o *Orchestrator) score(ctx context.Context, reference *image.RGBA, candidate Candidate) (score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()
	if candidate.Source == nil {
		return 0, errors.New("missing source")
	}

	o.work.Lock()
	defer o.work.Unlock()
	img, err := candidate.Source.Rasterize(ctx, o.raster)
	if err != nil {
		return 0, err
	}
	return pixdiff.CompareImages(reference, img), nil
}
