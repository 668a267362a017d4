package batch

import (
	"context"
	"errors"
	"image"
	"math"
	"sync"
	"testing"

	"github.com/benoitkugler/icondup/svgnorm"
	"github.com/benoitkugler/icondup/svgraster"
	"github.com/benoitkugler/icondup/svgwidget"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const (
	blackSquare = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 128 128"><rect width="128" height="128" fill="#000"/></svg>`
	transparent = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 128 128"><rect width="128" height="128" fill="none"/></svg>`
	circle      = `<svg viewBox="0 0 24 24"><circle cx="12" cy="12" r="8" fill="currentColor"/></svg>`
)

type blocking struct {
	started chan struct{}
	release chan struct{}
}

func newBlocking() blocking {
	return blocking{started: make(chan struct{}), release: make(chan struct{})}
}

func (b blocking) Rasterize(ctx context.Context, r *svgraster.Rasterizer) (*image.RGBA, error) {
	close(b.started)
	<-b.release
	return r.RasterizeMarkup(ctx, blackSquare)
}

type panicking struct{}

func (panicking) Rasterize(context.Context, *svgraster.Rasterizer) (*image.RGBA, error) {
	panic("unexpected")
}

// touched records whether it has been rasterized
type touched struct{ done *bool }

func (t touched) Rasterize(ctx context.Context, r *svgraster.Rasterizer) (*image.RGBA, error) {
	*t.done = true
	return r.RasterizeMarkup(ctx, blackSquare)
}

type progressRecorder struct {
	mu    sync.Mutex
	steps []Progress
}

func (pr *progressRecorder) record(p Progress) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.steps = append(pr.steps, p)
}

func (pr *progressRecorder) get() []Progress {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return append([]Progress(nil), pr.steps...)
}

func TestSameAndInverted(t *testing.T) {
	o := New()
	scores, err := o.Run(context.Background(), blackSquare, []Candidate{
		{Name: "same", Source: svgraster.Markup(blackSquare)},
		{Name: "inverted", Source: svgraster.Markup(transparent)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := scores["same"]; !ok || s != 100 {
		t.Errorf("expected same = 100, got %v (%v)", s, ok)
	}
	// the surface is white before drawing: white against black
	// differs on the color channels only
	s, ok := scores["inverted"]
	if !ok {
		t.Fatal("inverted candidate missing")
	}
	if math.Abs(s-25) > 0.5 {
		t.Errorf("expected inverted ~ 25, got %f", s)
	}
}

func TestFailingCandidates(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	var (
		pr        progressRecorder
		completed []map[string]float64
	)
	o := New(
		WithLogger(zap.New(core)),
		WithProgress(pr.record),
		WithCompletion(func(m map[string]float64) { completed = append(completed, m) }),
	)
	candidates := []Candidate{
		{Name: "a", Source: svgraster.Markup(blackSquare)},
		{Name: "broken", Source: svgraster.Markup("<svg")},
		{Name: "b", Source: svgraster.Markup(circle)},
		{Name: "panic", Source: panicking{}},
		{Name: "nil"},
		{Name: "c", Source: svgraster.Markup(transparent)},
	}
	scores, err := o.Run(context.Background(), blackSquare, candidates)
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %v", scores)
	}
	for _, name := range []string{"a", "b", "c"} {
		if s, ok := scores[name]; !ok || s < 0 || s > 100 {
			t.Errorf("invalid score for %s: %f (%v)", name, s, ok)
		}
	}

	steps := pr.get()
	if len(steps) != len(candidates)+2 {
		t.Fatalf("unexpected progress %v", steps)
	}
	for i, p := range steps[:len(candidates)+1] {
		if p != (Progress{Current: i, Total: len(candidates)}) {
			t.Errorf("unexpected progress at step %d: %v", i, p)
		}
	}
	if last := steps[len(steps)-1]; last != (Progress{}) {
		t.Errorf("expected final reset progress, got %v", last)
	}

	if len(completed) != 1 || len(completed[0]) != 3 {
		t.Errorf("unexpected completion %v", completed)
	}
	if logs.Len() != 3 {
		t.Errorf("expected 3 warnings, got %d", logs.Len())
	}
	for _, entry := range logs.All() {
		if _, ok := entry.ContextMap()["candidate"]; !ok {
			t.Errorf("missing candidate name in log %v", entry)
		}
	}

	if o.Running() || o.Progress() != (Progress{}) {
		t.Error("orchestrator should be idle")
	}
	if len(o.Scores()) != 3 {
		t.Errorf("unexpected scores %v", o.Scores())
	}
}

func TestInvalidReference(t *testing.T) {
	var (
		pr   progressRecorder
		done bool
	)
	o := New(WithProgress(pr.record))
	for _, ref := range []string{"", "<html><body/></html>", "<svg><g></svg>"} {
		_, err := o.Run(context.Background(), ref, []Candidate{{Name: "a", Source: touched{&done}}})
		if !errors.Is(err, svgnorm.ErrInvalidMarkup) {
			t.Errorf("expected invalid markup, got %v", err)
		}
	}
	if done {
		t.Error("candidate should not be processed")
	}
	if len(pr.get()) != 0 {
		t.Errorf("unexpected progress %v", pr.get())
	}
	if o.Running() {
		t.Error("orchestrator should be idle")
	}

	// an unusable view box is ignored, not rejected
	scores, err := o.Run(context.Background(), `<svg viewBox="0 0 1"><rect width="128" height="128"/></svg>`,
		[]Candidate{{Name: "same", Source: svgraster.Markup(blackSquare)}})
	if err != nil {
		t.Fatal(err)
	}
	if scores["same"] != 100 {
		t.Errorf("expected identical rendering, got %v", scores)
	}
}

func TestReentrantRun(t *testing.T) {
	o := New()
	b := newBlocking()
	type result struct {
		scores map[string]float64
		err    error
	}
	out := make(chan result)
	go func() {
		scores, err := o.Run(context.Background(), blackSquare, []Candidate{{Name: "blocking", Source: b}})
		out <- result{scores, err}
	}()
	<-b.started

	if !o.Running() {
		t.Fatal("expected running state")
	}
	before := o.Progress()
	var done bool
	_, err := o.Run(context.Background(), blackSquare, []Candidate{{Name: "other", Source: touched{&done}}})
	if !errors.Is(err, ErrRunning) {
		t.Errorf("expected ErrRunning, got %v", err)
	}
	if done {
		t.Error("second run should not process candidates")
	}
	if o.Progress() != before || before != (Progress{Current: 1, Total: 1}) {
		t.Errorf("progress changed: %v -> %v", before, o.Progress())
	}

	close(b.release)
	res := <-out
	if res.err != nil {
		t.Fatal(res.err)
	}
	if res.scores["blocking"] != 100 {
		t.Errorf("unexpected scores %v", res.scores)
	}
}

func TestResetMidRun(t *testing.T) {
	var completed int
	o := New(WithCompletion(func(map[string]float64) { completed++ }))
	b := newBlocking()
	errc := make(chan error)
	go func() {
		_, err := o.Run(context.Background(), blackSquare, []Candidate{
			{Name: "blocking", Source: b},
			{Name: "next", Source: svgraster.Markup(blackSquare)},
		})
		errc <- err
	}()
	<-b.started

	o.Reset()
	if o.Running() || o.Progress() != (Progress{}) || len(o.Scores()) != 0 {
		t.Error("reset should go back to idle")
	}
	close(b.release)
	if err := <-errc; !errors.Is(err, ErrSuperseded) {
		t.Errorf("expected ErrSuperseded, got %v", err)
	}
	if len(o.Scores()) != 0 {
		t.Errorf("stale run wrote scores: %v", o.Scores())
	}
	if completed != 0 {
		t.Error("superseded run should not complete")
	}

	// a new run is accepted
	scores, err := o.Run(context.Background(), blackSquare, []Candidate{{Name: "a", Source: svgraster.Markup(blackSquare)}})
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 1 || completed != 1 {
		t.Errorf("unexpected scores %v", scores)
	}
}

func TestCanceledRun(t *testing.T) {
	reference, err := svgraster.New().RasterizeMarkup(context.Background(), blackSquare)
	if err != nil {
		t.Fatal(err)
	}
	o := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = o.RunImage(ctx, reference, []Candidate{{Name: "a", Source: svgraster.Markup(blackSquare)}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if o.Running() {
		t.Error("orchestrator should be idle")
	}

	if _, err := o.RunImage(context.Background(), nil, nil); err == nil {
		t.Error("expected error for missing reference")
	}
}

func TestEmptyBatch(t *testing.T) {
	var pr progressRecorder
	o := New(WithProgress(pr.record))
	scores, err := o.Run(context.Background(), blackSquare, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 0 {
		t.Errorf("unexpected scores %v", scores)
	}
	if steps := pr.get(); len(steps) != 2 || steps[0] != (Progress{}) || steps[1] != (Progress{}) {
		t.Errorf("unexpected progress %v", steps)
	}
}

func TestWidgetCandidates(t *testing.T) {
	host := svgwidget.NewHost(nil)
	rasterizer := svgraster.New()
	o := New(WithRasterizer(rasterizer))
	scores, err := o.Run(context.Background(), circle, []Candidate{
		{Name: "widget", Source: svgwidget.Icon{Widget: svgwidget.Static(circle), Host: host}},
		{Name: "blank", Source: svgwidget.Icon{Widget: svgwidget.Static(""), Host: host}},
		{Name: "markup", Source: svgraster.Markup(circle)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 2 || scores["widget"] != 100 || scores["markup"] != 100 {
		t.Errorf("unexpected scores %v", scores)
	}
	if host.Attached() != 0 {
		t.Error("offscreen containers leaked")
	}
	if rasterizer.Outstanding() != 0 {
		t.Error("markup handles leaked")
	}
}
