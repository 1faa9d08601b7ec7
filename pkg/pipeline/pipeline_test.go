package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/diagramtool/diagramtool/pkg/cache"
	"github.com/diagramtool/diagramtool/pkg/errors"
	"github.com/diagramtool/diagramtool/pkg/layout"
	"github.com/diagramtool/diagramtool/pkg/observability"
)

const shapesSource = `from enum import Enum


class Color(Enum):
    RED = 1
    GREEN = 2


class Shape:
    def __init__(self, color: Color):
        self.color = color

    def area(self) -> float:
        return 0.0


class Circle(Shape):
    def __init__(self, radius: float):
        self.radius = radius
`

func writeEntry(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shapes.py")
	if err := os.WriteFile(path, []byte(shapesSource), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"missing entry", Options{}, errors.ErrCodeInvalidInput},
		{"unsupported file", Options{Entry: "main.rb"}, errors.ErrCodeUnsupportedFile},
		{"unknown language", Options{Entry: "main.py", Language: "cobol"}, errors.ErrCodeUnsupported},
		{"unknown strategy", Options{Entry: "main.py", Strategy: "spiral"}, errors.ErrCodeInvalidStrategy},
		{"unknown format", Options{Entry: "main.py", Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"negative margin", Options{Entry: "main.py", Margin: -1}, errors.ErrCodeInvalidInput},
		{"negative scale", Options{Entry: "main.py", Scale: -2}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Entry: "app/main.py", Formats: []string{"TikZ", "svg", "tex"}, Strategy: "ROWS"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Language != "python" {
		t.Errorf("Language = %q", opts.Language)
	}
	if opts.Strategy != layout.StrategyRows || opts.Margin != DefaultMargin {
		t.Errorf("Strategy/Margin = %s/%g", opts.Strategy, opts.Margin)
	}
	if !reflect.DeepEqual(opts.Formats, []string{"tex", "svg"}) {
		t.Errorf("Formats = %v", opts.Formats)
	}
	if opts.Scale != 2 || opts.Logger == nil {
		t.Errorf("Scale = %g, Logger = %v", opts.Scale, opts.Logger)
	}

	bare := Options{Entry: "x.py"}
	if err := bare.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if bare.Strategy != DefaultStrategy || !reflect.DeepEqual(bare.Formats, DefaultFormats) {
		t.Errorf("bare defaults: %s %v", bare.Strategy, bare.Formats)
	}
}

func TestOptionsEngine(t *testing.T) {
	opts := Options{Strategy: "rows", MaxRowWidth: 900, Margin: 20, Recenter: true}
	e, err := opts.Engine()
	if err != nil {
		t.Fatal(err)
	}
	rows, ok := e.Strategy.(layout.Rows)
	if !ok || rows.MaxRowWidth != 900 {
		t.Errorf("Strategy = %#v", e.Strategy)
	}
	if e.Margin != 20 || !e.Recenter {
		t.Errorf("Engine = %+v", e)
	}
}

func TestExecute(t *testing.T) {
	entry := writeEntry(t)
	mem, err := cache.NewMemoryCache(0)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(mem, nil, nil)
	ctx := context.Background()
	opts := Options{Entry: entry, Strategy: "rows", Formats: []string{"svg", "tex", "dot", "json"}}

	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.RunID == "" || res.ModelHash == "" {
		t.Error("run id or model hash missing")
	}
	if res.Stats.Classes != 2 || res.Stats.Enums != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Error("first run hit the cache")
	}
	if len(res.Artifacts) != 4 {
		t.Fatalf("artifacts = %d", len(res.Artifacts))
	}
	if !strings.Contains(string(res.Artifacts["svg"]), `id="entity-Circle"`) {
		t.Error("svg lacks Circle")
	}
	if !strings.Contains(string(res.Artifacts["tex"]), `\inherit{Shape}`) {
		t.Error("tex lacks the inheritance")
	}
	if !strings.Contains(string(res.Artifacts["dot"]), `"Circle" -> "Shape"`) {
		t.Error("dot lacks the inheritance edge")
	}

	again, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.LayoutHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run cache info = %+v", again.CacheInfo)
	}
	if again.RunID == res.RunID {
		t.Error("run ids should differ")
	}
	if !reflect.DeepEqual(again.Layout, res.Layout) {
		t.Error("cached layout differs")
	}

	opts.Refresh = true
	fresh, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.CacheInfo.LayoutHit || fresh.CacheInfo.RenderHit {
		t.Error("refresh run read the cache")
	}
}

func TestExecuteLayoutOptionsChangeKey(t *testing.T) {
	entry := writeEntry(t)
	mem, _ := cache.NewMemoryCache(0)
	r := NewRunner(mem, nil, nil)
	ctx := context.Background()

	if _, err := r.Execute(ctx, Options{Entry: entry, Strategy: "rows"}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Execute(ctx, Options{Entry: entry, Strategy: "graph"})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.LayoutHit {
		t.Error("different strategy reused the cached layout")
	}
	if res.Layout.Strategy != layout.StrategyGraph {
		t.Errorf("layout strategy = %s", res.Layout.Strategy)
	}
}

func TestExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	_, err := r.Execute(ctx, Options{Entry: filepath.Join(t.TempDir(), "missing.py")})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing entry: err = %v", err)
	}

	cyclic := filepath.Join(t.TempDir(), "cyclic.py")
	src := "class A(B):\n    pass\n\n\nclass B(A):\n    pass\n"
	if err := os.WriteFile(cyclic, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = r.Execute(ctx, Options{Entry: cyclic})
	if !errors.Is(err, errors.ErrCodeInheritanceCycle) {
		t.Errorf("cyclic hierarchy: err = %v", err)
	}
}

func TestParseDump(t *testing.T) {
	entry := writeEntry(t)
	dump := filepath.Join(t.TempDir(), "dump")
	if _, err := Parse(context.Background(), Options{Entry: entry, DumpDir: dump}); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{DumpModelFile, "shapes.py.dump"} {
		if _, err := os.Stat(filepath.Join(dump, name)); err != nil {
			t.Errorf("dump file %s: %v", name, err)
		}
	}
}

func TestRenderFromLayoutData(t *testing.T) {
	entry := writeEntry(t)
	ctx := context.Background()
	m, err := Parse(ctx, Options{Entry: entry})
	if err != nil {
		t.Fatal(err)
	}
	l, err := GenerateLayout(m, Options{Strategy: "rows"})
	if err != nil {
		t.Fatal(err)
	}
	data, err := Render(ctx, l, Options{Formats: []string{"json"}})
	if err != nil {
		t.Fatal(err)
	}

	out, err := RenderFromLayoutData(ctx, data["json"], Options{Formats: []string{"svg"}, Border: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out["svg"]), `stroke="red"`) {
		t.Error("border option not applied")
	}

	if _, err := RenderFromLayoutData(ctx, []byte("{"), Options{}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad layout data: err = %v", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) add(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnParseComplete(_ context.Context, _ string, n int, _ time.Duration, err error) {
	h.add("parse")
}
func (h *recordingHooks) OnLayoutComplete(context.Context, string, time.Duration, error) {
	h.add("layout")
}
func (h *recordingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.add("render")
}
func (h *recordingHooks) OnCacheHit(_ context.Context, stage string) { h.add("hit:" + stage) }

func TestExecuteEmitsHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	t.Cleanup(observability.Reset)

	mem, _ := cache.NewMemoryCache(0)
	r := NewRunner(mem, nil, nil)
	opts := Options{Entry: writeEntry(t)}
	for range 2 {
		if _, err := r.Execute(context.Background(), opts); err != nil {
			t.Fatal(err)
		}
	}

	want := []string{"parse", "layout", "render", "parse", "hit:layout", "hit:artifact"}
	if !reflect.DeepEqual(h.events, want) {
		t.Errorf("events = %v, want %v", h.events, want)
	}
}
