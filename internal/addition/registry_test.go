package addition

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func TestRegistry(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()

	t.Run("List", func(t *testing.T) {
		got := reg.List()
		want := []string{"standard", "scatter", "async", "optimized"}
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("List() = %v, want %v", got, want)
		}
	})

	t.Run("BySelector", func(t *testing.T) {
		for sel, want := range map[int]string{1: "standard", 2: "scatter", 3: "async", 4: "optimized"} {
			name, ok := reg.BySelector(sel)
			if !ok || name != want {
				t.Errorf("BySelector(%d) = %q, %v; want %q", sel, name, ok, want)
			}
		}
		if _, ok := reg.BySelector(9); ok {
			t.Error("BySelector(9) should not resolve")
		}
		if sel, ok := reg.Selector("optimized"); !ok || sel != 4 {
			t.Errorf("Selector(optimized) = %d, %v", sel, ok)
		}
		if _, ok := reg.Selector("nope"); ok {
			t.Error("Selector(nope) should not resolve")
		}
	})

	t.Run("CreateReturnsFreshInstances", func(t *testing.T) {
		s1 := reg.MustCreate("async")
		s2 := reg.MustCreate("async")
		if s1 == s2 {
			t.Error("Create should return a new instance each call")
		}
		if s1.Name() != "async" {
			t.Errorf("Name() = %q", s1.Name())
		}
		if _, err := reg.Create("nonexistent"); err == nil {
			t.Error("Create should fail for an unknown name")
		}
	})

	t.Run("OutputIDsAreDistinct", func(t *testing.T) {
		seen := make(map[string]string)
		for _, name := range reg.List() {
			id := reg.MustCreate(name).OutputID()
			if other, dup := seen[id]; dup {
				t.Errorf("%s and %s share output id %q", name, other, id)
			}
			seen[id] = name
		}
	})
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()

	if err := reg.Register("custom", 1, func() Strategy { return NewStandard() }); err == nil {
		t.Error("registering a taken selector should fail")
	}
	if err := reg.Register("custom", 7, nil); err == nil {
		t.Error("registering a nil creator should fail")
	}
	if err := reg.Register("custom", 7, func() Strategy { return NewOptimized() }); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !reg.Has("custom") || reg.Has("missing") {
		t.Error("Has reports the wrong membership")
	}
	if got := reg.List(); got[len(got)-1] != "custom" {
		t.Errorf("custom should sort last, got %v", got)
	}
}

func TestMustCreatePanicsOnUnknownName(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Error("MustCreate should panic")
		}
	}()
	NewRegistry().MustCreate("nonexistent")
}

type recordingObserver struct {
	mu      sync.Mutex
	updates []ProgressUpdate
}

func (o *recordingObserver) Update(index int, progress float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.updates = append(o.updates, ProgressUpdate{Index: index, Value: progress})
}

func TestProgressSubject(t *testing.T) {
	t.Parallel()
	subject := NewProgressSubject()
	subject.Register(nil)
	if subject.ObserverCount() != 0 {
		t.Fatalf("registering nil should be a no-op")
	}

	o1, o2 := &recordingObserver{}, &recordingObserver{}
	subject.Register(o1)
	subject.Register(o2)
	subject.Notify(2, 0.5)
	subject.Unregister(o1)
	subject.Notify(2, 1.0)

	if len(o1.updates) != 1 || len(o2.updates) != 2 {
		t.Errorf("got %d and %d updates, want 1 and 2", len(o1.updates), len(o2.updates))
	}
	if o2.updates[1] != (ProgressUpdate{Index: 2, Value: 1.0}) {
		t.Errorf("unexpected update %+v", o2.updates[1])
	}
}

func TestChannelObserver(t *testing.T) {
	t.Parallel()
	ch := make(chan ProgressUpdate, 1)
	o := NewChannelObserver(ch)
	o.Update(0, 1.5)
	o.Update(0, 0.2) // dropped, channel full

	if u := <-ch; u.Value != 1.0 {
		t.Errorf("progress should be clamped to 1.0, got %v", u.Value)
	}
	select {
	case u := <-ch:
		t.Errorf("unexpected update %+v", u)
	default:
	}

	NewChannelObserver(nil).Update(0, 0.5)
}

func TestLoggingObserver(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	o := NewLoggingObserver(zerolog.New(&buf).Level(zerolog.DebugLevel), 0)

	for _, p := range []float64{0.1, 0.2, 0.4, 0.5, 1.0} {
		o.Update(1, p)
	}
	// 0.1 (first), 0.4 (step), 1.0 (done)
	if got := strings.Count(buf.String(), "collection progress"); got != 3 {
		t.Errorf("logged %d events, want 3:\n%s", got, buf.String())
	}
}

func TestMetricsAndNoOpObservers(t *testing.T) {
	t.Parallel()
	NewMetricsObserver().Update(0, 0.5)
	NoOpObserver{}.Update(0, 0.5)
}
