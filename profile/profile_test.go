package profile

import "testing"

func TestNew(t *testing.T) {
	p := New(WithMode("cpu"), WithPath("/tmp/p"), WithQuiet(true))

	if p.Mode != "cpu" || p.Path != "/tmp/p" || !p.Quiet {
		t.Errorf("unexpected profiler %+v", p)
	}
}

func TestStart_NoMode(t *testing.T) {
	stopper := New().Start()
	if _, ok := stopper.(ignore); !ok {
		t.Errorf("expected no-op profiler, got %T", stopper)
	}

	stopper.Stop()
}
