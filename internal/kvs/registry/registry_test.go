package registry

import (
	"testing"

	"github.com/kvsdriver/kvs/internal/kvs/engine"
	"github.com/kvsdriver/kvs/internal/kvs/value"
)

func TestMultipleInstanceIdsAreIndependent(t *testing.T) {
	dir := t.TempDir()
	r := New()

	h1, err := r.Open(engine.Params{InstanceID: 1, Dir: dir})
	if err != nil {
		t.Fatalf("Open(1) error = %v", err)
	}
	h2, err := r.Open(engine.Params{InstanceID: 2, Dir: dir})
	if err != nil {
		t.Fatalf("Open(2) error = %v", err)
	}

	h1.Kvs().Set("number", value.F64(111.1))
	h2.Kvs().Set("number", value.F64(222.2))

	v1, _ := h1.Kvs().Get("number")
	v2, _ := h2.Kvs().Get("number")
	if got, _ := v1.AsF64(); got != 111.1 {
		t.Errorf("h1 number = %v, want 111.1", v1)
	}
	if got, _ := v2.AsF64(); got != 222.2 {
		t.Errorf("h2 number = %v, want 222.2", v2)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestSameInstanceIdSharesState(t *testing.T) {
	dir := t.TempDir()
	r := New()

	a, err := r.Open(engine.Params{InstanceID: 1, Dir: dir})
	if err != nil {
		t.Fatalf("Open() #1 error = %v", err)
	}
	b, err := r.Open(engine.Params{InstanceID: 1, Dir: dir})
	if err != nil {
		t.Fatalf("Open() #2 error = %v", err)
	}

	a.Kvs().Set("number", value.F64(111.1))

	v, err := b.Kvs().Get("number")
	if err != nil {
		t.Fatalf("Get() via second handle error = %v", err)
	}
	if got, _ := v.AsF64(); got != 111.1 {
		t.Errorf("second handle sees %v, want 111.1 (shared state)", v)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (one shared instance)", r.Len())
	}
}

func TestSameInstanceIdSeesLastWrite(t *testing.T) {
	dir := t.TempDir()
	r := New()

	a, _ := r.Open(engine.Params{InstanceID: 1, Dir: dir})
	b, _ := r.Open(engine.Params{InstanceID: 1, Dir: dir})

	a.Kvs().Set("number", value.F64(111.1))
	b.Kvs().Set("number", value.F64(222.2))

	va, _ := a.Kvs().Get("number")
	vb, _ := b.Kvs().Get("number")
	if got, _ := va.AsF64(); got != 222.2 {
		t.Errorf("a sees %v after b's write, want 222.2 (shared map)", va)
	}
	if got, _ := vb.AsF64(); got != 222.2 {
		t.Errorf("b sees %v, want 222.2", vb)
	}
}

func TestReleaseDropsLastReference(t *testing.T) {
	dir := t.TempDir()
	r := New()

	a, _ := r.Open(engine.Params{InstanceID: 1, Dir: dir})
	b, _ := r.Open(engine.Params{InstanceID: 1, Dir: dir})
	a.Kvs().Set("number", value.F64(111.1))

	if err := r.Release(a); err != nil {
		t.Fatalf("Release(a) error = %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("Len() after first release = %d, want 1", r.Len())
	}

	if err := r.Release(b); err != nil {
		t.Fatalf("Release(b) error = %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() after last release = %d, want 0", r.Len())
	}

	c, err := r.Open(engine.Params{InstanceID: 1, Dir: dir})
	if err != nil {
		t.Fatalf("reopen after full release error = %v", err)
	}
	if _, err := c.Kvs().Get("number"); err == nil {
		t.Error("reopen after release should not see prior unflushed live state")
	}
}
