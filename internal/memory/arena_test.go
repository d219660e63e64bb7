package memory

import (
	"testing"

	"sst/internal/errors"
)

func TestAllocateAndRead(t *testing.T) {
	m := NewManager()
	scope := m.EnterScope()

	h := m.Allocate([]byte("hello"))
	got, err := m.String(h)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}

	m.Release(scope)
	if s := m.Stats(); s.Outstanding != 0 {
		t.Errorf("outstanding after release: %d, want 0", s.Outstanding)
	}
}

func TestAllocationDoesNotAliasInput(t *testing.T) {
	m := NewManager()
	scope := m.EnterScope()
	defer m.Release(scope)

	buf := []byte("abc")
	h := m.Allocate(buf)
	buf[0] = 'x'

	got, _ := m.String(h)
	if got != "abc" {
		t.Errorf("allocation aliases caller buffer: got %q", got)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	m := NewManager()
	outer := m.EnterScope()
	h := m.Allocate([]byte("orig"))

	inner := m.EnterScope()
	c, err := m.Copy(h)
	if err != nil {
		t.Fatal(err)
	}

	// The copy belongs to the inner scope and dies with it.
	m.Release(inner)
	if _, err := m.Bytes(c); err == nil {
		t.Error("copy still readable after owning scope released")
	}
	// The original survives.
	if got, err := m.String(h); err != nil || got != "orig" {
		t.Errorf("original damaged: %q, %v", got, err)
	}

	m.Release(outer)
}

func TestCopyIntoOuterScope(t *testing.T) {
	m := NewManager()
	outer := m.EnterScope()
	inner := m.EnterScope()

	h := m.Allocate([]byte("value")) // attributed to inner
	c, err := m.CopyInto(outer, h)
	if err != nil {
		t.Fatal(err)
	}

	m.Release(inner)
	// Inner allocation is gone, the outer copy survives.
	if _, err := m.Bytes(h); err == nil {
		t.Error("inner allocation still live after release")
	}
	if got, err := m.String(c); err != nil || got != "value" {
		t.Errorf("outer copy damaged: %q, %v", got, err)
	}

	m.Release(outer)
	if s := m.Stats(); s.Outstanding != 0 {
		t.Errorf("outstanding after all releases: %d, want 0", s.Outstanding)
	}
}

func TestUseAfterFree(t *testing.T) {
	m := NewManager()
	scope := m.EnterScope()
	h := m.Allocate([]byte("gone"))
	m.Release(scope)

	_, err := m.Bytes(h)
	if err == nil {
		t.Fatal("expected use-after-free error")
	}
	serr, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if serr.Phase != errors.RuntimeError || serr.Code != errors.UseAfterFree {
		t.Errorf("got %s/%s, want RuntimeError/UseAfterFree", serr.Phase, serr.Code)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	m := NewManager()
	scope := m.EnterScope()
	m.Allocate([]byte("x"))

	m.Release(scope)
	m.Release(scope) // no-op

	if s := m.Stats(); s.Outstanding != 0 {
		t.Errorf("outstanding: %d, want 0", s.Outstanding)
	}
}

func TestReleaseUnwindsNestedScopes(t *testing.T) {
	m := NewManager()
	outer := m.EnterScope()
	m.Allocate([]byte("outer"))
	m.EnterScope()
	m.Allocate([]byte("inner"))

	// Releasing the outer scope takes the inner one with it (LIFO).
	m.Release(outer)
	if s := m.Stats(); s.Outstanding != 0 {
		t.Errorf("outstanding: %d, want 0", s.Outstanding)
	}
}

func TestSlotReuseInvalidatesOldHandle(t *testing.T) {
	m := NewManager()
	s1 := m.EnterScope()
	h1 := m.Allocate([]byte("first"))
	m.Release(s1)

	s2 := m.EnterScope()
	h2 := m.Allocate([]byte("second"))
	if h2.index() != h1.index() {
		t.Errorf("slot not recycled: got %d, want %d", h2.index(), h1.index())
	}
	if h2 == h1 {
		t.Error("recycled slot reissued the same handle")
	}
	if got, _ := m.String(h2); got != "second" {
		t.Errorf("got %q, want %q", got, "second")
	}

	// The stale handle must not read the new occupant of its slot.
	_, err := m.Bytes(h1)
	if err == nil {
		t.Fatal("stale handle dereferences after slot reuse")
	}
	if serr := err.(*errors.Error); serr.Code != errors.UseAfterFree {
		t.Errorf("code %s, want UseAfterFree", serr.Code)
	}
	m.Release(s2)
}

func TestStatsCounters(t *testing.T) {
	m := NewManager()
	scope := m.EnterScope()
	m.Allocate([]byte("12345"))
	m.Allocate([]byte("123"))

	s := m.Stats()
	if s.TotalAllocs != 2 || s.Outstanding != 2 {
		t.Errorf("allocs=%d outstanding=%d, want 2 and 2", s.TotalAllocs, s.Outstanding)
	}
	if s.LiveBytes != 8 || s.PeakBytes != 8 {
		t.Errorf("live=%d peak=%d, want 8 and 8", s.LiveBytes, s.PeakBytes)
	}

	m.Release(scope)
	s = m.Stats()
	if s.LiveBytes != 0 || s.PeakBytes != 8 {
		t.Errorf("after release live=%d peak=%d, want 0 and 8", s.LiveBytes, s.PeakBytes)
	}
}
