// internal/memory/arena.go
package memory

import (
	"fmt"

	"sst/internal/errors"
)

// Handle refers to one heap allocation owned by the Manager. The low
// half indexes a slot, the high half carries the slot's generation:
// releasing a scope bumps the generation of every slot it owned, so a
// stale handle keeps failing even after its slot is recycled.
type Handle int64

const handleIndexBits = 32

func makeHandle(index int, gen uint32) Handle {
	return Handle(int64(gen)<<handleIndexBits | int64(index))
}

func (h Handle) index() int  { return int(int64(h) & (1<<handleIndexBits - 1)) }
func (h Handle) gen() uint32 { return uint32(int64(h) >> handleIndexBits) }

// ScopeID identifies a scope's arena. Scope lifetimes are strictly
// nested: a scope is always released before its parent.
type ScopeID int

type slot struct {
	data  []byte
	scope ScopeID
	gen   uint32
	live  bool
}

type arena struct {
	id      ScopeID
	handles []Handle
}

// Manager owns every heap-backed runtime value. Each active scope has
// an arena; an allocation is attributed to a scope and freed when that
// scope's arena is released.
type Manager struct {
	slots  []slot
	free   []int   // recyclable slot indexes
	arenas []arena // active scope stack, innermost last

	nextScope   ScopeID
	outstanding int
	totalAllocs uint64
	liveBytes   uint64
	peakBytes   uint64
}

// Stats is a snapshot of the manager's counters. Outstanding must be 0
// after full program termination, normal or not.
type Stats struct {
	Outstanding int
	TotalAllocs uint64
	LiveBytes   uint64
	PeakBytes   uint64
}

func NewManager() *Manager {
	return &Manager{}
}

// EnterScope opens a new innermost arena and returns its id.
func (m *Manager) EnterScope() ScopeID {
	id := m.nextScope
	m.nextScope++
	m.arenas = append(m.arenas, arena{id: id})
	return id
}

// Allocate copies data into a fresh allocation attributed to the
// innermost active scope.
func (m *Manager) Allocate(data []byte) Handle {
	if len(m.arenas) == 0 {
		// Allocation outside any scope is an interpreter defect.
		panic("memory: allocate with no active scope")
	}
	return m.allocateIn(&m.arenas[len(m.arenas)-1], data)
}

// AllocateIn attributes the allocation to the given scope rather than
// the innermost one. Assignment to an outer binding uses this so the
// copy lives exactly as long as the binding's owning scope.
func (m *Manager) AllocateIn(scope ScopeID, data []byte) (Handle, error) {
	for i := range m.arenas {
		if m.arenas[i].id == scope {
			return m.allocateIn(&m.arenas[i], data), nil
		}
	}
	return 0, fmt.Errorf("memory: scope %d is not active", scope)
}

func (m *Manager) allocateIn(a *arena, data []byte) Handle {
	buf := make([]byte, len(data))
	copy(buf, data)

	var idx int
	if n := len(m.free); n > 0 {
		idx = m.free[n-1]
		m.free = m.free[:n-1]
		// The generation survives the recycle; old handles stay stale.
		m.slots[idx] = slot{data: buf, scope: a.id, gen: m.slots[idx].gen, live: true}
	} else {
		idx = len(m.slots)
		m.slots = append(m.slots, slot{data: buf, scope: a.id, live: true})
	}
	h := makeHandle(idx, m.slots[idx].gen)

	a.handles = append(a.handles, h)
	m.outstanding++
	m.totalAllocs++
	m.liveBytes += uint64(len(buf))
	if m.liveBytes > m.peakBytes {
		m.peakBytes = m.liveBytes
	}
	return h
}

// Copy produces an independent copy of the allocation behind h,
// attributed to the innermost active scope.
func (m *Manager) Copy(h Handle) (Handle, error) {
	data, err := m.Bytes(h)
	if err != nil {
		return 0, err
	}
	return m.Allocate(data), nil
}

// CopyInto is Copy with explicit scope attribution.
func (m *Manager) CopyInto(scope ScopeID, h Handle) (Handle, error) {
	data, err := m.Bytes(h)
	if err != nil {
		return 0, err
	}
	return m.AllocateIn(scope, data)
}

// Bytes dereferences a handle. A dead or stale handle means the
// interpreter itself violated the ownership discipline.
func (m *Manager) Bytes(h Handle) ([]byte, error) {
	idx := h.index()
	if idx < 0 || idx >= len(m.slots) || !m.slots[idx].live || m.slots[idx].gen != h.gen() {
		return nil, errors.New(errors.RuntimeError, errors.UseAfterFree,
			fmt.Sprintf("dereference of freed handle %d", idx), 0, 0)
	}
	return m.slots[idx].data, nil
}

// String is Bytes as a string.
func (m *Manager) String(h Handle) (string, error) {
	data, err := m.Bytes(h)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Release frees every allocation attributed to scope and closes its
// arena. It is idempotent: releasing an already-released scope is a
// no-op. Scopes must be released innermost-first.
func (m *Manager) Release(scope ScopeID) {
	idx := -1
	for i := range m.arenas {
		if m.arenas[i].id == scope {
			idx = i
			break
		}
	}
	if idx == -1 {
		return // already released
	}
	// LIFO discipline: everything inner to this scope goes too.
	for i := len(m.arenas) - 1; i >= idx; i-- {
		m.releaseArena(&m.arenas[i])
	}
	m.arenas = m.arenas[:idx]
}

func (m *Manager) releaseArena(a *arena) {
	for _, h := range a.handles {
		idx := h.index()
		s := &m.slots[idx]
		if !s.live {
			continue
		}
		m.liveBytes -= uint64(len(s.data))
		s.data = nil
		s.live = false
		s.gen++
		m.free = append(m.free, idx)
		m.outstanding--
	}
	a.handles = nil
}

// Stats returns the current counters.
func (m *Manager) Stats() Stats {
	return Stats{
		Outstanding: m.outstanding,
		TotalAllocs: m.totalAllocs,
		LiveBytes:   m.liveBytes,
		PeakBytes:   m.peakBytes,
	}
}
