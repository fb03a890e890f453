package host

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// Stats holds heap counters of a runtime.
type Stats struct {
	Allocated   uint64
	Collections uint64
	Swept       uint64
	Finalized   uint64
}

// CollectStats holds statistics from a single collection pass.
type CollectStats struct {
	Live      int
	Swept     int
	Finalized int
	Duration  time.Duration
}

// Stats returns cumulative heap counters.
func (rt *Runtime) Stats() Stats { return rt.stats }

// HeapSize returns the number of live heap objects.
func (rt *Runtime) HeapSize() int { return len(rt.heap) }

// Collect runs a full mark-and-sweep pass. Weak handles whose objects are
// unreachable are emptied and their callbacks run, in handle creation order,
// before unreachable objects are swept. Collect is a no-op when called from a
// weak callback.
func (rt *Runtime) Collect() CollectStats {
	if rt.disposed || rt.collecting {
		return CollectStats{}
	}
	rt.collecting = true
	defer func() { rt.collecting = false }()

	start := time.Now()
	rt.mark()

	var dying []*Persistent
	for _, h := range rt.handles {
		if h.weak && h.obj != nil && !h.obj.marked {
			dying = append(dying, h)
		}
	}
	sort.Slice(dying, func(i, j int) bool { return dying[i].id < dying[j].id })

	for _, h := range dying {
		cb, data := h.cb, h.data
		h.Reset()
		if cb != nil {
			cb(&WeakCallbackInfo{Runtime: rt, Handle: h, Data: data})
		}
	}

	swept := 0
	for id, o := range rt.heap {
		if o.marked {
			o.marked = false
			continue
		}
		o.dead = true
		delete(rt.heap, id)
		swept++
	}

	st := CollectStats{
		Live:      len(rt.heap),
		Swept:     swept,
		Finalized: len(dying),
		Duration:  time.Since(start),
	}
	rt.stats.Collections++
	rt.stats.Swept += uint64(swept)
	rt.stats.Finalized += uint64(len(dying))

	rt.log.Debug("collection finished",
		zap.Int("live", st.Live),
		zap.Int("swept", st.Swept),
		zap.Int("finalized", st.Finalized),
		zap.Duration("duration", st.Duration))
	return st
}

func (rt *Runtime) mark() {
	var work []*Object
	push := func(v Value) { work = markValue(v, work) }

	for _, v := range rt.globals {
		push(v)
	}
	for _, h := range rt.handles {
		if !h.weak && h.obj != nil {
			push(h.obj)
		}
	}
	for _, ft := range rt.functionTemplates {
		push(ft.fn)
		markTemplate(ft.instance, push)
		markTemplate(ft.proto, push)
	}
	for _, t := range rt.objectTemplates {
		markTemplate(t, push)
	}

	for len(work) > 0 {
		o := work[len(work)-1]
		work = work[:len(work)-1]
		for _, p := range o.props {
			push(p.value)
		}
		for _, v := range o.internal {
			push(v)
		}
	}
}

func markTemplate(t *ObjectTemplate, push func(Value)) {
	for _, p := range t.props {
		push(p.value)
	}
}

// markValue marks v and queues newly marked objects for traversal.
func markValue(v Value, work []*Object) []*Object {
	switch x := v.(type) {
	case *Object:
		if x == nil || x.dead || x.marked {
			return work
		}
		x.marked = true
		return append(work, x)
	case []Value:
		for _, e := range x {
			work = markValue(e, work)
		}
	}
	return work
}
