package core

import (
	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/bind/errors"
)

// CastFunc adjusts a native pointer of one type into a pointer to one of its
// bases. It returns nil when the base is not present.
type CastFunc func(p any) any

// Compose returns a CastFunc applying first and then second. A nil CastFunc
// stands for identity.
func Compose(first, second CastFunc) CastFunc {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	}
	return func(p any) any {
		q := first(p)
		if q == nil {
			return nil
		}
		return second(q)
	}
}

// CastEdge records that From can be viewed as To through Adjust.
type CastEdge struct {
	From   TypeID
	To     TypeID
	Adjust CastFunc
	// Direct is false for edges composed through an intermediate base.
	Direct bool
}

// CastTable holds every base reachable from one class, with the pointer
// adjustment to reach it. Edges are computed when bases are declared. A class
// that gains a base after being inherited extends the tables of its derived
// classes, which Inherit receives as dependents.
type CastTable struct {
	self  TypeID
	edges map[TypeID]CastEdge
	order []TypeID
}

// NewCastTable creates an empty table for the class self.
func NewCastTable(self TypeID) *CastTable {
	return &CastTable{self: self, edges: make(map[TypeID]CastEdge)}
}

// Self returns the class the table belongs to.
func (t *CastTable) Self() TypeID { return t.self }

// Inherit declares base as a direct base reached through adjust, and adds
// every base of base composed through it. Each dependent table already
// reaching t gains the same bases composed through its edge to t; dependents
// that do not reach t are ignored. It fails without modifying any table when
// base is already reachable or when a base would become reachable twice from
// t or from a dependent.
func (t *CastTable) Inherit(base *CastTable, adjust CastFunc, dependents ...*CastTable) error {
	if base.self == t.self {
		return errorc.With(errors.ErrDuplicateInheritance,
			errorc.String(errors.ErrorFieldClassType, t.self.String()),
			errorc.String(errors.ErrorFieldBaseType, base.self.String()))
	}
	if _, ok := t.edges[base.self]; ok {
		return errorc.With(errors.ErrDuplicateInheritance,
			errorc.String(errors.ErrorFieldClassType, t.self.String()),
			errorc.String(errors.ErrorFieldBaseType, base.self.String()))
	}

	added := make([]CastEdge, 0, len(base.order)+1)
	added = append(added, CastEdge{From: t.self, To: base.self, Adjust: adjust, Direct: true})
	for _, id := range base.order {
		added = append(added, CastEdge{From: t.self, To: id, Adjust: Compose(adjust, base.edges[id].Adjust)})
	}
	if err := t.reject(added[1:]); err != nil {
		return err
	}

	type extension struct {
		table *CastTable
		via   CastFunc
	}
	var ext []extension
	for _, d := range dependents {
		if d == t {
			continue
		}
		e, ok := d.edges[t.self]
		if !ok {
			continue
		}
		if err := d.reject(added); err != nil {
			return err
		}
		ext = append(ext, extension{table: d, via: e.Adjust})
	}

	for _, e := range added {
		t.add(e)
	}
	for _, x := range ext {
		for _, e := range added {
			x.table.add(CastEdge{From: x.table.self, To: e.To, Adjust: Compose(x.via, e.Adjust)})
		}
	}
	return nil
}

// reject fails with ErrAmbiguousBase when one of the edges leads to a class
// already reachable from t, or to t itself.
func (t *CastTable) reject(edges []CastEdge) error {
	for _, e := range edges {
		if _, ok := t.edges[e.To]; ok || e.To == t.self {
			return errorc.With(errors.ErrAmbiguousBase,
				errorc.String(errors.ErrorFieldClassType, t.self.String()),
				errorc.String(errors.ErrorFieldBaseType, e.To.String()))
		}
	}
	return nil
}

func (t *CastTable) add(e CastEdge) {
	t.edges[e.To] = e
	t.order = append(t.order, e.To)
}

// Edge returns the edge leading to base, if any.
func (t *CastTable) Edge(base TypeID) (CastEdge, bool) {
	e, ok := t.edges[base]
	return e, ok
}

// Has reports whether base is the class itself or one of its bases.
func (t *CastTable) Has(base TypeID) bool {
	if base == t.self {
		return true
	}
	_, ok := t.edges[base]
	return ok
}

// Cast adjusts p, a pointer to the table's class, into a pointer to base.
func (t *CastTable) Cast(p any, base TypeID) (any, bool) {
	if base == t.self {
		return p, true
	}
	e, ok := t.edges[base]
	if !ok {
		return nil, false
	}
	if e.Adjust == nil {
		return p, true
	}
	q := e.Adjust(p)
	return q, q != nil
}

// Bases returns the reachable bases in declaration order.
func (t *CastTable) Bases() []TypeID {
	return append([]TypeID(nil), t.order...)
}

// DirectBases returns the directly declared bases in declaration order.
func (t *CastTable) DirectBases() []TypeID {
	var out []TypeID
	for _, id := range t.order {
		if t.edges[id].Direct {
			out = append(out, id)
		}
	}
	return out
}
