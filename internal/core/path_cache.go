package core

import (
	"reflect"
	"sync"
)

// pathKey identifies an embedding lookup. Struct layouts are static for a
// compiled type, so a result stays valid for the life of the process and is
// shared by every runtime.
type pathKey struct {
	from reflect.Type
	to   reflect.Type
}

type pathEntry struct {
	path []int
	err  error
}

// pathCache holds resolved embedding paths, failures included.
type pathCache struct {
	c cache // map[pathKey]pathEntry
}

type cache interface {
	Load(key any) (value any, ok bool)
	Store(key any, value any)
}

var embeddedPaths = newPathCache()

func newPathCache() *pathCache {
	return &pathCache{
		c: &sync.Map{},
	}
}

func (c *pathCache) get(from, to reflect.Type) (pathEntry, bool) {
	v, ok := c.c.Load(pathKey{from: from, to: to})
	if !ok {
		return pathEntry{}, false
	}
	e := v.(pathEntry)
	return pathEntry{path: append([]int(nil), e.path...), err: e.err}, true
}

func (c *pathCache) put(from, to reflect.Type, path []int, err error) {
	c.c.Store(pathKey{from: from, to: to}, pathEntry{path: append([]int(nil), path...), err: err})
}
