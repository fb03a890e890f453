package main

import "sync/atomic"

// counter tracks live sample objects.
type counter struct {
	created   atomic.Int64
	destroyed atomic.Int64
}

func (c *counter) live() int64 { return c.created.Load() - c.destroyed.Load() }

type shape struct {
	Name string
}

func (s *shape) Describe() string { return "shape " + s.Name }

type circle struct {
	shape
	Radius float64
	count  *counter
}

func newCircle(name string, r float64, c *counter) *circle {
	c.created.Add(1)
	return &circle{shape: shape{Name: name}, Radius: r, count: c}
}

func (c *circle) Area() float64 { return 3 * c.Radius * c.Radius }

func (c *circle) Destroy() { c.count.destroyed.Add(1) }
