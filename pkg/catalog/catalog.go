// Package catalog holds the static list of robots the gateway knows about.
package catalog

import (
	"errors"
	"slices"
)

// ErrNotFound is returned for an unknown robot id.
var ErrNotFound = errors.New("catalog: robot not found")

// Robot describes one known robot.
type Robot struct {
	ID          int    `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Catalog is an immutable, ordered set of robots. It is safe for
// concurrent use.
type Catalog struct {
	robots []Robot
	byID   map[int]int
}

// New builds a catalog in the given order. A later robot with a repeated
// id replaces the earlier one in place.
func New(robots ...Robot) *Catalog {
	c := &Catalog{byID: make(map[int]int, len(robots))}
	for _, r := range robots {
		if i, ok := c.byID[r.ID]; ok {
			c.robots[i] = r
			continue
		}
		c.byID[r.ID] = len(c.robots)
		c.robots = append(c.robots, r)
	}
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return New(
		Robot{ID: 1, Title: "Nao", Description: "The default Nao robot"},
		Robot{ID: 2, Title: "Zora", Description: "An advanced Nao robot that takes care of your health"},
	)
}

// List returns every robot in insertion order. The slice is a copy.
func (c *Catalog) List() []Robot {
	return slices.Clone(c.robots)
}

// Get looks up a robot by id.
func (c *Catalog) Get(id int) (Robot, error) {
	i, ok := c.byID[id]
	if !ok {
		return Robot{}, ErrNotFound
	}
	return c.robots[i], nil
}

// Len returns the number of robots.
func (c *Catalog) Len() int {
	return len(c.robots)
}
