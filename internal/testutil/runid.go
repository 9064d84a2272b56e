package testutil

import (
	"fmt"
	"sync"
)

// FixedRunIDGenerator returns the same run ID every time, so golden
// snapshots of a run are byte-identical across executions.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a generator for id. An empty id yields
// "test-run-default".
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed ID.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}

// SequenceRunIDGenerator returns "<prefix>-001", "<prefix>-002", ...
// Useful when several runs share one journal.
type SequenceRunIDGenerator struct {
	prefix string

	mu sync.Mutex
	n  int
}

// NewSequenceRunIDGenerator creates a generator. An empty prefix means
// "test-run".
func NewSequenceRunIDGenerator(prefix string) *SequenceRunIDGenerator {
	if prefix == "" {
		prefix = "test-run"
	}
	return &SequenceRunIDGenerator{prefix: prefix}
}

// Generate returns the next ID.
func (g *SequenceRunIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%03d", g.prefix, g.n)
}
