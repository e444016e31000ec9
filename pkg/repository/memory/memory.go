package memory

import (
	"errors"

	"github.com/insight-lab/mnemosyne/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// Memory is an in-memory Repository implementation for development
// and testing.
type Memory struct {
	vector *vectorRepository
	graph  *graphRepository
}

var _ interfaces.Repository = &Memory{}

// New creates a new in-memory repository
func New() *Memory {
	return &Memory{
		vector: newVectorRepository(),
		graph:  newGraphRepository(),
	}
}

func (m *Memory) Vector() interfaces.VectorRepository {
	return m.vector
}

func (m *Memory) Graph() interfaces.GraphRepository {
	return m.graph
}

func (m *Memory) Close() error {
	return nil
}
