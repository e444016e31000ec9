package interfaces

// Repository defines the interface for data persistence across the
// memory layers.
type Repository interface {
	Vector() VectorRepository
	Graph() GraphRepository

	Close() error
}
