package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/insight-lab/mnemosyne/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested document does not exist
var ErrNotFound = errors.New("not found")

// Firestore is the production Repository implementation. The vector
// layer uses Firestore's native vector search; the graph layer stores
// merged entity nodes with mention edges as subcollection documents.
type Firestore struct {
	client *firestore.Client
	vector *vectorRepository
	graph  *graphRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prepends a prefix to all collection names,
// isolating test data from production collections.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.vector.collectionPrefix = prefix
		f.graph.collectionPrefix = prefix
	}
}

// WithGraphDisabled turns all graph writes into logged no-ops.
// Ingestion proceeds without graph enrichment.
func WithGraphDisabled() Option {
	return func(f *Firestore) {
		f.graph.disabled = true
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID))
	}

	f := &Firestore{
		client: client,
		vector: newVectorRepository(client),
		graph:  newGraphRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Vector() interfaces.VectorRepository {
	return f.vector
}

func (f *Firestore) Graph() interfaces.GraphRepository {
	return f.graph
}

func (f *Firestore) Close() error {
	if err := f.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close firestore client")
	}
	return nil
}
