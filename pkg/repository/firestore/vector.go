package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/insight-lab/mnemosyne/pkg/domain/model"
	"github.com/insight-lab/mnemosyne/pkg/domain/types"
	"google.golang.org/api/iterator"
)

// distanceField is the synthetic document field that FindNearest
// populates with the cosine distance of each hit.
const distanceField = "vector_distance"

// recordDoc is the Firestore document representation of
// model.MemoryRecord. Embedding is stored as firestore.Vector32 for
// FindNearest vector search.
type recordDoc struct {
	ID        model.RecordID     `firestore:"ID"`
	Content   string             `firestore:"Content"`
	Type      string             `firestore:"Type"`
	Level     int                `firestore:"Level"`
	Metadata  map[string]any     `firestore:"Metadata,omitempty"`
	Embedding firestore.Vector32 `firestore:"Embedding"`
	CreatedAt time.Time          `firestore:"CreatedAt"`
}

func toRecordDoc(r *model.MemoryRecord) *recordDoc {
	return &recordDoc{
		ID:        r.ID,
		Content:   r.Payload.Content,
		Type:      r.Payload.Type.String(),
		Level:     r.Payload.Level,
		Metadata:  r.Payload.Metadata,
		Embedding: firestore.Vector32(r.Embedding),
		CreatedAt: time.Now().UTC(),
	}
}

func (d *recordDoc) payload() model.RecordPayload {
	return model.RecordPayload{
		Content:  d.Content,
		Type:     types.RecordType(d.Type),
		Level:    d.Level,
		Metadata: d.Metadata,
	}
}

type vectorRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newVectorRepository(client *firestore.Client) *vectorRepository {
	return &vectorRepository{client: client}
}

func (r *vectorRepository) records() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "records")
}

func (r *vectorRepository) Upsert(ctx context.Context, records []*model.MemoryRecord) error {
	for _, rec := range records {
		if rec.ID == "" {
			return goerr.New("record ID is required")
		}
		if len(rec.Embedding) == 0 {
			return goerr.New("record embedding is required", goerr.V("recordID", rec.ID))
		}

		docRef := r.records().Doc(string(rec.ID))
		if _, err := docRef.Set(ctx, toRecordDoc(rec)); err != nil {
			return goerr.Wrap(err, "failed to upsert record",
				goerr.V("recordID", rec.ID),
				goerr.T(types.TagStoreUnavailable),
			)
		}
	}

	return nil
}

func (r *vectorRepository) Search(ctx context.Context, vector []float32, limit int) ([]*model.SearchHit, error) {
	vq := r.records().FindNearest("Embedding", firestore.Vector32(vector), limit,
		firestore.DistanceMeasureCosine,
		&firestore.FindNearestOptions{DistanceResultField: distanceField},
	)

	iter := vq.Documents(ctx)
	defer iter.Stop()

	hits := make([]*model.SearchHit, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate vector search results")
		}

		var d recordDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal record from vector search")
		}

		// Cosine distance to similarity score
		score := 1.0
		if dist, ok := doc.Data()[distanceField].(float64); ok {
			score = 1.0 - dist
		}

		hits = append(hits, &model.SearchHit{
			Score:   score,
			Payload: d.payload(),
		})
	}

	return hits, nil
}

func (r *vectorRepository) ScrollByMetadata(ctx context.Context, key, value string, limit int) ([]*model.RecordPayload, error) {
	field := scrollFieldPath(key)
	iter := r.records().Where(field, "==", value).Limit(limit).Documents(ctx)
	defer iter.Stop()

	payloads := make([]*model.RecordPayload, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate records",
				goerr.V("key", key), goerr.V("value", value),
			)
		}

		var d recordDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal record")
		}

		p := d.payload()
		payloads = append(payloads, &p)
	}

	return payloads, nil
}

// scrollFieldPath maps a payload key to its document field path. The
// well-known fields live at the top level; everything else is under
// the Metadata map.
func scrollFieldPath(key string) string {
	switch key {
	case "type":
		return "Type"
	case "content":
		return "Content"
	case "level":
		return "Level"
	default:
		return "Metadata." + key
	}
}
