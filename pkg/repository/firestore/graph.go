package firestore

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/insight-lab/mnemosyne/pkg/domain/model"
	"github.com/insight-lab/mnemosyne/pkg/domain/types"
	"github.com/insight-lab/mnemosyne/pkg/utils/logging"
	"google.golang.org/api/iterator"
)

type userDoc struct {
	ID        string    `firestore:"ID"`
	CreatedAt time.Time `firestore:"CreatedAt"`
}

type summaryDoc struct {
	ID        string    `firestore:"ID"`
	Text      string    `firestore:"Text"`
	UserID    string    `firestore:"UserID"` // WROTE edge: User -> Summary
	CreatedAt time.Time `firestore:"CreatedAt"`
}

type entityDoc struct {
	Kind      string    `firestore:"Kind"`
	Name      string    `firestore:"Name"`
	UpdatedAt time.Time `firestore:"UpdatedAt"`
}

// mentionDoc is a MENTIONS edge: Summary -> Entity, stored as a
// subcollection document under the entity node.
type mentionDoc struct {
	SummaryID string    `firestore:"SummaryID"`
	Sentiment string    `firestore:"Sentiment"`
	CreatedAt time.Time `firestore:"CreatedAt"`
}

type graphRepository struct {
	client           *firestore.Client
	collectionPrefix string
	disabled         bool
}

func newGraphRepository(client *firestore.Client) *graphRepository {
	return &graphRepository{client: client}
}

func (r *graphRepository) users() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "graph_users")
}

func (r *graphRepository) summaries() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "graph_summaries")
}

func (r *graphRepository) entities() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "graph_entities")
}

// entityDocID derives a deterministic document ID from (kind, name) so
// that repeat mentions merge onto one node. Hashing keeps arbitrary
// entity names out of document paths.
func entityDocID(kind types.EntityKind, name string) string {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%s|%s", kind, name)
	return fmt.Sprintf("%s_%016x", strings.ToLower(kind.String()), h.Sum64())
}

func (r *graphRepository) StoreSummaryIntelligence(ctx context.Context, summaryText string, meta map[string]any, entities []*model.Entity) error {
	if r.disabled {
		logging.From(ctx).Warn("graph layer disabled, skipping summary intelligence write")
		return nil
	}

	userID := userIDFromMeta(meta)
	summaryID := string(model.NewSummaryNodeID())
	now := time.Now().UTC()

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Set(r.users().Doc(userID), &userDoc{ID: userID, CreatedAt: now}, firestore.MergeAll); err != nil {
			return goerr.Wrap(err, "failed to merge user node", goerr.V("userID", userID))
		}

		if err := tx.Set(r.summaries().Doc(summaryID), &summaryDoc{
			ID:        summaryID,
			Text:      summaryText,
			UserID:    userID,
			CreatedAt: now,
		}); err != nil {
			return goerr.Wrap(err, "failed to create summary node", goerr.V("summaryID", summaryID))
		}

		for _, e := range entities {
			kind := e.Kind.Sanitize()
			entityRef := r.entities().Doc(entityDocID(kind, e.Name))

			if err := tx.Set(entityRef, &entityDoc{
				Kind:      kind.String(),
				Name:      e.Name,
				UpdatedAt: now,
			}, firestore.MergeAll); err != nil {
				return goerr.Wrap(err, "failed to merge entity node",
					goerr.V("kind", kind), goerr.V("name", e.Name),
				)
			}

			mentionRef := entityRef.Collection("mentions").Doc(summaryID)
			if err := tx.Set(mentionRef, &mentionDoc{
				SummaryID: summaryID,
				Sentiment: e.Sentiment.Normalize().String(),
				CreatedAt: now,
			}); err != nil {
				return goerr.Wrap(err, "failed to create mention edge",
					goerr.V("summaryID", summaryID), goerr.V("name", e.Name),
				)
			}
		}

		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to store summary intelligence",
			goerr.V("entityCount", len(entities)),
			goerr.T(types.TagStoreUnavailable),
		)
	}

	return nil
}

func (r *graphRepository) QueryEntities(ctx context.Context, query string, limit int) ([]*model.GraphEntity, error) {
	if r.disabled {
		return []*model.GraphEntity{}, nil
	}

	// Firestore has no substring predicate, so scan a bounded page of
	// entity nodes and filter client-side.
	const scanCap = 500
	iter := r.entities().Limit(scanCap).Documents(ctx)
	defer iter.Stop()

	needle := strings.ToLower(query)
	results := make([]*model.GraphEntity, 0)

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate entity nodes")
		}

		var d entityDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal entity node")
		}

		if needle != "" && !strings.Contains(strings.ToLower(d.Name), needle) {
			continue
		}

		ge := &model.GraphEntity{
			Name: d.Name,
			Kind: types.EntityKind(d.Kind),
		}

		mentions := doc.Ref.Collection("mentions").Documents(ctx)
		for {
			mdoc, err := mentions.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				mentions.Stop()
				return nil, goerr.Wrap(err, "failed to iterate mention edges", goerr.V("name", d.Name))
			}

			var m mentionDoc
			if err := mdoc.DataTo(&m); err != nil {
				mentions.Stop()
				return nil, goerr.Wrap(err, "failed to unmarshal mention edge")
			}
			ge.MentionCount++
			ge.Sentiments = append(ge.Sentiments, types.Sentiment(m.Sentiment))
		}
		mentions.Stop()

		results = append(results, ge)
		if limit > 0 && len(results) >= limit {
			break
		}
	}

	return results, nil
}

// userIDFromMeta resolves the user node key with a case-insensitive
// "user" metadata key, defaulting to "Anonymous".
func userIDFromMeta(meta map[string]any) string {
	for k, v := range meta {
		if strings.EqualFold(k, "user") {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return "Anonymous"
}
