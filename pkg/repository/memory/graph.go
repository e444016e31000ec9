package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/insight-lab/mnemosyne/pkg/domain/model"
	"github.com/insight-lab/mnemosyne/pkg/domain/types"
)

// entityKey merges entity nodes by (kind, name): repeat mentions of
// the same entity converge on one node.
type entityKey struct {
	kind types.EntityKind
	name string
}

type summaryNode struct {
	id        model.SummaryNodeID
	text      string
	userID    string
	createdAt time.Time
}

type mentionEdge struct {
	summaryID model.SummaryNodeID
	entity    entityKey
	sentiment types.Sentiment
}

type graphRepository struct {
	mu        sync.RWMutex
	users     map[string]struct{}
	summaries map[model.SummaryNodeID]*summaryNode
	entities  map[entityKey]struct{}
	mentions  []mentionEdge
}

func newGraphRepository() *graphRepository {
	return &graphRepository{
		users:     make(map[string]struct{}),
		summaries: make(map[model.SummaryNodeID]*summaryNode),
		entities:  make(map[entityKey]struct{}),
	}
}

func (r *graphRepository) StoreSummaryIntelligence(ctx context.Context, summaryText string, meta map[string]any, entities []*model.Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID := userIDFromMeta(meta)
	r.users[userID] = struct{}{}

	node := &summaryNode{
		id:        model.NewSummaryNodeID(),
		text:      summaryText,
		userID:    userID,
		createdAt: time.Now().UTC(),
	}
	r.summaries[node.id] = node

	for _, e := range entities {
		key := entityKey{kind: e.Kind.Sanitize(), name: e.Name}
		r.entities[key] = struct{}{}
		r.mentions = append(r.mentions, mentionEdge{
			summaryID: node.id,
			entity:    key,
			sentiment: e.Sentiment.Normalize(),
		})
	}

	return nil
}

func (r *graphRepository) QueryEntities(ctx context.Context, query string, limit int) ([]*model.GraphEntity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(query)

	results := make([]*model.GraphEntity, 0)
	for key := range r.entities {
		if needle != "" && !strings.Contains(strings.ToLower(key.name), needle) {
			continue
		}

		ge := &model.GraphEntity{
			Name: key.name,
			Kind: key.kind,
		}
		for _, m := range r.mentions {
			if m.entity == key {
				ge.MentionCount++
				ge.Sentiments = append(ge.Sentiments, m.sentiment)
			}
		}
		results = append(results, ge)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].MentionCount != results[j].MentionCount {
			return results[i].MentionCount > results[j].MentionCount
		}
		return results[i].Name < results[j].Name
	})

	if limit > 0 && limit < len(results) {
		results = results[:limit]
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
