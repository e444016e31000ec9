package types

// EntityKind is the node label of an extracted entity in the graph
// layer. Kinds come from LLM output and are never interpolated into a
// structural identifier directly: Sanitize coerces anything outside
// the allow-list to EntityKindFallback.
type EntityKind string

const (
	EntityKindIssue     EntityKind = "Issue"
	EntityKindFeature   EntityKind = "Feature"
	EntityKindProduct   EntityKind = "Product"
	EntityKindSentiment EntityKind = "Sentiment"

	// EntityKindFallback is used for any kind outside the allow-list
	EntityKindFallback EntityKind = "Entity"
)

// AllowedEntityKinds returns the kinds that may be used as node labels as-is
func AllowedEntityKinds() []EntityKind {
	return []EntityKind{
		EntityKindIssue,
		EntityKindFeature,
		EntityKindProduct,
		EntityKindSentiment,
	}
}

// Sanitize coerces the kind to the allow-list. Untrusted values,
// including EntityKind("Theme") from theme extraction, map to
// EntityKindFallback.
func (k EntityKind) Sanitize() EntityKind {
	for _, allowed := range AllowedEntityKinds() {
		if k == allowed {
			return k
		}
	}
	return EntityKindFallback
}

// String returns the string representation of the entity kind
func (k EntityKind) String() string {
	return string(k)
}
