package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/insight-lab/mnemosyne/pkg/domain/types"
)

func TestEntityKind_Sanitize(t *testing.T) {
	cases := []struct {
		input    types.EntityKind
		expected types.EntityKind
	}{
		{types.EntityKindIssue, types.EntityKindIssue},
		{types.EntityKindFeature, types.EntityKindFeature},
		{types.EntityKindProduct, types.EntityKindProduct},
		{types.EntityKindSentiment, types.EntityKindSentiment},
		{types.EntityKind("Theme"), types.EntityKindFallback},
		{types.EntityKind("<script>alert(1)</script>"), types.EntityKindFallback},
		{types.EntityKind("issue"), types.EntityKindFallback}, // case sensitive
		{types.EntityKind(""), types.EntityKindFallback},
	}

	for _, tc := range cases {
		gt.Value(t, tc.input.Sanitize()).Equal(tc.expected)
	}
}

func TestSentiment_Normalize(t *testing.T) {
	gt.Value(t, types.Sentiment("positive").Normalize()).Equal(types.SentimentPositive)
	gt.Value(t, types.Sentiment("angry").Normalize()).Equal(types.SentimentNeutral)
	gt.Value(t, types.Sentiment("").Normalize()).Equal(types.SentimentNeutral)
}
