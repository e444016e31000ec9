package chunker_test

import (
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/insight-lab/mnemosyne/pkg/domain/model"
	"github.com/insight-lab/mnemosyne/pkg/service/chunker"
)

func testItem(content string) model.FeedbackItem {
	return model.FeedbackItem{
		Source:    "app-store",
		Content:   content,
		Timestamp: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

func TestChunker_ShortTextSingleChunk(t *testing.T) {
	c := chunker.New()

	chunks := c.Split([]model.FeedbackItem{testItem("The app crashes when I open settings.")})

	gt.Array(t, chunks).Length(1).Required()
	gt.Value(t, chunks[0].Content).Equal("The app crashes when I open settings.")
	gt.Value(t, chunks[0].Index).Equal(0)
}

func TestChunker_LongTextBoundedChunks(t *testing.T) {
	c := chunker.New(chunker.WithChunkSize(100), chunker.WithOverlap(20))

	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("The checkout flow is confusing and slow. ")
	}
	chunks := c.Split([]model.FeedbackItem{testItem(sb.String())})

	gt.Number(t, len(chunks)).Greater(1)
	for _, ch := range chunks {
		gt.Number(t, len(ch.Content)).LessOrEqual(100)
	}
}

func TestChunker_OverlapCarriesContext(t *testing.T) {
	c := chunker.New(chunker.WithChunkSize(60), chunker.WithOverlap(20))

	text := strings.Repeat("alpha beta gamma delta epsilon ", 10)
	chunks := c.Split([]model.FeedbackItem{testItem(text)})
	gt.Number(t, len(chunks)).Greater(1).Required()

	// The trailing words of each chunk reappear at the head of the
	// next one.
	for i := 1; i < len(chunks); i++ {
		words := strings.Fields(chunks[i-1].Content)
		gt.Number(t, len(words)).Greater(0).Required()
		last := words[len(words)-1]
		gt.Array(t, strings.Fields(chunks[i].Content)).Has(last)
	}
}

func TestChunker_EmptyContentSkipped(t *testing.T) {
	c := chunker.New()

	chunks := c.Split([]model.FeedbackItem{
		testItem("   "),
		testItem(""),
		testItem("Works fine for me."),
	})

	gt.Array(t, chunks).Length(1).Required()
	gt.Value(t, chunks[0].Content).Equal("Works fine for me.")
}

func TestChunker_MetadataInheritance(t *testing.T) {
	c := chunker.New()

	rating := 2.0
	item := model.FeedbackItem{
		Source:    "survey",
		Content:   "Support never answered my ticket.",
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Rating:    &rating,
		Metadata:  map[string]any{"user": "alice"},
	}

	chunks := c.Split([]model.FeedbackItem{item})
	gt.Array(t, chunks).Length(1).Required()

	meta := chunks[0].Metadata
	gt.Value(t, meta["user"]).Equal(any("alice"))
	gt.Value(t, meta["source"]).Equal(any("survey"))
	gt.Value(t, meta["timestamp"]).Equal(any("2026-01-02T03:04:05Z"))
	gt.Value(t, meta["rating"]).Equal(any(2.0))
	gt.Value(t, meta["chunk_index"]).Equal(any(0))
	gt.Value(t, chunks[0].ParentID).Equal(item.ParentID())
}

func TestChunker_SameItemSameParentID(t *testing.T) {
	item := testItem("Deterministic identity check.")
	other := testItem("Deterministic identity check.")
	gt.Value(t, item.ParentID()).Equal(other.ParentID())

	different := testItem("A different item.")
	gt.Value(t, item.ParentID()).NotEqual(different.ParentID())
}
