package chunker

import (
	"strings"
	"time"

	"github.com/insight-lab/mnemosyne/pkg/domain/model"
)

const (
	// DefaultChunkSize is the maximum chunk length in characters
	DefaultChunkSize = 1024
	// DefaultOverlap is the trailing content carried into the next
	// chunk to preserve cross-boundary context
	DefaultOverlap = 200
)

// separators are tried coarsest-first: paragraph, line, sentence,
// word, character.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Chunker splits feedback text into bounded, overlapping segments.
// Pure: no network or I/O side effects.
type Chunker struct {
	chunkSize int
	overlap   int
}

type Option func(*Chunker)

func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.chunkSize = size
	}
}

func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Split chunks each item's content, inheriting the item's metadata
// plus derived fields. Items with empty content yield zero chunks.
func (c *Chunker) Split(items []model.FeedbackItem) []model.Chunk {
	chunks := make([]model.Chunk, 0, len(items))

	for i := range items {
		item := &items[i]
		if strings.TrimSpace(item.Content) == "" {
			continue
		}

		parentID := item.ParentID()
		spans := c.splitText(item.Content, separators)

		for idx, span := range spans {
			meta := make(map[string]any, len(item.Metadata)+4)
			for k, v := range item.Metadata {
				meta[k] = v
			}
			meta["source"] = item.Source
			meta["timestamp"] = item.Timestamp.UTC().Format(time.RFC3339)
			if item.Rating != nil {
				meta["rating"] = *item.Rating
			}
			meta["chunk_index"] = idx

			chunks = append(chunks, model.Chunk{
				Content:  span,
				ParentID: parentID,
				Index:    idx,
				Metadata: meta,
			})
		}
	}

	return chunks
}

// splitText recursively breaks text with the coarsest separator whose
// pieces fit within the chunk size, descending to finer separators for
// oversized pieces. A single indivisible token may exceed the limit.
func (c *Chunker) splitText(text string, seps []string) []string {
	sep := seps[len(seps)-1]
	var rest []string
	for i, s := range seps {
		if s == "" || strings.Contains(text, s) {
			sep = s
			rest = seps[i+1:]
			break
		}
	}

	pieces := splitKeep(text, sep)

	var final []string
	var good []string
	for _, piece := range pieces {
		if len(piece) < c.chunkSize {
			good = append(good, piece)
			continue
		}

		if len(good) > 0 {
			final = append(final, c.merge(good)...)
			good = nil
		}

		if len(rest) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, c.splitText(piece, rest)...)
		}
	}
	if len(good) > 0 {
		final = append(final, c.merge(good)...)
	}

	return final
}

// splitKeep splits on sep, keeping the separator attached to the
// preceding piece so no content is lost. An empty separator splits
// into chunk-size runs of characters.
func splitKeep(text, sep string) []string {
	if sep == "" {
		runes := []rune(text)
		out := make([]string, 0, len(runes))
		for _, r := range runes {
			out = append(out, string(r))
		}
		return out
	}

	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i < len(parts)-1 {
			p += sep
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// merge greedily combines pieces into chunks up to the chunk size,
// carrying the configured overlap of trailing pieces into each next
// chunk.
func (c *Chunker) merge(pieces []string) []string {
	var out []string
	var window []string
	total := 0

	flush := func() {
		if len(window) == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(window, ""))
		if joined != "" {
			out = append(out, joined)
		}
	}

	for _, p := range pieces {
		if total+len(p) > c.chunkSize && total > 0 {
			flush()
			// Retain trailing pieces within the overlap budget
			for total > c.overlap || (total+len(p) > c.chunkSize && total > 0) {
				total -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, p)
		total += len(p)
	}
	flush()

	return out
}
