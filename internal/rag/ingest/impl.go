package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
	"github.com/akolanti/PaperRAG/internal/rag/embedding"
	"github.com/akolanti/PaperRAG/internal/rag/vectorDB"
	"github.com/google/uuid"
)

//splitter

// Ordered from the strongest markdown boundary to a hard cut.
var markdownSeparators = []string{"\n## ", "\n### ", "\n#### ", "\n##### ", "\n\n", "\n", ". ", " ", ""}

var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("paperrag/chunks"))

// SplitMarkdown splits text into chunks of at most size runes. Consecutive chunks share up to
// overlap runes of trailing context when the boundary allows it.
func SplitMarkdown(text string, size int, overlap int) []string {
	if size <= 0 {
		size = config.ChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	for _, c := range splitRecursive(text, markdownSeparators, size, overlap) {
		if c = strings.TrimSpace(c); c != "" {
			chunks = append(chunks, c)
		}
	}
	return chunks
}

func splitRecursive(text string, separators []string, size int, overlap int) []string {
	if utf8.RuneCountInString(text) <= size {
		return []string{text}
	}

	sep, rest := "", []string(nil)
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep, rest = s, separators[i+1:]
			break
		}
	}

	var (
		chunks []string
		window []string
		total  int
	)
	flush := func() {
		if len(window) > 0 {
			chunks = append(chunks, strings.Join(window, ""))
		}
	}

	for _, piece := range splitKeep(text, sep) {
		n := utf8.RuneCountInString(piece)
		if n > size {
			flush()
			window, total = nil, 0
			chunks = append(chunks, splitRecursive(piece, rest, size, overlap)...)
			continue
		}
		if total+n > size && len(window) > 0 {
			flush()
			for len(window) > 0 && (total > overlap || total+n > size) {
				total -= utf8.RuneCountInString(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += n
	}
	flush()
	return chunks
}

// splitKeep splits on sep without losing it. Heading separators start the next piece,
// everything else stays at the end of the previous one.
func splitKeep(text string, sep string) []string {
	if sep == "" {
		out := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	heading := strings.HasPrefix(sep, "\n#")
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if heading && i > 0 {
			p = sep + p
		} else if !heading && i < len(parts)-1 {
			p = p + sep
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ChunkId is stable for a (document, position) pair so re-indexing overwrites instead of duplicating.
func ChunkId(docId string, order int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(docId+"#"+strconv.Itoa(order))).String()
}

func PrepareChunks(doc commonModels.Document, texts []string) []commonModels.DocChunk {
	chunks := make([]commonModels.DocChunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, commonModels.DocChunk{
			DocId:   doc.Id,
			Title:   doc.Title,
			ChunkId: ChunkId(doc.Id, i),
			Chunk:   text,
			Order:   i,
		})
	}
	return chunks
}

func BatchIngest(ctx context.Context, chunks []commonModels.DocChunk, vectorDB vectorDB.DataProcessor, embedder embedding.Embedder) error {
	log := logger.WithContext(ctx)
	batchSize := config.EmbeddingBatch

	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		currentBatch := chunks[i:end]

		texts := make([]string, 0, len(currentBatch))
		for _, c := range currentBatch {
			texts = append(texts, c.Chunk)
		}

		log.Debug("Starting embedding call", "batch start", i, "batch length", len(currentBatch))
		vectors, err := embedder.BatchEmbedding(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch failed: %w", err)
		}

		err = vectorDB.UpsertBatch(ctx, currentBatch, vectors)
		if err != nil {
			return fmt.Errorf("upserting chunks failed: %w", err)
		}
	}

	return nil
}
