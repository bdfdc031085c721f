package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
	"github.com/akolanti/PaperRAG/internal/rag/cleaner"
	"github.com/akolanti/PaperRAG/internal/rag/embedding"
	"github.com/akolanti/PaperRAG/internal/rag/vectorDB"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
	"golang.org/x/sync/errgroup"
)

var logger = logger_i.NewLogger("Document Ingestion")

var ErrEmptyDocument = errors.New("document has no extractable text")

type Outcome struct {
	Document  commonModels.ArticleMeta
	NumChunks int
	// Skipped is set when the document was already ingested and nothing was re-indexed.
	Skipped bool
}

type Pipeline struct {
	fetcher  Fetcher
	embedder embedding.Embedder
	vectorDB vectorDB.DataProcessor
	articles commonModels.ArticleStore
	locker   Locker

	chunkSize    int
	chunkOverlap int
}

type PipelineConfig struct {
	Fetcher  Fetcher
	Embedder embedding.Embedder
	VectorDB vectorDB.DataProcessor
	Articles commonModels.ArticleStore
	Locker   Locker
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	locker := cfg.Locker
	if locker == nil {
		locker = NewKeyedLocker()
	}
	return &Pipeline{
		fetcher:      cfg.Fetcher,
		embedder:     cfg.Embedder,
		vectorDB:     cfg.VectorDB,
		articles:     cfg.Articles,
		locker:       locker,
		chunkSize:    config.ChunkSize,
		chunkOverlap: config.ChunkOverlap,
	}
}

// Run ingests src: fetch, extract, normalize, then sections and chunk indexing side by side.
// A document whose id is already stored is not processed again.
func (p *Pipeline) Run(ctx context.Context, src Source) (Outcome, error) {
	log := logger.WithContext(ctx).With("source", src.Locator)

	if src.CanonicalId != "" {
		if out, found, err := p.existing(ctx, src.CanonicalId); err != nil || found {
			return out, err
		}
	}

	fetched, err := p.fetcher.Fetch(ctx, src)
	if err != nil {
		return Outcome{}, fmt.Errorf("fetching document: %w", err)
	}
	if fetched.Temporary {
		defer func() {
			if err := os.Remove(fetched.Path); err != nil {
				log.Warn("Error removing file", "path", fetched.Path, "error", err)
			}
		}()
	}

	raw, err := ExtractMarkdown(fetched.Path)
	if err != nil {
		return Outcome{}, fmt.Errorf("extracting document: %w", err)
	}
	text := cleaner.Normalize(raw)
	if text == "" {
		return Outcome{}, ErrEmptyDocument
	}

	doc := commonModels.Document{
		Source:     src.Locator,
		Text:       text,
		Title:      firstNonEmpty(fetched.Title, DetectTitle(text), src.FileName),
		IngestedAt: time.Now().UTC(),
	}
	doc.Id = src.CanonicalId
	if doc.Id == "" {
		doc.Id = documentId(doc.Title, text)
		if out, found, err := p.existing(ctx, doc.Id); err != nil || found {
			return out, err
		}
	}
	log = log.With("documentId", doc.Id)

	release, err := p.locker.Acquire(ctx, doc.Id)
	if err != nil {
		return Outcome{}, fmt.Errorf("waiting for ingest lock: %w", err)
	}
	defer release()

	// another worker may have finished the same document while we waited
	if out, found, err := p.existing(ctx, doc.Id); err != nil || found {
		return out, err
	}

	var (
		numChunks            int
		abstract, conclusion string
	)
	indexed := doc
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		abstract = cleaner.Abstract(text)
		conclusion = cleaner.Conclusion(text)
		return nil
	})
	g.Go(func() error {
		n, err := p.index(gctx, indexed)
		numChunks = n
		return err
	})
	if err := g.Wait(); err != nil {
		return Outcome{}, err
	}
	doc.Abstract = abstract
	doc.Conclusion = conclusion

	if err := p.articles.UpsertArticle(ctx, doc.Meta()); err != nil {
		return Outcome{}, fmt.Errorf("saving article metadata: %w", err)
	}
	log.Info("document ingested", "chunks", numChunks, "hasAbstract", doc.Abstract != "", "hasConclusion", doc.Conclusion != "")
	return Outcome{Document: doc.Meta(), NumChunks: numChunks}, nil
}

func (p *Pipeline) index(ctx context.Context, doc commonModels.Document) (int, error) {
	if err := p.vectorDB.CreateCollection(ctx); err != nil {
		return 0, fmt.Errorf("creating collection: %w", err)
	}
	// replace, never append: stale chunks of an earlier partial run are dropped first
	if err := p.vectorDB.DeleteDocument(ctx, doc.Id); err != nil {
		return 0, fmt.Errorf("clearing previous chunks: %w", err)
	}
	chunks := PrepareChunks(doc, SplitMarkdown(doc.Text, p.chunkSize, p.chunkOverlap))
	if err := BatchIngest(ctx, chunks, p.vectorDB, p.embedder); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

func (p *Pipeline) existing(ctx context.Context, id string) (Outcome, bool, error) {
	meta, err := p.articles.GetArticle(ctx, id)
	if errors.Is(err, commonModels.ErrNotFound) {
		return Outcome{}, false, nil
	}
	if err != nil {
		return Outcome{}, false, fmt.Errorf("looking up article %s: %w", id, err)
	}
	return Outcome{Document: meta, Skipped: true}, true, nil
}

func documentId(title string, text string) string {
	if strings.TrimSpace(title) != "" {
		return DocumentIdFromTitle(title)
	}
	sum := sha256.Sum256([]byte(text))
	return "doc-" + hex.EncodeToString(sum[:])[:16]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
