package commonModels

import (
	"context"
	"errors"
	"time"
)

type Document struct {
	Id         string    `json:"document_id"`
	Title      string    `json:"title"`
	Source     string    `json:"source"`
	Text       string    `json:"-"`
	Abstract   string    `json:"abstract"`
	Conclusion string    `json:"conclusion"`
	IngestedAt time.Time `json:"ingested_at"`
}

// ArticleMeta is what survives ingestion in the relational store.
type ArticleMeta struct {
	Id         string    `json:"document_id"`
	Title      string    `json:"title"`
	Abstract   string    `json:"abstract"`
	Conclusion string    `json:"conclusion"`
	IngestedAt time.Time `json:"ingested_at"`
}

func (d Document) Meta() ArticleMeta {
	return ArticleMeta{
		Id:         d.Id,
		Title:      d.Title,
		Abstract:   d.Abstract,
		Conclusion: d.Conclusion,
		IngestedAt: d.IngestedAt,
	}
}

type DocChunk struct {
	DocId   string `json:"document_id"`
	Title   string `json:"title"`
	ChunkId string `json:"chunk_id"`
	Chunk   string `json:"content"`
	Order   int    `json:"chunk_order"`
}

// Candidate is a chunk returned by similarity search, before reranking.
type Candidate struct {
	Text  string
	Order int
	Score float32
}

type ScoredChunk struct {
	Text  string  `json:"text"`
	Order int     `json:"chunk_order"`
	Score float64 `json:"score"`
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var MARKDOWN DocType = "MARKDOWN"
var ERR DocType = "ERROR"

var ErrNotFound = errors.New("not found")

type ArticleStore interface {
	GetArticle(ctx context.Context, id string) (ArticleMeta, error)
	UpsertArticle(ctx context.Context, meta ArticleMeta) error
	ArticleExists(ctx context.Context, id string) (bool, error)
}

// SessionStore binds a user to the one document they are currently working with. Last write wins.
type SessionStore interface {
	GetDocumentForUser(ctx context.Context, userId string) (string, error)
	SetDocumentForUser(ctx context.Context, userId string, documentId string) error
}
