package responseCache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
)

const (
	PurposeQuestion = "qa"
	PurposeSummary  = "summary"

	keyPrefix = "resp:"
)

// Cache holds finished results keyed by document and request. Entries of a document are dropped when it is re-indexed.
type Cache interface {
	Get(ctx context.Context, key string) (jobModel.JobResult, bool, error)
	Set(ctx context.Context, key string, value jobModel.JobResult, ttl time.Duration) error
	InvalidateDocument(ctx context.Context, docId string) error
}

// QuestionKey is sensitive to case and whitespace in question.
func QuestionKey(docId string, question string) string {
	return key(docId, PurposeQuestion, question)
}

func SummaryKey(docId string) string {
	return key(docId, PurposeSummary, "")
}

func key(docId string, purpose string, query string) string {
	sum := sha256.Sum256([]byte(docId + "\x00" + purpose + "\x00" + query))
	return documentPrefix(docId) + hex.EncodeToString(sum[:])
}

// documentPrefix has a fixed length, so no document's prefix is a prefix of another's.
func documentPrefix(docId string) string {
	sum := sha256.Sum256([]byte(docId))
	return keyPrefix + hex.EncodeToString(sum[:])[:32] + ":"
}
