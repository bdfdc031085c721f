package sqliteStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/data/sqliteStore/migrations"
	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

// Store holds article metadata and user session bindings.
// It satisfies commonModels.ArticleStore and commonModels.SessionStore.
type Store struct {
	db     *sql.DB
	path   string
	logger *logger_i.Logger
}

func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		dataDir = config.SqliteDataDir
	}
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, config.SqliteFile)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath, logger: logger_i.NewLogger("SqliteStore")}
	if err := s.migrate(migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	s.logger.Info("sqlite store ready", "path", dbPath)
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) GetArticle(ctx context.Context, id string) (commonModels.ArticleMeta, error) {
	var (
		meta       commonModels.ArticleMeta
		ingestedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT arxiv_id, title, abstract, conclusion, ingested_at FROM article_metadata WHERE arxiv_id = ?", id,
	).Scan(&meta.Id, &meta.Title, &meta.Abstract, &meta.Conclusion, &ingestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return meta, commonModels.ErrNotFound
	}
	if err != nil {
		return meta, fmt.Errorf("reading article %s: %w", id, err)
	}
	meta.IngestedAt = time.Unix(ingestedAt, 0).UTC()
	return meta, nil
}

func (s *Store) UpsertArticle(ctx context.Context, meta commonModels.ArticleMeta) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO article_metadata (arxiv_id, title, abstract, conclusion, ingested_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(arxiv_id) DO UPDATE SET
			title = excluded.title,
			abstract = excluded.abstract,
			conclusion = excluded.conclusion,
			ingested_at = excluded.ingested_at
	`, meta.Id, meta.Title, meta.Abstract, meta.Conclusion, meta.IngestedAt.Unix())
	if err != nil {
		return fmt.Errorf("upserting article %s: %w", meta.Id, err)
	}
	return nil
}

func (s *Store) ArticleExists(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM article_metadata WHERE arxiv_id = ?", id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking article %s: %w", id, err)
	}
	return n > 0, nil
}

func (s *Store) GetDocumentForUser(ctx context.Context, userId string) (string, error) {
	var docId string
	err := s.db.QueryRowContext(ctx, "SELECT arxiv_id FROM user_sessions WHERE user_id = ?", userId).Scan(&docId)
	if errors.Is(err, sql.ErrNoRows) {
		return "", commonModels.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading session for %s: %w", userId, err)
	}
	return docId, nil
}

func (s *Store) SetDocumentForUser(ctx context.Context, userId string, documentId string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_sessions (user_id, arxiv_id, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET arxiv_id = excluded.arxiv_id, updated_at = excluded.updated_at
	`, userId, documentId, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("binding %s to %s: %w", userId, documentId, err)
	}
	return nil
}
