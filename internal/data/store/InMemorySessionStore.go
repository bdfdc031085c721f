package store

import (
	"context"
	"sync"

	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
)

type InMemorySessionStore struct {
	lock     *sync.RWMutex
	sessions map[string]string
}

func InitInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		lock:     new(sync.RWMutex),
		sessions: make(map[string]string),
	}
}

func (store *InMemorySessionStore) GetDocumentForUser(ctx context.Context, userId string) (string, error) {
	store.lock.RLock()
	defer store.lock.RUnlock()
	docId, ok := store.sessions[userId]
	if !ok {
		return "", commonModels.ErrNotFound
	}
	return docId, nil
}

func (store *InMemorySessionStore) SetDocumentForUser(ctx context.Context, userId string, documentId string) error {
	store.lock.Lock()
	defer store.lock.Unlock()
	store.sessions[userId] = documentId
	return nil
}

type InMemoryArticleStore struct {
	lock     *sync.RWMutex
	articles map[string]commonModels.ArticleMeta
}

func InitInMemoryArticleStore() *InMemoryArticleStore {
	return &InMemoryArticleStore{
		lock:     new(sync.RWMutex),
		articles: make(map[string]commonModels.ArticleMeta),
	}
}

func (store *InMemoryArticleStore) GetArticle(ctx context.Context, id string) (commonModels.ArticleMeta, error) {
	store.lock.RLock()
	defer store.lock.RUnlock()
	meta, ok := store.articles[id]
	if !ok {
		return commonModels.ArticleMeta{}, commonModels.ErrNotFound
	}
	return meta, nil
}

func (store *InMemoryArticleStore) UpsertArticle(ctx context.Context, meta commonModels.ArticleMeta) error {
	store.lock.Lock()
	defer store.lock.Unlock()
	store.articles[meta.Id] = meta
	return nil
}

func (store *InMemoryArticleStore) ArticleExists(ctx context.Context, id string) (bool, error) {
	store.lock.RLock()
	defer store.lock.RUnlock()
	_, ok := store.articles[id]
	return ok, nil
}
