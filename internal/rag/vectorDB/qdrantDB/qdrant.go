package qdrantDB

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

var logger = logger_i.NewLogger("Qdrant")

const (
	payloadContent = "content"
	payloadTitle   = "title"
	payloadOrder   = "chunk_order"
	payloadChunkId = "chunk_id"
)

type ClientHolder struct {
	QObj           *qdrant.Client
	collectionName string
	dimension      uint64
}

type Options struct {
	Host   string
	Port   int
	APIKey string
}

// NewClientHolder connects, makes sure the chunk collection exists and closes the client when ctx ends.
func NewClientHolder(ctx context.Context, opts Options) (*ClientHolder, error) {
	if opts.Host == "" {
		opts.Host = config.QdrantHost
	}
	if opts.Port == 0 {
		opts.Port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     opts.Host,
		Port:     opts.Port,
		APIKey:   opts.APIKey,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("could not instantiate qdrant: %w", err)
	}

	db := &ClientHolder{
		QObj:           client,
		collectionName: config.EmbeddingDBName,
		dimension:      uint64(config.EmbeddingOutputDimensionality),
	}
	if err := db.CreateCollection(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("could not create collection %s: %w", db.collectionName, err)
	}

	go closeQdrant(ctx, client)
	logger.Info("Qdrant ready", "host", opts.Host, "port", opts.Port, "collection", db.collectionName)
	return db, nil
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant", "error", err)
		return
	}
	logger.Info("Closed Qdrant")
}

func documentFilter(docId string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch(config.DocumentIdPayloadKey, docId)},
	}
}

func (db *ClientHolder) Search(ctx context.Context, docId string, vectorFloat []float32, topK int) ([]commonModels.Candidate, error) {
	log := logger.WithContext(ctx)
	if topK <= 0 {
		return []commonModels.Candidate{}, nil
	}
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collectionName,
		Query:          qdrant.NewQuery(vectorFloat...),
		Filter:         documentFilter(docId),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		log.Error("Error querying Qdrant", "error", err)
		return nil, err
	}

	candidates := make([]commonModels.Candidate, 0, len(result))
	for _, hit := range result {
		candidates = append(candidates, commonModels.Candidate{
			Text:  hit.Payload[payloadContent].GetStringValue(),
			Order: int(hit.Payload[payloadOrder].GetIntegerValue()),
			Score: hit.Score,
		})
	}
	log.Debug("Found matches", "documentId", docId, "count", len(candidates))
	return candidates, nil
}

func (db *ClientHolder) DeleteDocument(ctx context.Context, docId string) error {
	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: db.collectionName,
		Points:         qdrant.NewPointsSelectorFilter(documentFilter(docId)),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadContent:              chunk.Chunk,
				payloadTitle:                chunk.Title,
				payloadOrder:                int64(chunk.Order),
				payloadChunkId:              chunk.ChunkId,
				config.DocumentIdPayloadKey: chunk.DocId,
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) CreateCollection(ctx context.Context) error {
	if db.collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := db.QObj.CollectionExists(ctx, db.collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: db.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     db.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return err
	}

	_, err = db.QObj.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: db.collectionName,
		FieldName:      config.DocumentIdPayloadKey,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	return err
}
