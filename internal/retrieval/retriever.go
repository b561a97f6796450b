package retrieval

import (
	"context"
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"github.com/nana-intelligence/agent-juliette/internal/types"
)

const (
	// DefaultLimit is used when the caller does not bound the result count.
	DefaultLimit = 5
	// MaxLimit caps result counts regardless of what the caller asks for.
	MaxLimit = 10
	// DefaultScoreThreshold filters out weakly related snippets. Kept low on
	// purpose so the drafter receives context even for loosely phrased needs.
	DefaultScoreThreshold = 0.4

	payloadKeyText   = "text"
	payloadKeySource = "source"
)

// Embedder turns text into a dense vector. Satisfied by llm.Client.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Config holds connection settings for the Qdrant-backed retriever.
type Config struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	// ScoreThreshold overrides DefaultScoreThreshold when > 0.
	ScoreThreshold float32
}

// Retriever performs similarity search against a Qdrant collection.
// Queries are embedded with the configured Embedder before searching.
type Retriever struct {
	client         *qdrant.Client
	embedder       Embedder
	collection     string
	scoreThreshold float32
}

// New creates a Retriever connected to the configured Qdrant instance.
func New(cfg Config, embedder Embedder) (*Retriever, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, &UnavailableError{Message: "failed to create client", Cause: err}
	}

	threshold := cfg.ScoreThreshold
	if threshold <= 0 {
		threshold = DefaultScoreThreshold
	}

	return &Retriever{
		client:         client,
		embedder:       embedder,
		collection:     cfg.Collection,
		scoreThreshold: threshold,
	}, nil
}

// Retrieve returns the top snippets most relevant to query, ordered by
// descending relevance score. limit is clamped to [1, MaxLimit]; zero or
// negative values use DefaultLimit.
func (r *Retriever) Retrieve(ctx context.Context, query string, limit int) ([]types.ContextSnippet, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &InvalidQueryError{Message: "query is empty"}
	}

	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, &UnavailableError{Message: "failed to embed query", Cause: err}
	}

	points, err := r.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: r.collection,
		Query:          qdrant.NewQueryDense(vector),
		Limit:          qdrant.PtrOf(uint64(limit)),
		ScoreThreshold: qdrant.PtrOf(r.scoreThreshold),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, &UnavailableError{Message: "search failed", Cause: err}
	}

	snippets := make([]types.ContextSnippet, 0, len(points))
	for _, point := range points {
		snippet := types.ContextSnippet{Score: point.Score}
		if v, ok := point.Payload[payloadKeyText]; ok {
			snippet.Text = v.GetStringValue()
		}
		if v, ok := point.Payload[payloadKeySource]; ok {
			snippet.Source = v.GetStringValue()
		}
		if snippet.Text == "" {
			continue
		}
		snippets = append(snippets, snippet)
	}

	return snippets, nil
}

// CollectionInfo describes the backing collection, for diagnostics.
type CollectionInfo struct {
	Collection  string `json:"collection"`
	PointsCount uint64 `json:"points_count"`
	Status      string `json:"status"`
}

// Info returns the status of the backing collection.
func (r *Retriever) Info(ctx context.Context) (*CollectionInfo, error) {
	info, err := r.client.GetCollectionInfo(ctx, r.collection)
	if err != nil {
		return nil, &UnavailableError{Message: "failed to fetch collection info", Cause: err}
	}

	result := &CollectionInfo{
		Collection: r.collection,
		Status:     info.GetStatus().String(),
	}
	if info.PointsCount != nil {
		result.PointsCount = *info.PointsCount
	}
	return result, nil
}

// Close releases the underlying gRPC connection.
func (r *Retriever) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
