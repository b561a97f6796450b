package retrieval

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// chunkTargetSize is the rough character budget for one knowledge chunk.
// Chunks are paragraph-aligned, so actual sizes vary around this target.
const chunkTargetSize = 1000

// Document is one knowledge base entry to be embedded and indexed.
type Document struct {
	Text   string
	Source string
}

// EnsureCollection creates the backing collection if it does not exist yet.
// vectorSize must match the embedding model's output dimension.
func (r *Retriever) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	exists, err := r.client.CollectionExists(ctx, r.collection)
	if err != nil {
		return &UnavailableError{Message: "failed to check collection", Cause: err}
	}
	if exists {
		return nil
	}

	err = r.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return &UnavailableError{Message: "failed to create collection", Cause: err}
	}
	return nil
}

// Index embeds a document and upserts it into the collection. Each document
// gets a fresh UUID point ID; re-ingesting the same file produces new points.
func (r *Retriever) Index(ctx context.Context, doc Document) error {
	if strings.TrimSpace(doc.Text) == "" {
		return &InvalidQueryError{Message: "document text is empty"}
	}

	vector, err := r.embedder.EmbedText(ctx, doc.Text)
	if err != nil {
		return &UnavailableError{Message: "failed to embed document", Cause: err}
	}

	_, err = r.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: r.collection,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewIDUUID(uuid.New().String()),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					payloadKeyText:   doc.Text,
					payloadKeySource: doc.Source,
				}),
			},
		},
	})
	if err != nil {
		return &UnavailableError{Message: "upsert failed", Cause: err}
	}
	return nil
}

// ChunkText splits raw text into paragraph-aligned chunks of roughly
// chunkTargetSize characters. Paragraphs longer than the target stay whole;
// embedding models tolerate oversized inputs better than mid-sentence cuts.
func ChunkText(text string) []string {
	paragraphs := strings.Split(text, "\n\n")

	var chunks []string
	var current strings.Builder

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+len(para) > chunkTargetSize {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
