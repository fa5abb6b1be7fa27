package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Document)}
}

func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit, offset = clampPage(limit, offset)

	r.mu.RLock()
	docs := []Document{}
	for _, doc := range r.data {
		if doc.UserID == userID {
			docs = append(docs, doc)
		}
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	if offset >= len(docs) {
		return []Document{}, nil
	}
	end := min(offset+limit, len(docs))
	return docs[offset:end], nil
}

func (r *MemoryRepo) MarkExtracted(ctx context.Context, id, textKey string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	if doc.ExtractedTextKey == "" {
		doc.ExtractedTextKey = textKey
		doc.ExtractedAt = &at
		r.data[id] = doc
	}
	return nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return limit, max(offset, 0)
}
