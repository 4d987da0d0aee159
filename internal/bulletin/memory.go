package bulletin

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps bulletins in process memory. It is used when no
// database is configured; contents are lost on restart.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]Bulletin
	now   func() time.Time
}

// NewMemoryRepository constructs an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID]Bulletin), now: time.Now}
}

// List returns every bulletin, newest first.
func (r *MemoryRepository) List(_ context.Context) ([]Bulletin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Bulletin, 0, len(r.items))
	for _, b := range r.items {
		out = append(out, clone(b))
	}
	slices.SortFunc(out, func(a, b Bulletin) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// Get returns one bulletin.
func (r *MemoryRepository) Get(_ context.Context, id uuid.UUID) (*Bulletin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := clone(b)
	return &out, nil
}

// Create stores a new bulletin.
func (r *MemoryRepository) Create(_ context.Context, in Input) (*Bulletin, error) {
	in, err := Validate(in)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b := Bulletin{
		ID:          uuid.New(),
		Date:        in.Date,
		Description: in.Description,
		ImageURLs:   in.ImageURLs,
		CreatedAt:   r.now().UTC(),
	}
	r.items[b.ID] = b
	out := clone(b)
	return &out, nil
}

// Update replaces the content of a bulletin and refreshes its timestamp.
func (r *MemoryRepository) Update(_ context.Context, id uuid.UUID, in Input) (*Bulletin, error) {
	in, err := Validate(in)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	b.Date = in.Date
	b.Description = in.Description
	b.ImageURLs = in.ImageURLs
	b.CreatedAt = r.now().UTC()
	r.items[id] = b

	out := clone(b)
	return &out, nil
}

// Delete removes a bulletin.
func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func clone(b Bulletin) Bulletin {
	b.ImageURLs = slices.Clone(b.ImageURLs)
	return b
}
