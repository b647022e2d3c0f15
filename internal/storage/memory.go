package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/clouddrive/backend/internal/models"
)

// MemoryGateway keeps content in process memory. It backs the embedded
// profile and tests; nothing stored here survives a restart.
type MemoryGateway struct {
	mu      sync.Mutex
	objects map[string][]byte

	// FailStore, when set, makes every Store call fail. Tests use it to
	// exercise gateway-failure paths.
	FailStore bool
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{objects: make(map[string][]byte)}
}

func (g *MemoryGateway) Store(ctx context.Context, data []byte, kind models.ItemKind) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}
	if g.FailStore {
		return Object{}, fmt.Errorf("%w: store rejected", ErrGatewayFailure)
	}

	handle := fmt.Sprintf("%s/%s", kind, uuid.New().String())

	g.mu.Lock()
	buf := make([]byte, len(data))
	copy(buf, data)
	g.objects[handle] = buf
	g.mu.Unlock()

	return Object{
		Handle: handle,
		URL:    "memory://" + handle,
	}, nil
}

func (g *MemoryGateway) Destroy(ctx context.Context, handle string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.objects[handle]; !ok {
		return fmt.Errorf("%w: unknown handle %s", ErrGatewayFailure, handle)
	}
	delete(g.objects, handle)
	return nil
}

// Len reports the number of stored objects.
func (g *MemoryGateway) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.objects)
}
