// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/medicoord/coordinator-go/internal/domain"
)

// Completer is the sole external AI collaborator: an opaque
// text-completion capability. Implementations must collapse every failure
// into *domain.ErrServiceCall.
type Completer interface {
	Complete(ctx context.Context, messages []domain.ChatMessage, maxTokens int) (string, error)
}

// Responder is the shared contract for the specialized responders.
// The returned result carries failures as data; Handle never returns an error.
type Responder interface {
	ID() domain.ResponderID
	Handle(ctx context.Context, subjectID, request string) domain.ResponderResult
}

// PatientDirectory resolves patient ids to read-only records.
// Unknown ids resolve to an all-empty "Unknown" record, never an error.
type PatientDirectory interface {
	LookupPatient(ctx context.Context, patientID string) (*domain.PatientRecord, error)
}

// InventoryProvider returns the current inventory snapshot (item → units).
// The snapshot is purely informational context for prompts; nothing is
// ever decremented.
type InventoryProvider interface {
	CurrentInventory(ctx context.Context) (map[string]int, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
