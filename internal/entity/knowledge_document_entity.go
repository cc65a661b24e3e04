package entity

import (
	"time"

	"github.com/google/uuid"
)

// Domain keys for the retrieval corpus. One per routing category.
const (
	DomainPolicy    = "policy"
	DomainSubject   = "subject"
	DomainAdmission = "admission"
	DomainBook      = "book"
	DomainService   = "service"
)

// KnowledgeDocument is one indexed passage of the retrieval corpus, scoped to
// a single domain.
type KnowledgeDocument struct {
	Id        uuid.UUID
	Domain    string
	Content   string
	Metadata  map[string]string
	Embedding []float32
	CreatedAt time.Time
	UpdatedAt *time.Time
}
