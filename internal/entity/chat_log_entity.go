package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ChatLog is one appended (question, answer, user, category) record of the
// external chat log. Documents snapshots the provenance of the retrieved
// passages the answer was grounded on.
type ChatLog struct {
	Id        uuid.UUID
	UserId    string
	Category  string
	Question  string
	Answer    string
	Documents json.RawMessage
	CreatedAt time.Time
}
