package domain

import "time"

// AdminAction is the kind of change recorded for the admin history.
type AdminAction string

const (
	AdminAddition AdminAction = "addition"
	AdminChange   AdminAction = "change"
	AdminDeletion AdminAction = "deletion"
)

// Object types recorded in the admin history.
const (
	ObjectUser    = "user"
	ObjectProject = "project"
	ObjectTask    = "task"
)

// AdminLogEntry records one change made through the admin backend.
type AdminLogEntry struct {
	ID         string      `json:"id"`
	ActorID    string      `json:"actor_id"`
	ObjectType string      `json:"object_type"`
	ObjectID   string      `json:"object_id"`
	ObjectRepr string      `json:"object_repr"`
	Action     AdminAction `json:"action"`
	CreatedAt  time.Time   `json:"created_at"`
}
