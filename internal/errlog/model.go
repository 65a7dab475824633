// Package errlog persists application errors so operators can inspect
// failures after the fact. The HTTP recoverer writes panics here; services
// record unexpected failures explicitly.
package errlog

import "time"

type Entry struct {
	ID        int64     `json:"id" db:"id"`
	Source    string    `json:"source" db:"source"`
	Message   string    `json:"message" db:"message"`
	Stack     *string   `json:"stack,omitempty" db:"stack"`
	RequestID *string   `json:"request_id,omitempty" db:"request_id"`
	ActorID   *int64    `json:"actor_id,omitempty" db:"actor_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
