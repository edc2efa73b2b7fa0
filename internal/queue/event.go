// Package queue defines message payloads exchanged over the message broker.
package queue

// CatalogQueueName is the durable queue catalog change events go to.
const CatalogQueueName = "catalog.changed"

// Actions carried by CatalogChangedEvent.
const (
    ActionCreated = "created"
    ActionUpdated = "updated"
    ActionDeleted = "deleted"
)

// CatalogChangedEvent is published after an administrator creates,
// updates or deletes a catalog record.  It carries enough to write an
// audit trail without querying the primary database.
type CatalogChangedEvent struct {
    Entity     string `json:"entity"` // country, genre, person, film, award, nomination, result
    Action     string `json:"action"`
    ID         uint64 `json:"id"`
    Name       string `json:"name"`
    UserID     uint64 `json:"user_id"`
    Username   string `json:"username"`
    OccurredAt string `json:"occurred_at"` // RFC3339, UTC
}
