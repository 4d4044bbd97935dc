package models

import "time"

// Tombstone marks a single external identifier as deliberately deleted by a
// user. Import pipelines consult tombstones before materializing a contact
// from external data, so a deleted contact is not silently re-created on the
// next sync.
//
// A tombstone is unique per (UserID, Source, ExternalID). EntityName and
// EntityEmail are an audit snapshot of the deleted contact and carry no
// behavioral meaning.
type Tombstone struct {
	ID          string
	UserID      string
	Source      string
	ExternalID  string
	EntityName  string
	EntityEmail string
	InsertedAt  time.Time
}
