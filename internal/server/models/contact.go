package models

// DeletedContact is the identity and metadata of a contact at the moment the
// CRUD context deletes it. Metadata is the contact's raw metadata map; the
// external-identifier fields inside it are resolved by the externalids
// package, everything else is ignored here.
type DeletedContact struct {
	UserID   string
	Name     string
	Email    string
	Metadata map[string]any
}

// ContactSnapshot is the audit payload attached to recorded tombstones.
type ContactSnapshot struct {
	Name  string
	Email string
}
