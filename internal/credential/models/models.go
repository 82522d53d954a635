package models

import (
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "vouch/pkg/domain-errors"
)

const (
	// credentialIDPrefix marks identifiers generated by this service, so they
	// are distinguishable from caller-supplied ones.
	credentialIDPrefix = "cred_"

	// MaxIDLength bounds caller-supplied identifiers.
	MaxIDLength = 256
)

// NewCredentialID generates a fresh globally-unique credential ID.
func NewCredentialID() string {
	return credentialIDPrefix + uuid.NewString()
}

// Document is an opaque structured credential as submitted by the caller.
// Its contents are free-form except for the optional "id" field.
type Document map[string]any

// Validate checks the structural requirements of a credential document:
// it must be a JSON object, and a pre-supplied "id", when present, must be a
// non-empty string.
func (d Document) Validate() error {
	if d == nil {
		return dErrors.New(dErrors.CodeValidation, "credential document is required")
	}
	raw, present := d["id"]
	if !present {
		return nil
	}
	id, ok := raw.(string)
	if !ok {
		return dErrors.New(dErrors.CodeValidation, "id must be a string")
	}
	if strings.TrimSpace(id) == "" {
		return dErrors.New(dErrors.CodeValidation, "id must be a non-empty string")
	}
	if len(id) > MaxIDLength {
		return dErrors.New(dErrors.CodeValidation, "id is too long")
	}
	return nil
}

// ID returns the document's identifier and whether one is present.
func (d Document) ID() (string, bool) {
	id, ok := d["id"].(string)
	if !ok || strings.TrimSpace(id) == "" {
		return "", false
	}
	return id, true
}

// WithID returns a copy of the document with the identifier merged in, so the
// stored record is self-describing.
func (d Document) WithID(id string) Document {
	merged := make(Document, len(d)+1)
	maps.Copy(merged, d)
	merged["id"] = id
	return merged
}

// Record is an issued credential as persisted by the store.
// Records are append-only: once written they are never mutated or deleted.
type Record struct {
	ID         string    `json:"id"`
	Credential Document  `json:"credential"`
	Worker     string    `json:"worker"`
	IssuedAt   time.Time `json:"issued_at"`
}

// Verification status values reported by the verify operation.
const (
	StatusValid   = "valid"
	StatusInvalid = "invalid"

	ReasonNotFound = "not_found"
)

// VerifyResult reports the outcome of a credential lookup. An unknown ID is a
// normal outcome carried in Status/Reason, not an error.
type VerifyResult struct {
	Status string
	Record *Record
	Reason string
}
