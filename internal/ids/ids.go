// Package ids provides the identifier generator the engine uses for every
// persisted entity.
package ids

import "github.com/google/uuid"

// Generator produces globally-unique string identifiers.
type Generator interface {
	NewID() string
}

// UUIDGenerator generates random v4 UUIDs.
type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator { return UUIDGenerator{} }

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
