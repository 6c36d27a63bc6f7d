package utils

import "github.com/google/uuid"

// IDGenerator issues sync cycle ids. Ids are UUIDv7 so that they sort by
// creation time; a random UUIDv4 is returned if v7 generation fails.
type IDGenerator struct{}

func NewIDGenerator() IDGenerator {
	return IDGenerator{}
}

func (IDGenerator) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
