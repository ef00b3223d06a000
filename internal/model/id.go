package model

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidID = errors.New("invalid id format")

// ID is a 12-byte ObjectID, rendered as 24 lowercase hex characters.
type ID = primitive.ObjectID

func NewID() ID {
	return primitive.NewObjectID()
}

// ParseID checks the identifier shape only; it says nothing about existence.
func ParseID(s string) (ID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}
