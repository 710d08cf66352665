package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsDuplicateKeyError(t *testing.T) {
	dup := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}},
	}
	assert.True(t, IsDuplicateKeyError(dup))

	other := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 121, Message: "validation failed"}},
	}
	assert.False(t, IsDuplicateKeyError(other))

	assert.False(t, IsDuplicateKeyError(nil))
	assert.False(t, IsDuplicateKeyError(errors.New("plain error")))
}

func TestIsDuplicateKeyErrorWrapped(t *testing.T) {
	dup := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000}},
	}
	wrapped := errors.Join(errors.New("insert order"), dup)
	assert.True(t, IsDuplicateKeyError(wrapped))
}
