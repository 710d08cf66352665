package middleware

import (
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestSessionAccepts(t *testing.T) {
	// live session with the matching token
	assert.True(t, SessionAccepts("tok-abc", nil, "tok-abc"))

	// entry gone: the user logged out, token rejected despite valid JWT
	assert.False(t, SessionAccepts("", redis.Nil, "tok-abc"))

	// entry holds a newer token (refresh rotated it): old token rejected
	assert.False(t, SessionAccepts("tok-new", nil, "tok-old"))

	// cache unreachable: fall back to JWT expiry rather than locking
	// everyone out
	assert.True(t, SessionAccepts("", errors.New("connection refused"), "tok-abc"))
}
