package apperr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{ClientInput, http.StatusBadRequest},
		{StateConflict, http.StatusUnprocessableEntity},
		{Auth, http.StatusUnauthorized},
		{External, http.StatusBadGateway},
		{NotFound, http.StatusNotFound},
		{Internal, http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, New(c.kind, "x").Status())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(External, "stripe call failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")
}

func TestConflictCarriesRemovedItems(t *testing.T) {
	removed := []RemovedItem{{Name: "Mug", ID: "p1", Reason: "is out of stock at the moment"}}
	err := Conflict("Some items in your cart are no longer available.", removed)
	assert.Equal(t, http.StatusUnprocessableEntity, err.Status())
	assert.Len(t, err.RemovedItems, 1)
	assert.Equal(t, "Mug", err.RemovedItems[0].Name)
}
