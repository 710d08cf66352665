package cart

import (
	"testing"

	"albaceo/models"

	"github.com/stretchr/testify/assert"
)

func TestFindItem(t *testing.T) {
	items := []models.CartItem{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 3},
	}

	assert.Equal(t, 0, FindItem(items, "p1"))
	assert.Equal(t, 1, FindItem(items, "p2"))
	assert.Equal(t, -1, FindItem(items, "p3"))
	assert.Equal(t, -1, FindItem(nil, "p1"))
}
