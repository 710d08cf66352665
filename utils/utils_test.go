package utils

import (
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCouponCode(t *testing.T) {
	code := GenerateCouponCode(6)
	assert.Len(t, code, 12)
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-F]+$`), code)

	// two draws colliding would mean a broken random source
	assert.NotEqual(t, code, GenerateCouponCode(6))
}

func TestParsePagination(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/products?page=3&limit=25", nil)
	page, limit := ParsePagination(r)
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, limit)

	r = httptest.NewRequest("GET", "/api/products", nil)
	page, limit = ParsePagination(r)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)

	r = httptest.NewRequest("GET", "/api/products?page=-2&limit=5000", nil)
	page, limit = ParsePagination(r)
	assert.Equal(t, 1, page)
	assert.Equal(t, 100, limit)
}
