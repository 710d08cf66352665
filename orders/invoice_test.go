package orders

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoicePayloadRoundTrip(t *testing.T) {
	payload := InvoicePayload("order-123", "cs_test_abc")

	orderID, ok := VerifyInvoicePayload(payload)
	require.True(t, ok)
	assert.Equal(t, "order-123", orderID)
}

func TestVerifyInvoicePayloadRejectsTampering(t *testing.T) {
	payload := InvoicePayload("order-123", "cs_test_abc")

	tampered := strings.Replace(payload, "order-123", "order-999", 1)
	_, ok := VerifyInvoicePayload(tampered)
	assert.False(t, ok)

	_, ok = VerifyInvoicePayload("no-pipes-here")
	assert.False(t, ok)

	_, ok = VerifyInvoicePayload("")
	assert.False(t, ok)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "$0.00", formatCents(0))
	assert.Equal(t, "$0.05", formatCents(5))
	assert.Equal(t, "$12.00", formatCents(1200))
	assert.Equal(t, "$123.45", formatCents(12345))
}
