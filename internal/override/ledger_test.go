package override

import (
	"fmt"
	"testing"

	"github.com/conviteapp/convite-backend/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringPtr(value string) *string {
	return &value
}

func TestMarkAddsMarginAndTag(t *testing.T) {
	item := models.LineItem{Quantity: 20}

	marked := Mark(item)

	assert.Equal(t, 22, marked.Quantity)
	assert.True(t, marked.IsOverride)
	require.NotNil(t, marked.Notes)
	assert.Contains(t, *marked.Notes, "|BASE:20")
}

func TestMarkMinimumOneUnit(t *testing.T) {
	marked := Mark(models.LineItem{Quantity: 3})

	// 10% of 3 rounds up to 1 unit
	assert.Equal(t, 4, marked.Quantity)
}

func TestMarkStripsStaleTagFirst(t *testing.T) {
	item := models.LineItem{
		Quantity: 15,
		Notes:    stringPtr("pedido urgente|BASE:99"),
	}

	marked := Mark(item)

	require.NotNil(t, marked.Notes)
	assert.Contains(t, *marked.Notes, "|BASE:15")
	assert.NotContains(t, *marked.Notes, "|BASE:99")
}

func TestClearRestoresExactBase(t *testing.T) {
	item := models.LineItem{Quantity: 20, Notes: stringPtr("nota del cliente")}

	cleared := Clear(Mark(item))

	assert.Equal(t, 20, cleared.Quantity)
	assert.False(t, cleared.IsOverride)
	require.NotNil(t, cleared.Notes)
	assert.NotContains(t, *cleared.Notes, "|BASE:")
	assert.Contains(t, *cleared.Notes, "nota del cliente")
}

func TestClearRoundTripExactForRange(t *testing.T) {
	for base := 1; base <= 200; base++ {
		cleared := Clear(Mark(models.LineItem{Quantity: base}))
		require.Equal(t, base, cleared.Quantity, "base=%d", base)
	}
}

func TestClearFallsBackWhenTagMissing(t *testing.T) {
	item := models.LineItem{
		Quantity:   22,
		IsOverride: true,
		Notes:      stringPtr("etiqueta borrada a mano"),
	}

	cleared := Clear(item)

	// round(22 / 1.10) = 20
	assert.Equal(t, 20, cleared.Quantity)
	assert.False(t, cleared.IsOverride)
}

func TestClearIsNoOpWhenNotOverridden(t *testing.T) {
	item := models.LineItem{Quantity: 18}

	cleared := Clear(item)

	assert.Equal(t, 18, cleared.Quantity)
	assert.False(t, cleared.IsOverride)

	// A second clear must not divide again.
	again := Clear(cleared)
	assert.Equal(t, 18, again.Quantity)
}

func TestClearCorruptTagFallsBack(t *testing.T) {
	item := models.LineItem{
		Quantity:   11,
		IsOverride: true,
		Notes:      stringPtr(fmt.Sprintf("|BASE:%s", "no-un-numero")),
	}

	cleared := Clear(item)

	assert.Equal(t, 10, cleared.Quantity)
	assert.False(t, cleared.IsOverride)
}

func TestBaseQuantity(t *testing.T) {
	marked := Mark(models.LineItem{Quantity: 42})
	base, ok := BaseQuantity(marked)
	require.True(t, ok)
	assert.Equal(t, 42, base)

	_, ok = BaseQuantity(models.LineItem{})
	assert.False(t, ok)
}

func TestAtMostOneTag(t *testing.T) {
	item := models.LineItem{Quantity: 10}
	for i := 0; i < 3; i++ {
		item = Mark(Clear(item))
	}
	require.NotNil(t, item.Notes)
	assert.Len(t, tagPattern.FindAllString(*item.Notes, -1), 1)
}
