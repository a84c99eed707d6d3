package model

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItemID(t *testing.T) {
	t.Parallel()

	at := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)
	id := NewItemID("Acme", at)
	assert.True(t, strings.HasPrefix(id, "Acme_"))

	millis, err := strconv.ParseInt(strings.TrimPrefix(id, "Acme_"), 10, 64)
	require.NoError(t, err)
	assert.Equal(t, at.UnixMilli(), millis)

	// Same company and same millisecond collide; the window is accepted.
	assert.Equal(t, id, NewItemID("Acme", at))
	assert.NotEqual(t, id, NewItemID("Acme", at.Add(time.Millisecond)))
}

func TestProductMessages(t *testing.T) {
	t.Parallel()

	i := Item{
		ID:          "Acme_1677672000000",
		ProductName: "Choco Bar",
		CompanyName: "Acme",
		Image1:      "https://cdn.example.com/choco.png",
	}
	now := time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC)

	t.Run("new product", func(t *testing.T) {
		t.Parallel()
		m := NewProductMessage(i, now)
		assert.Equal(t, "Acme has added a new product: Choco Bar", m.Message)
		assert.Equal(t, i.ID, m.ProductID)
		assert.Equal(t, i.Image1, m.Image1)
		assert.Equal(t, "2023-03-01T12:00:00Z", m.CreatedAt)
		assert.True(t, m.IsClickable)
		assert.False(t, m.Read)
	})

	t.Run("updated product", func(t *testing.T) {
		t.Parallel()
		m := UpdatedProductMessage(i, now)
		assert.Equal(t, "Acme has updated a product: Choco Bar", m.Message)
		assert.True(t, m.IsClickable)
		assert.False(t, m.Read)
	})
}
