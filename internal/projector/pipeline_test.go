package projector

import (
	"testing"
	"time"

	"consumerwise/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItems() []model.Item {
	return []model.Item{
		{ID: "Acme_1", ProductName: "Choco Bar", Category: "snacks", Packaging: model.PackagingPlastic, CompanyName: "Acme", NutrientScore: "30"},
		{ID: "Acme_2", ProductName: "Oat Cookies", Category: "snacks", Packaging: model.PackagingPaper, CompanyName: "Acme", NutrientScore: "70"},
		{ID: "Bravo_1", ProductName: "Choco Milk", Category: "drinks", Packaging: model.PackagingPlastic, CompanyName: "Bravo", NutrientScore: "55"},
		{ID: "Bravo_2", ProductName: "Green Tea", Category: "drinks", Packaging: model.PackagingPaper, CompanyName: "Bravo", NutrientScore: "bad-value"},
	}
}

func TestProjectItems(t *testing.T) {
	t.Parallel()

	t.Run("no pipeline returns everything in order", func(t *testing.T) {
		t.Parallel()
		out := ProjectItems(sampleItems(), Pipeline{})
		require.Len(t, out, 4)
		assert.Equal(t, "Acme_1", out[0].ID)
		assert.Equal(t, "Bravo_2", out[3].ID)
	})

	t.Run("company filter", func(t *testing.T) {
		t.Parallel()
		out := ProjectItems(sampleItems(), Pipeline{Company: "Acme"})
		require.Len(t, out, 2)
		for _, i := range out {
			assert.Equal(t, "Acme", i.CompanyName)
		}
	})

	t.Run("search is case insensitive", func(t *testing.T) {
		t.Parallel()
		out := ProjectItems(sampleItems(), Pipeline{Search: "CHOCO"})
		require.Len(t, out, 2)
		assert.Equal(t, "Choco Bar", out[0].ProductName)
		assert.Equal(t, "Choco Milk", out[1].ProductName)
	})

	t.Run("category filter", func(t *testing.T) {
		t.Parallel()
		out := ProjectItems(sampleItems(), Pipeline{Category: "drinks"})
		require.Len(t, out, 2)
	})

	t.Run("nutrient sort high treats malformed score as zero", func(t *testing.T) {
		t.Parallel()
		out := ProjectItems(sampleItems(), Pipeline{Sort: SortNutrientHigh})
		require.Len(t, out, 4)
		assert.Equal(t, "70", out[0].NutrientScore)
		assert.Equal(t, "55", out[1].NutrientScore)
		assert.Equal(t, "30", out[2].NutrientScore)
		assert.Equal(t, "bad-value", out[3].NutrientScore)
	})

	t.Run("nutrient sort low", func(t *testing.T) {
		t.Parallel()
		out := ProjectItems(sampleItems(), Pipeline{Sort: SortNutrientLow})
		require.Len(t, out, 4)
		assert.Equal(t, "bad-value", out[0].NutrientScore)
		assert.Equal(t, "70", out[3].NutrientScore)
	})

	t.Run("packaging sort filters to the packaging", func(t *testing.T) {
		t.Parallel()
		out := ProjectItems(sampleItems(), Pipeline{Sort: SortPackagePaper})
		require.Len(t, out, 2)
		for _, i := range out {
			assert.Equal(t, model.PackagingPaper, i.Packaging)
		}
	})

	t.Run("equal scores keep snapshot order", func(t *testing.T) {
		t.Parallel()
		items := []model.Item{
			{ID: "a", NutrientScore: "50"},
			{ID: "b", NutrientScore: "50"},
			{ID: "c", NutrientScore: "50"},
		}
		out := ProjectItems(items, Pipeline{Sort: SortNutrientHigh})
		require.Len(t, out, 3)
		assert.Equal(t, "a", out[0].ID)
		assert.Equal(t, "b", out[1].ID)
		assert.Equal(t, "c", out[2].ID)
	})

	t.Run("limit truncates after sorting", func(t *testing.T) {
		t.Parallel()
		full := ProjectItems(sampleItems(), Pipeline{Sort: SortNutrientHigh})
		limited := ProjectItems(sampleItems(), Pipeline{Sort: SortNutrientHigh, Limit: 2})
		require.Len(t, limited, 2)
		assert.Equal(t, full[:2], limited)
	})

	t.Run("projection is deterministic", func(t *testing.T) {
		t.Parallel()
		p := Pipeline{Search: "o", Sort: SortNutrientHigh, Limit: 3}
		assert.Equal(t, ProjectItems(sampleItems(), p), ProjectItems(sampleItems(), p))
	})

	t.Run("input snapshot is not mutated", func(t *testing.T) {
		t.Parallel()
		items := sampleItems()
		ProjectItems(items, Pipeline{Sort: SortNutrientHigh})
		assert.Equal(t, sampleItems(), items)
	})
}

func TestProjectStocks(t *testing.T) {
	t.Parallel()

	stocks := []model.StockEntry{
		{ID: "Acme_1", CompanyName: "Acme", ProductName: "Choco Bar", ProductCategories: "snacks", NumberOfItems: 5},
		{ID: "Bravo_1", CompanyName: "Bravo", ProductName: "Choco Milk", ProductCategories: "drinks", NumberOfItems: 2},
		{ID: "Bravo_2", CompanyName: "Bravo", ProductName: "Green Tea", ProductCategories: "drinks", NumberOfItems: 9},
	}

	out := ProjectStocks(stocks, Pipeline{Company: "Bravo", Search: "choco"})
	require.Len(t, out, 1)
	assert.Equal(t, "Bravo_1", out[0].ID)

	out = ProjectStocks(stocks, Pipeline{Category: "drinks", Limit: 1})
	require.Len(t, out, 1)
	assert.Equal(t, "Bravo_1", out[0].ID)
}

func TestProjectMessages(t *testing.T) {
	t.Parallel()

	at := func(day int) string {
		return time.Date(2023, time.March, day, 12, 0, 0, 0, time.UTC).Format(time.RFC3339)
	}
	messages := []model.Message{
		{ProductName: "Choco Bar", CompanyName: "Acme", Message: "Acme has added a new product: Choco Bar", CreatedAt: at(1)},
		{ProductName: "Green Tea", CompanyName: "Bravo", Message: "Bravo has added a new product: Green Tea", CreatedAt: at(5)},
		{ProductName: "Oat Cookies", CompanyName: "Acme", Message: "Acme has updated a product: Oat Cookies", CreatedAt: at(3)},
	}

	t.Run("newest first", func(t *testing.T) {
		t.Parallel()
		out := ProjectMessages(messages, MessagePipeline{})
		require.Len(t, out, 3)
		assert.Equal(t, "Green Tea", out[0].ProductName)
		assert.Equal(t, "Oat Cookies", out[1].ProductName)
		assert.Equal(t, "Choco Bar", out[2].ProductName)
	})

	t.Run("search matches company name and body", func(t *testing.T) {
		t.Parallel()
		out := ProjectMessages(messages, MessagePipeline{Search: "acme"})
		assert.Len(t, out, 2)
		out = ProjectMessages(messages, MessagePipeline{Search: "updated"})
		require.Len(t, out, 1)
		assert.Equal(t, "Oat Cookies", out[0].ProductName)
	})

	t.Run("date range applies only when both ends are set", func(t *testing.T) {
		t.Parallel()
		from := time.Date(2023, time.March, 2, 0, 0, 0, 0, time.UTC)
		to := time.Date(2023, time.March, 4, 0, 0, 0, 0, time.UTC)
		out := ProjectMessages(messages, MessagePipeline{From: from, To: to})
		require.Len(t, out, 1)
		assert.Equal(t, "Oat Cookies", out[0].ProductName)

		out = ProjectMessages(messages, MessagePipeline{From: from})
		assert.Len(t, out, 3)
	})
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	s := []int{1, 2, 3, 4}
	assert.Equal(t, []int{1, 2}, truncate(s, 2))
	assert.Equal(t, s, truncate(s, 0))
	assert.Equal(t, s, truncate(s, -1))
	assert.Equal(t, s, truncate(s, 10))
}
