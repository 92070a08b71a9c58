package catalog

import (
	"os"
	"path/filepath"
	"shoppingts/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []model.Product {
	return []model.Product{
		{ID: "p1", Title: "게이밍 노트북", Price: "₩1,500,000", Popularity: 50, CreatedAt: "2025-01-10", Category: "laptop"},
		{ID: "p2", Title: "무선 이어폰", Price: "129,000원", Popularity: 90, CreatedAt: "2025-03-01", Category: "tv-audio"},
		{ID: "p3", Title: "Widget Title", Price: "₩9,900", Popularity: 10, CreatedAt: "2024-12-24T10:00:00Z", Category: "accessory"},
		{Title: "이름만 있는 상품", Price: "", Popularity: 70},
	}
}

func TestParsePrice(t *testing.T) {
	assert.Equal(t, 1500000, ParsePrice("₩1,500,000"))
	assert.Equal(t, 129000, ParsePrice("129,000원"))
	assert.Equal(t, 0, ParsePrice(""))
	assert.Equal(t, 0, ParsePrice("가격 문의"))
	assert.Equal(t, 0, ParsePrice("99999999999999999999999"))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "₩0", FormatPrice(0))
	assert.Equal(t, "₩999", FormatPrice(999))
	assert.Equal(t, "₩1,000", FormatPrice(1000))
	assert.Equal(t, "₩1,290,000", FormatPrice(1290000))
	assert.Equal(t, "-₩5,000", FormatPrice(-5000))
}

func TestResolve_IDThenTitle(t *testing.T) {
	c := New(sample())

	p, ok := c.Resolve("p3")
	require.True(t, ok)
	assert.Equal(t, "Widget Title", p.Title)

	id, ok := c.ResolveID("Widget Title")
	require.True(t, ok)
	assert.Equal(t, "p3", id)

	id, ok = c.ResolveID("이름만 있는 상품")
	require.True(t, ok)
	assert.Equal(t, "이름만 있는 상품", id)

	_, ok = c.ResolveID("unknown")
	assert.False(t, ok)

	assert.Equal(t, "unknown", c.Title("unknown"))
	assert.Equal(t, 9900, c.Price("p3"))
	assert.Equal(t, 0, c.Price("unknown"))
}

func TestSort(t *testing.T) {
	list := sample()

	ids := func(ps []model.Product) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.Title
		}
		return out
	}

	assert.Equal(t, []string{"무선 이어폰", "이름만 있는 상품", "게이밍 노트북", "Widget Title"}, ids(Sort(list, SortPopular)))
	assert.Equal(t, []string{"무선 이어폰", "게이밍 노트북", "Widget Title", "이름만 있는 상품"}, ids(Sort(list, SortNew)))
	assert.Equal(t, []string{"이름만 있는 상품", "Widget Title", "무선 이어폰", "게이밍 노트북"}, ids(Sort(list, SortPriceAsc)))
	assert.Equal(t, []string{"게이밍 노트북", "무선 이어폰", "Widget Title", "이름만 있는 상품"}, ids(Sort(list, SortPriceDesc)))
	assert.Equal(t, ids(list), ids(Sort(list, "unknown")))

	// Исходный список не меняется
	assert.Equal(t, "게이밍 노트북", list[0].Title)
}

func TestFilter(t *testing.T) {
	c := New(sample())
	assert.Len(t, c.Filter(""), 4)
	laptops := c.Filter("laptop")
	require.Len(t, laptops, 1)
	assert.Equal(t, "p1", laptops[0].ID)
	assert.Empty(t, c.Filter("kitchen"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"p1","title":"A","price":"₩1,000","desc":"d"}]`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.All(), 1)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}
