package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_FileSnapshot_Write(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "products.json")
	snapshot := NewFileSnapshot(path)
	products := []Product{{
		ID:          1,
		Title:       "A",
		Description: "d",
		Price:       decimal.RequireFromString("10.5"),
		Thumbnail:   "t.png",
		Code:        "C1",
		Stock:       decimal.NewFromInt(5),
	}}

	// when
	err := snapshot.Write(context.Background(), products)

	// then
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	expected := `[
  {
    "id": 1,
    "title": "A",
    "description": "d",
    "price": 10.5,
    "thumbnail": "t.png",
    "code": "C1",
    "stock": 5
  }
]`
	assert.Equal(t, expected, string(data))
}

func Test_FileSnapshot_Write_EmptyCollection(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "products.json")

	// when
	err := NewFileSnapshot(path).Write(context.Background(), nil)

	// then
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func Test_FileSnapshot_Write_Failure(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "missing-dir", "products.json")

	// when
	err := NewFileSnapshot(path).Write(context.Background(), []Product{})

	// then
	require.ErrorIs(t, err, perrors.ErrStorage)
}

func Test_FileSnapshot_Read(t *testing.T) {
	testCases := []struct {
		name     string
		content  *string
		expected []Product
		wantErr  error
	}{
		{
			name:    "Success - products in file order",
			content: ptr(`[{"id":3,"title":"A","description":"d","price":1.25,"thumbnail":"t","code":"X","stock":2},{"id":1,"title":"B","description":"d","price":"7","thumbnail":"t","code":"Y","stock":1}]`),
			expected: []Product{
				{ID: 3, Title: "A", Description: "d", Price: decimal.RequireFromString("1.25"), Thumbnail: "t", Code: "X", Stock: decimal.NewFromInt(2)},
				{ID: 1, Title: "B", Description: "d", Price: decimal.NewFromInt(7), Thumbnail: "t", Code: "Y", Stock: decimal.NewFromInt(1)},
			},
		},
		{
			name:     "Success - empty array",
			content:  ptr(`[]`),
			expected: []Product{},
		},
		{
			name:    "Error - missing file",
			wantErr: perrors.ErrStorage,
		},
		{
			name:    "Error - malformed json",
			content: ptr(`[{"id":1,`),
			wantErr: perrors.ErrCorruptStorage,
		},
		{
			name:    "Error - not an array",
			content: ptr(`{"id":1}`),
			wantErr: perrors.ErrCorruptStorage,
		},
		{
			name:    "Success - fractional and exponent stock",
			content: ptr(`[{"id":1,"title":"A","description":"d","price":1,"thumbnail":"t","code":"X","stock":2.5},{"id":2,"title":"B","description":"d","price":2,"thumbnail":"t","code":"Y","stock":1e2}]`),
			expected: []Product{
				{ID: 1, Title: "A", Description: "d", Price: decimal.NewFromInt(1), Thumbnail: "t", Code: "X", Stock: decimal.RequireFromString("2.5")},
				{ID: 2, Title: "B", Description: "d", Price: decimal.NewFromInt(2), Thumbnail: "t", Code: "Y", Stock: decimal.NewFromInt(100)},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			path := filepath.Join(t.TempDir(), "products.json")
			if tc.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tc.content), 0o644))
			}

			// when
			products, err := NewFileSnapshot(path).Read(context.Background())

			// then
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, products)
				return
			}
			require.NoError(t, err)
			requireSameProducts(t, tc.expected, products)
		})
	}
}

func Test_FileSnapshot_ErrorNamesPath(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "products.json")
	snapshot := NewFileSnapshot(path)

	// when
	_, err := snapshot.Read(context.Background())

	// then
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), path))
	assert.Equal(t, path, snapshot.Path())
}

func Test_FileSnapshot_FractionalStockRoundTrip(t *testing.T) {
	// given
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "products.json")
	content := `[{"id":1,"title":"A","description":"d","price":1,"thumbnail":"t","code":"X","stock":5},` +
		`{"id":2,"title":"B","description":"d","price":1,"thumbnail":"t","code":"Y","stock":2.5}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	s := NewCatalogStore(NewFileSnapshot(path), discardLogger())

	// when
	require.NoError(t, s.Load(ctx))
	_, err := s.Add(ctx, validProduct("Z"))
	require.NoError(t, err)

	// then
	products, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.True(t, decimal.RequireFromString("2.5").Equal(products[1].Stock))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"stock": 2.5`)
	reloaded, err := NewFileSnapshot(path).Read(ctx)
	require.NoError(t, err)
	requireSameProducts(t, products, reloaded)
}

func ptr[T any](v T) *T {
	return &v
}
