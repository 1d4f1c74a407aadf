package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/service"
	"github.com/abgdnv/catalog/pkg/server"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProductService is a mock implementation of the ProductService interface
type mockProductService struct {
	product   *service.ProductDto
	products  []service.ProductDto
	error     error
	lastID    int
	lastLimit *int
}

func (m *mockProductService) FindByID(_ context.Context, id int) (*service.ProductDto, error) {
	m.lastID = id
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductService) FindAll(_ context.Context, limit *int) ([]service.ProductDto, error) {
	m.lastLimit = limit
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockProductService) Create(_ context.Context, _ service.ProductCreateDto) (*service.ProductDto, error) {
	return m.product, m.error
}

func (m *mockProductService) Update(_ context.Context, _ int, _ service.ProductUpdateDto) (*service.ProductDto, error) {
	return m.product, m.error
}

func (m *mockProductService) DeleteByID(_ context.Context, _ int) error {
	return m.error
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

var toy = service.ProductDto{
	ID:          1,
	Title:       "A",
	Description: "d",
	Price:       decimal.RequireFromString("10.5"),
	Thumbnail:   "t.png",
	Code:        "C1",
	Stock:       decimal.NewFromInt(5),
}

const toyJSON = `{"id":1,"title":"A","description":"d","price":10.5,"thumbnail":"t.png","code":"C1","stock":5}`

func Test_CatalogAPI_FindByID(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockProductService
		pid          string
		expectedID   int
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product found",
			mockService:  mockProductService{product: &toy},
			pid:          "1",
			expectedID:   1,
			expectedCode: http.StatusOK,
			expectedBody: toyJSON,
		},
		{
			name:         "Success - leading integer is used",
			mockService:  mockProductService{product: &toy},
			pid:          "1abc",
			expectedID:   1,
			expectedCode: http.StatusOK,
			expectedBody: toyJSON,
		},
		{
			name:         "Error - product not found",
			mockService:  mockProductService{error: fmt.Errorf("failed: %w", perrors.ErrProductNotFound)},
			pid:          "999",
			expectedID:   999,
			expectedCode: http.StatusNotFound,
			expectedBody: `{"message":"Producto no encontrado"}`,
		},
		{
			name:         "Error - unparsable id",
			mockService:  mockProductService{product: &toy},
			pid:          "abc",
			expectedCode: http.StatusNotFound,
			expectedBody: `{"message":"Producto no encontrado"}`,
		},
		{
			name:         "Error - storage error",
			mockService:  mockProductService{error: fmt.Errorf("failed: %w", perrors.ErrStorage)},
			pid:          "2",
			expectedID:   2,
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"message":"Error al leer el archivo de productos"}`,
		},
		{
			name:         "Error - unexpected error",
			mockService:  mockProductService{error: errors.New("boom")},
			pid:          "2",
			expectedID:   2,
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"message":"Internal Server Error"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, discardLogger())
			req := httptest.NewRequest(http.MethodGet, "/products/"+tc.pid, nil)
			req.SetPathValue("pid", tc.pid)
			rr := httptest.NewRecorder()

			// when
			api.FindByID(rr, req)

			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
			assert.Equal(t, tc.expectedID, tc.mockService.lastID)
		})
	}
}

func Test_CatalogAPI_FindAll(t *testing.T) {
	intPtr := func(n int) *int { return &n }
	testCases := []struct {
		name          string
		mockService   mockProductService
		query         string
		expectedLimit *int
		expectedCode  int
		expectedBody  string
	}{
		{
			name:         "Success - no limit",
			mockService:  mockProductService{products: []service.ProductDto{toy}},
			expectedCode: http.StatusOK,
			expectedBody: "[" + toyJSON + "]",
		},
		{
			name:          "Success - numeric limit",
			mockService:   mockProductService{products: []service.ProductDto{toy}},
			query:         "?limit=2",
			expectedLimit: intPtr(2),
			expectedCode:  http.StatusOK,
			expectedBody:  "[" + toyJSON + "]",
		},
		{
			name:          "Success - fractional limit is truncated",
			mockService:   mockProductService{products: []service.ProductDto{}},
			query:         "?limit=2.9",
			expectedLimit: intPtr(2),
			expectedCode:  http.StatusOK,
			expectedBody:  "[]",
		},
		{
			name:          "Success - non-numeric limit is zero",
			mockService:   mockProductService{products: []service.ProductDto{}},
			query:         "?limit=abc",
			expectedLimit: intPtr(0),
			expectedCode:  http.StatusOK,
			expectedBody:  "[]",
		},
		{
			name:          "Success - negative limit",
			mockService:   mockProductService{products: []service.ProductDto{}},
			query:         "?limit=-1",
			expectedLimit: intPtr(-1),
			expectedCode:  http.StatusOK,
			expectedBody:  "[]",
		},
		{
			name:         "Success - empty limit is ignored",
			mockService:  mockProductService{products: []service.ProductDto{toy}},
			query:        "?limit=",
			expectedCode: http.StatusOK,
			expectedBody: "[" + toyJSON + "]",
		},
		{
			name:         "Error - corrupt storage",
			mockService:  mockProductService{error: fmt.Errorf("failed: %w", perrors.ErrCorruptStorage)},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"message":"Error al leer el archivo de productos"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, discardLogger())
			req := httptest.NewRequest(http.MethodGet, "/products"+tc.query, nil)
			rr := httptest.NewRecorder()

			// when
			api.FindAll(rr, req)

			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
			assert.Equal(t, tc.expectedLimit, tc.mockService.lastLimit)
		})
	}
}

func Test_CatalogAPI_ErrorTranslation(t *testing.T) {
	testCases := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody string
	}{
		{name: "invalid product", err: perrors.ErrInvalidProduct, expectedCode: http.StatusBadRequest, expectedBody: `{"message":"Todos los campos son obligatorios"}`},
		{name: "duplicate code", err: perrors.ErrDuplicateCode, expectedCode: http.StatusConflict, expectedBody: `{"message":"El código del producto ya existe"}`},
		{name: "not found", err: perrors.ErrProductNotFound, expectedCode: http.StatusNotFound, expectedBody: `{"message":"Producto no encontrado"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&mockProductService{}, discardLogger())
			rr := httptest.NewRecorder()

			// when
			api.respondServiceError(rr, fmt.Errorf("wrapped: %w", tc.err))

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}

func Test_CatalogAPI_Routes(t *testing.T) {
	// given
	mock := &mockProductService{product: &toy, products: []service.ProductDto{toy}}
	router := server.NewChiRouter(discardLogger())
	NewHandler(mock, discardLogger()).RegisterRoutes(router)
	ts := httptest.NewServer(router)
	defer ts.Close()

	testCases := []struct {
		path         string
		expectedCode int
	}{
		{path: "/products", expectedCode: http.StatusOK},
		{path: "/products/?limit=1", expectedCode: http.StatusOK},
		{path: "/products/1", expectedCode: http.StatusOK},
		{path: "/healthz", expectedCode: http.StatusOK},
		{path: "/unknown", expectedCode: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			// when
			resp, err := http.Get(ts.URL + tc.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			// then
			assert.Equal(t, tc.expectedCode, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
		})
	}

	// then
	resp, err := http.Get(ts.URL + "/products/42")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, 42, mock.lastID, "pid path value should reach the handler")
}
