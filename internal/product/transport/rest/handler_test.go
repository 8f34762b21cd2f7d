package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abgdnv/productcatalog/internal/product/service"
	"github.com/abgdnv/productcatalog/internal/product/store"
	"github.com/abgdnv/productcatalog/pkg/metrics"
	"github.com/abgdnv/productcatalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// mockProductService is a mock implementation of the ProductService interface
// that fails every call with the configured error.
type mockProductService struct {
	error error
}

func (m mockProductService) FindByID(context.Context, int64) (*service.ProductDto, error) {
	return nil, m.error
}

func (m mockProductService) FindAll(context.Context, service.ListQuery) (*service.ProductPage, error) {
	return nil, m.error
}

func (m mockProductService) Create(context.Context, service.ProductPayload) (*service.ProductDto, error) {
	return nil, m.error
}

func (m mockProductService) Update(context.Context, int64, service.ProductPayload) (*service.ProductDto, error) {
	return nil, m.error
}

func (m mockProductService) DeleteByID(context.Context, int64) (*service.ProductDto, error) {
	return nil, m.error
}

func (m mockProductService) Search(context.Context, string) ([]service.ProductDto, error) {
	return nil, m.error
}

func (m mockProductService) Stats(context.Context) (map[string]int, error) {
	return nil, m.error
}

func newRouter(svc service.ProductService, m *metrics.Metrics) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(web.Recoverer(discard))
	NewHandler(svc, discard, m).RegisterRoutes(mux)
	return mux
}

func seededRouter() *chi.Mux {
	return newRouter(service.NewService(store.NewInMemoryStore(store.SeedProducts()...)), nil)
}

func do(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

const (
	samsung = `{"id":1,"name":"Samsung","description":"Smartphone","price":50000,"category":"Nangos","inStock":true}`
	genZee  = `{"id":2,"name":"Gen Zee Chronicles","description":"Literature","price":5000,"category":"Kioo Cha Jamii","inStock":true}`
	ndula   = `{"id":3,"name":"Ndula","description":"Simbaland","price":1000,"category":"Footwear","inStock":false}`
	kanga   = `{"name":"Kanga","description":"Printed cloth","price":1500.5,"category":"Apparel","inStock":true}`
)

func Test_Handler_Greeting(t *testing.T) {
	// when
	rr := do(seededRouter(), http.MethodGet, "/", "")
	// then
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Hello World", rr.Body.String())
}

func Test_Handler_FindAll(t *testing.T) {
	testCases := []struct {
		name         string
		target       string
		expectedBody string
	}{
		{
			name:         "Success - all products",
			target:       "/api/products",
			expectedBody: `{"page":1,"limit":3,"total":3,"data":[` + samsung + `,` + genZee + `,` + ndula + `]}`,
		},
		{
			name:         "Success - category filter",
			target:       "/api/products?category=footwear",
			expectedBody: `{"page":1,"limit":1,"total":1,"data":[` + ndula + `]}`,
		},
		{
			name:         "Success - first page",
			target:       "/api/products?page=1&limit=2",
			expectedBody: `{"page":1,"limit":2,"total":3,"data":[` + samsung + `,` + genZee + `]}`,
		},
		{
			name:         "Success - second page",
			target:       "/api/products?page=2&limit=2",
			expectedBody: `{"page":2,"limit":2,"total":3,"data":[` + ndula + `]}`,
		},
		{
			name:         "Success - malformed numbers fall back to defaults",
			target:       "/api/products?page=abc&limit=",
			expectedBody: `{"page":1,"limit":3,"total":3,"data":[` + samsung + `,` + genZee + `,` + ndula + `]}`,
		},
		{
			name:         "Success - unknown category",
			target:       "/api/products?category=Toys",
			expectedBody: `{"page":1,"limit":0,"total":0,"data":[]}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			rr := do(seededRouter(), http.MethodGet, tc.target, "")
			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, http.StatusOK, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_Handler_FindByID(t *testing.T) {
	testCases := []struct {
		name         string
		productID    string
		expectedCode int
		expectedBody string
	}{
		{name: "Success - product found", productID: "2", expectedCode: http.StatusOK, expectedBody: genZee},
		{name: "Error - product not found", productID: "999", expectedCode: http.StatusNotFound, expectedBody: "Product not found"},
		{name: "Error - non-numeric id", productID: "abc", expectedCode: http.StatusNotFound, expectedBody: "Product not found"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			rr := do(seededRouter(), http.MethodGet, "/api/products/"+tc.productID, "")
			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			if tc.expectedCode == http.StatusOK {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String())
				return
			}
			assert.Equal(t, tc.expectedBody, rr.Body.String())
			assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
		})
	}
}

func Test_Handler_Create(t *testing.T) {
	testCases := []struct {
		name         string
		requestBody  string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product created",
			requestBody:  kanga,
			expectedCode: http.StatusCreated,
			expectedBody: `{"id":4,"name":"Kanga","description":"Printed cloth","price":1500.5,"category":"Apparel","inStock":true}`,
		},
		{
			name:         "Success - extra fields are ignored",
			requestBody:  `{"id":77,"name":"A","description":"","price":0,"category":"B","inStock":false,"color":"red"}`,
			expectedCode: http.StatusCreated,
			expectedBody: `{"id":4,"name":"A","description":"","price":0,"category":"B","inStock":false}`,
		},
		{
			name:         "Error - missing field",
			requestBody:  `{"name":"A","description":"d","price":1,"category":"B"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid product data format"}`,
		},
		{
			name:         "Error - price is a string",
			requestBody:  `{"name":"A","description":"d","price":"1","category":"B","inStock":true}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid product data format"}`,
		},
		{
			name:         "Error - inStock is null",
			requestBody:  `{"name":"A","description":"d","price":1,"category":"B","inStock":null}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid product data format"}`,
		},
		{
			name:         "Error - keys differ in case",
			requestBody:  `{"NAME":"A","Description":"d","PRICE":1,"Category":"c","INSTOCK":true}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid product data format"}`,
		},
		{
			name:         "Error - one key differs in case",
			requestBody:  `{"name":"A","description":"d","price":1,"category":"c","instock":true}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid product data format"}`,
		},
		{
			name:         "Error - trailing garbage",
			requestBody:  `{"name":"A","description":"d","price":1,"category":"c","inStock":true} garbage`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid product data format"}`,
		},
		{
			name:         "Error - two JSON values",
			requestBody:  `{"name":"A","description":"d","price":1,"category":"c","inStock":true}{}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid product data format"}`,
		},
		{
			name:         "Success - trailing whitespace",
			requestBody:  kanga + "\n  ",
			expectedCode: http.StatusCreated,
			expectedBody: `{"id":4,"name":"Kanga","description":"Printed cloth","price":1500.5,"category":"Apparel","inStock":true}`,
		},
		{
			name:         "Error - malformed JSON",
			requestBody:  `{"name":`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid product data format"}`,
		},
		{
			name:         "Error - empty body",
			requestBody:  "",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid product data format"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mux := seededRouter()
			// when
			rr := do(mux, http.MethodPost, "/api/products", tc.requestBody)
			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
			if tc.expectedCode != http.StatusCreated {
				list := do(mux, http.MethodGet, "/api/products", "")
				assert.Contains(t, list.Body.String(), `"total":3`, "store must be unchanged")
			}
		})
	}
}

func Test_Handler_Update(t *testing.T) {
	testCases := []struct {
		name         string
		productID    string
		requestBody  string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product updated",
			productID:    "1",
			requestBody:  kanga,
			expectedCode: http.StatusOK,
			expectedBody: `{"id":1,"name":"Kanga","description":"Printed cloth","price":1500.5,"category":"Apparel","inStock":true}`,
		},
		{
			name:         "Error - product not found",
			productID:    "999",
			requestBody:  kanga,
			expectedCode: http.StatusNotFound,
			expectedBody: "Product not found",
		},
		{
			name:         "Error - validation wins over unknown id",
			productID:    "999",
			requestBody:  `{"name":"A"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid product data format"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			rr := do(seededRouter(), http.MethodPut, "/api/products/"+tc.productID, tc.requestBody)
			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			if tc.expectedCode == http.StatusNotFound {
				assert.Equal(t, tc.expectedBody, rr.Body.String())
				return
			}
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}

func Test_Handler_DeleteByID(t *testing.T) {
	// given
	mux := seededRouter()
	// when
	rr := do(mux, http.MethodDelete, "/api/products/3", "")
	again := do(mux, http.MethodDelete, "/api/products/3", "")
	get := do(mux, http.MethodGet, "/api/products/3", "")
	// then
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, ndula, rr.Body.String())
	assert.Equal(t, http.StatusNotFound, again.Code)
	assert.Equal(t, "Product not found", again.Body.String())
	assert.Equal(t, http.StatusNotFound, get.Code)
}

func Test_Handler_Search(t *testing.T) {
	testCases := []struct {
		name         string
		target       string
		expectedBody string
	}{
		{name: "Success - match", target: "/api/products/search?name=gen", expectedBody: `[` + genZee + `]`},
		{name: "Success - no term", target: "/api/products/search", expectedBody: `[` + samsung + `,` + genZee + `,` + ndula + `]`},
		{name: "Success - no match", target: "/api/products/search?name=zzz", expectedBody: `[]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			rr := do(seededRouter(), http.MethodGet, tc.target, "")
			// then
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}

func Test_Handler_Stats(t *testing.T) {
	// when
	rr := do(seededRouter(), http.MethodGet, "/api/products/stats", "")
	// then
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"Nangos":1,"Kioo Cha Jamii":1,"Footwear":1}`, rr.Body.String())
}

func Test_Handler_RouteNotFound(t *testing.T) {
	testCases := []struct {
		method string
		target string
	}{
		{method: http.MethodGet, target: "/nope"},
		{method: http.MethodGet, target: "/api/products/1/extra"},
		{method: http.MethodPatch, target: "/api/products/1"},
		{method: http.MethodDelete, target: "/api/products"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			// when
			rr := do(seededRouter(), tc.method, tc.target, "")
			// then
			assert.Equal(t, http.StatusNotFound, rr.Code)
			assert.JSONEq(t, `{"error":"Route not found"}`, rr.Body.String())
		})
	}
}

func Test_Handler_InternalError(t *testing.T) {
	const envelope = `{"error":{"name":"Error","message":"Something went wrong","statusCode":500}}`
	testCases := []struct {
		method string
		target string
		body   string
	}{
		{method: http.MethodGet, target: "/api/products"},
		{method: http.MethodGet, target: "/api/products/1"},
		{method: http.MethodPost, target: "/api/products", body: kanga},
		{method: http.MethodPut, target: "/api/products/1", body: kanga},
		{method: http.MethodDelete, target: "/api/products/1"},
		{method: http.MethodGet, target: "/api/products/search?name=a"},
		{method: http.MethodGet, target: "/api/products/stats"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			// given
			mux := newRouter(mockProductService{error: errors.New("service unavailable")}, nil)
			// when
			rr := do(mux, tc.method, tc.target, tc.body)
			// then
			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			assert.JSONEq(t, envelope, rr.Body.String())
		})
	}
}

func Test_Handler_RecordsMutations(t *testing.T) {
	// given
	m := metrics.New("handler_test")
	mux := newRouter(service.NewService(store.NewInMemoryStore(store.SeedProducts()...)), m)
	// when
	require.Equal(t, http.StatusCreated, do(mux, http.MethodPost, "/api/products", kanga).Code)
	require.Equal(t, http.StatusOK, do(mux, http.MethodPut, "/api/products/4", kanga).Code)
	require.Equal(t, http.StatusOK, do(mux, http.MethodDelete, "/api/products/4", "").Code)
	require.Equal(t, http.StatusNotFound, do(mux, http.MethodDelete, "/api/products/4", "").Code)
	// then
	body := do(m.Handler(), http.MethodGet, metrics.Path, "").Body.String()
	for _, op := range []string{"create", "update", "delete"} {
		assert.Contains(t, body, `handler_test_products_mutations_total{operation="`+op+`"} 1`)
	}
	count, err := testutil.GatherAndCount(m.Registry(), "handler_test_products_mutations_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func Test_Handler_HealthCheck(t *testing.T) {
	// given
	h := NewHandler(nil, discard, nil) // No service needed for health check
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()

	// when
	h.HealthCheck(rr, req)

	// then
	assert.Equal(t, http.StatusOK, rr.Code, "status code should be 200 OK")
	assert.Empty(t, rr.Body.String(), "response body should be empty")
}
