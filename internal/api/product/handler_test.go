package product_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"brasero/internal/api/product"
	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/logger"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, filter domain.ProductFilter) (domain.ProductPage, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(domain.ProductPage), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, id string, includeUnavailable bool) (domain.Product, error) {
	args := m.Called(ctx, id, includeUnavailable)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id string, in domain.ProductInput) (domain.Product, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestList_Success_ParsesFilter(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewLogger("error"))

	expected := domain.ProductFilter{
		Query:    "pollo",
		Category: domain.Category("Pollos"),
		MinPrice: 1000,
		MaxPrice: 20000,
		Page:     2,
		Limit:    5,
	}
	svc.On("List", mock.Anything, expected).
		Return(domain.ProductPage{Items: []domain.Product{{ID: "p1", Name: "Pollo entero"}}, Page: 2, Limit: 5, Total: 6, TotalPages: 2}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/productos?q=pollo&categoria=Pollos&min=1000&max=20000&page=2&limit=5", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var page domain.ProductPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 1)
	svc.AssertExpectations(t)
}

func TestList_Fail_NonIntegerPage(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewLogger("error"))

	req := httptest.NewRequest(http.MethodGet, "/api/productos?page=dos", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Message, "'page'")
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestAdminList_Success_IncludesUnavailable(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewLogger("error"))

	svc.On("List", mock.Anything, mock.MatchedBy(func(f domain.ProductFilter) bool {
		return f.IncludeUnavailable
	})).Return(domain.ProductPage{Items: []domain.Product{}}, nil)

	rec := httptest.NewRecorder()
	h.AdminList(rec, httptest.NewRequest(http.MethodGet, "/api/admin/productos", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestGet_Fail_HiddenProductIsNotFound(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewLogger("error"))

	svc.On("Get", mock.Anything, "p9", false).Return(domain.Product{}, apperror.NewNotFoundError("produto não encontrado."))

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/productos/p9", nil), "id", "p9")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertExpectations(t)
}

func TestCreate_Success(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewLogger("error"))

	svc.On("Create", mock.Anything, mock.MatchedBy(func(in domain.ProductInput) bool {
		return in.Name == "Combo familiar" && in.Price == 24990
	})).Return(domain.Product{ID: "p2", Name: "Combo familiar", Price: 24990, Available: true}, nil)

	body := `{"name":"Combo familiar","description":"Pollo, papas y bebida","price":24990,"category":"Combos"}`
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/admin/productos", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	var p domain.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "p2", p.ID)
}

func TestCreate_Fail_MalformedJSON(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewLogger("error"))

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/admin/productos", strings.NewReader(`{"name":`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDelete_Success_NoContent(t *testing.T) {
	svc := new(MockProductService)
	h := product.NewHandler(svc, logger.NewLogger("error"))

	svc.On("Delete", mock.Anything, "p1").Return(nil)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/admin/productos/p1", nil), "id", "p1")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
