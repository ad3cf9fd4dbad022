package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales_backend/internal/catalog"
	"sales_backend/internal/models"
	"sales_backend/internal/repositories"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeExecutor records the last call and returns canned results.
type fakeExecutor struct {
	table   string
	payload any
	column  string
	value   any
	query   models.PageQuery
	args    []any
	batches []models.TableBatch
	err     error
	result  models.OperationResult
}

func (f *fakeExecutor) Create(_ context.Context, table string, payload any) (models.Record, error) {
	f.table, f.payload = table, payload
	if f.err != nil {
		return nil, f.err
	}
	return models.Record{"cod_ven": 1}, nil
}

func (f *fakeExecutor) BulkCreate(_ context.Context, table string, payloads []any) models.OperationResult {
	f.table, f.payload = table, payloads
	return f.result
}

func (f *fakeExecutor) CreateMultipleAtomic(_ context.Context, batches []models.TableBatch) (models.OperationResult, error) {
	f.batches = batches
	return f.result, f.err
}

func (f *fakeExecutor) Read(_ context.Context, table, column string, value any) ([]models.Record, error) {
	f.table, f.column, f.value = table, column, value
	return []models.Record{}, f.err
}

func (f *fakeExecutor) ReadPaginated(_ context.Context, table string, q models.PageQuery) (*models.Page, error) {
	f.table, f.query = table, q
	if f.err != nil {
		return nil, f.err
	}
	return &models.Page{Data: []models.Record{}}, nil
}

func (f *fakeExecutor) Update(_ context.Context, table string, payload any, column string) models.OperationResult {
	f.table, f.payload, f.column = table, payload, column
	return f.result
}

func (f *fakeExecutor) UpdateMultipleAtomic(_ context.Context, updates []models.TableUpdate) models.OperationResult {
	return f.result
}

func (f *fakeExecutor) Delete(_ context.Context, table, column string, value any) models.OperationResult {
	f.table, f.column, f.value = table, column, value
	return f.result
}

func (f *fakeExecutor) UseFunction(_ context.Context, name string, args ...any) models.OperationResult {
	f.table, f.args = name, args
	return f.result
}

func newTestRouter(exec CrudExecutor) *gin.Engine {
	r := gin.New()
	sellers := NewResourceHandler(exec, NewResource[models.Seller]("seller", "cod_ven"))
	r.POST("/sellers", sellers.Create)
	r.GET("/sellers", sellers.List)
	r.POST("/sellers/bulk", sellers.Bulk)
	r.POST("/sellers/search", sellers.Search)
	r.PUT("/sellers", sellers.Update)
	r.DELETE("/sellers/:id", sellers.Delete)

	batch := NewBatchHandler(exec)
	r.POST("/batch/create", batch.Create)
	r.POST("/batch/update", batch.Update)

	fn := NewFunctionHandler(exec)
	r.GET("/functions", fn.List)
	r.POST("/functions/:name", fn.Call)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const validSeller = `{"nom_ven":"Ana","ape_ven":"Torres","sue_ven":1200.5,"fin_ven":"2024-01-15","tip_ven":"A"}`

func TestResourceHandler_Create(t *testing.T) {
	exec := &fakeExecutor{}
	r := newTestRouter(exec)

	w := do(r, http.MethodPost, "/sellers", validSeller)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "seller", exec.table)
	assert.Equal(t, models.Seller{FirstName: "Ana", LastName: "Torres", Salary: 1200.5, HiredOn: "2024-01-15", Kind: "A"}, exec.payload)

	w = do(r, http.MethodPost, "/sellers", `{"nom_ven":"Ana"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "binding tags are enforced")

	exec.err = fmt.Errorf("x: %w", catalog.ErrTableNotFound)
	w = do(r, http.MethodPost, "/sellers", validSeller)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResourceHandler_Bulk(t *testing.T) {
	exec := &fakeExecutor{result: models.Failure(http.StatusBadRequest, "dup", models.CodeDuplicateEntry)}
	r := newTestRouter(exec)

	w := do(r, http.MethodPost, "/sellers/bulk", "["+validSeller+","+validSeller+"]")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), models.CodeDuplicateEntry)
	assert.Len(t, exec.payload, 2)
}

func TestResourceHandler_List(t *testing.T) {
	exec := &fakeExecutor{}
	r := newTestRouter(exec)

	require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/sellers?column=nom_ven&value=Ana", "").Code)
	assert.Equal(t, "nom_ven", exec.column)
	assert.Equal(t, "Ana", exec.value)

	require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/sellers?column=nom_ven", "").Code)
	assert.Empty(t, exec.column)
	assert.Nil(t, exec.value)
}

func TestResourceHandler_Search(t *testing.T) {
	exec := &fakeExecutor{}
	r := newTestRouter(exec)

	w := do(r, http.MethodPost, "/sellers/search", `{"filters":{"nom_ven":"an","cod_ven":3},"limit":5}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, exec.query.Page, "page defaults to 1")
	assert.Equal(t, 5, exec.query.Limit)
	assert.Equal(t, json.Number("3"), exec.query.Filters["cod_ven"])

	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/sellers/search", "").Code)
	assert.Equal(t, 20, exec.query.Limit)

	exec.err = repositories.ErrInvalidOperator
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/sellers/search", `{"operator":"xor"}`).Code)
}

func TestResourceHandler_UpdateAndDelete(t *testing.T) {
	n := int64(1)
	ok := models.Success(nil, "Update successful")
	ok.RowsAffected = &n
	exec := &fakeExecutor{result: ok}
	r := newTestRouter(exec)

	w := do(r, http.MethodPut, "/sellers", `{"cod_ven":1,"nom_ven":"Eva"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cod_ven", exec.column)
	assert.Contains(t, w.Body.String(), `"rows_affected":1`)

	w = do(r, http.MethodDelete, "/sellers/7", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), exec.value)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodDelete, "/sellers/abc", "").Code)

	exec.result = models.Failure(http.StatusNotFound, "missing", models.CodeRecordNotFound)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/sellers/8", "").Code)
}

func TestBatchHandler(t *testing.T) {
	exec := &fakeExecutor{result: models.Success(nil, "ok")}
	r := newTestRouter(exec)

	w := do(r, http.MethodPost, "/batch/create", `[{"table":"seller","rows":[{"nom_ven":"Ana"}]},{"table":"product","rows":[]}]`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, exec.batches, 2)
	assert.Equal(t, "seller", exec.batches[0].Table, "batch order is preserved")

	exec.err = fmt.Errorf("table %q: %w", "seller", repositories.ErrValidation)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/batch/create", `[{"table":"seller"}]`).Code)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/batch/update", `{"not":"a list"}`).Code)
}

func TestFunctionHandler(t *testing.T) {
	exec := &fakeExecutor{result: models.Success([]any{21.0}, "")}
	r := newTestRouter(exec)

	w := do(r, http.MethodPost, "/functions/sum", `{"args":[{"table":"product","column":"pre_pro"},2,"x"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sum", exec.table)
	assert.Equal(t, []any{repositories.ColumnArg{Table: "product", Column: "pre_pro"}, int64(2), "x"}, exec.args)

	w = do(r, http.MethodGet, "/functions", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "coalesce")
}
