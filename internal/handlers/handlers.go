package handlers

import (
	"context"

	"github.com/gin-gonic/gin/binding"

	"sales_backend/internal/models"
	"sales_backend/internal/repositories"
)

func init() {
	// Keep JSON numbers exact until the codec converts them.
	binding.EnableDecoderUseNumber = true
}

// CrudExecutor is the query executor surface the HTTP layer drives.
// *repositories.CrudRepository implements it.
type CrudExecutor interface {
	Create(ctx context.Context, table string, payload any) (models.Record, error)
	BulkCreate(ctx context.Context, table string, payloads []any) models.OperationResult
	CreateMultipleAtomic(ctx context.Context, batches []models.TableBatch) (models.OperationResult, error)
	Read(ctx context.Context, table, filterColumn string, filterValue any) ([]models.Record, error)
	ReadPaginated(ctx context.Context, table string, q models.PageQuery) (*models.Page, error)
	Update(ctx context.Context, table string, payload any, filterColumn string) models.OperationResult
	UpdateMultipleAtomic(ctx context.Context, updates []models.TableUpdate) models.OperationResult
	Delete(ctx context.Context, table, filterColumn string, filterValue any) models.OperationResult
	UseFunction(ctx context.Context, name string, args ...any) models.OperationResult
}

var _ CrudExecutor = (*repositories.CrudRepository)(nil)
