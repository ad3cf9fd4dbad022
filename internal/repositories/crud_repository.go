package repositories

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"sales_backend/internal/catalog"
	"sales_backend/internal/codec"
	"sales_backend/internal/database"
	"sales_backend/internal/logger"
	"sales_backend/internal/metrics"
	"sales_backend/internal/models"
)

// Resolver maps table names to catalog definitions. *catalog.Catalog
// implements it.
type Resolver interface {
	Resolve(ctx context.Context, name string) (*models.TableDefinition, error)
}

// CrudRepository executes generic CRUD statements against any table known
// to the catalog. Every call runs in its own transaction.
type CrudRepository struct {
	tx      *database.TxManager
	catalog Resolver
}

func NewCrudRepository(tx *database.TxManager, catalog Resolver) *CrudRepository {
	return &CrudRepository{tx: tx, catalog: catalog}
}

// Create inserts one row and returns it as stored, generated columns included.
func (r *CrudRepository) Create(ctx context.Context, tableName string, payload any) (rec models.Record, err error) {
	start := time.Now()
	defer func() { r.finish(ctx, "create", tableName, start, err) }()

	table, err := r.catalog.Resolve(ctx, tableName)
	if err != nil {
		return nil, err
	}
	values, err := codec.Normalize(payload)
	if err != nil {
		return nil, err
	}

	err = r.tx.WithTx(ctx, func(tx pgx.Tx) error {
		rows, err := insertRows(ctx, tx, table, []models.Record{values}, returningAll)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			rec = rows[0]
		} else {
			rec = values
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create record in %q: %w", tableName, err)
	}
	return rec, nil
}

// BulkCreate inserts every payload in one statement and one transaction.
// Nothing is persisted unless every row is.
func (r *CrudRepository) BulkCreate(ctx context.Context, tableName string, payloads []any) (res models.OperationResult) {
	start := time.Now()
	defer func() { r.report(ctx, "bulk_create", tableName, start, res) }()

	table, err := r.catalog.Resolve(ctx, tableName)
	if err != nil {
		return translateWriteError("Bulk create failed", err)
	}
	if len(payloads) == 0 {
		return models.Failure(http.StatusBadRequest, "Bulk create failed: no records given", "")
	}
	values, err := codec.NormalizeAll(payloads)
	if err != nil {
		return translateWriteError("Bulk create failed", err)
	}

	var created []models.Record
	err = r.tx.WithTx(ctx, func(tx pgx.Tx) error {
		created, err = insertRows(ctx, tx, table, values, returningAll)
		return err
	})
	if err != nil {
		return translateWriteError("Bulk create failed", err)
	}
	return models.Success(created, fmt.Sprintf("Created %d records successfully", len(values)))
}

// AtomicCreateResult is the payload of a successful CreateMultipleAtomic.
type AtomicCreateResult struct {
	Tables map[string][]models.Record `json:"tables"`
	Total  int                        `json:"total"`
}

// CreateMultipleAtomic inserts the batches in order inside one transaction.
// Each created record is the normalized payload plus its assigned primary
// key. Any failure rolls everything back and is returned as-is.
func (r *CrudRepository) CreateMultipleAtomic(ctx context.Context, batches []models.TableBatch) (res models.OperationResult, err error) {
	start := time.Now()
	defer func() { r.finish(ctx, "create_multiple_atomic", batchTables(batches), start, err) }()

	out := AtomicCreateResult{Tables: make(map[string][]models.Record)}
	err = r.tx.WithTx(ctx, func(tx pgx.Tx) error {
		out.Tables = make(map[string][]models.Record)
		out.Total = 0
		for _, batch := range batches {
			table, err := r.catalog.Resolve(ctx, batch.Table)
			if err != nil {
				return err
			}
			if len(batch.Rows) == 0 {
				continue
			}
			values, err := codec.NormalizeAll(batch.Rows)
			if err != nil {
				return fmt.Errorf("table %q: %w", batch.Table, err)
			}

			pk, hasPK := table.PrimaryKey()
			returning := ""
			if hasPK {
				returning = pk
			}
			inserted, err := insertRows(ctx, tx, table, values, returning)
			if err != nil {
				return fmt.Errorf("table %q: %w", batch.Table, err)
			}

			records := make([]models.Record, len(values))
			for i, v := range values {
				rec := v.Clone()
				if hasPK && i < len(inserted) {
					if id, ok := inserted[i][pk]; ok && id != nil {
						rec[pk] = id
					}
				}
				records[i] = rec
			}
			out.Tables[batch.Table] = append(out.Tables[batch.Table], records...)
			out.Total += len(records)
		}
		return nil
	})
	if err != nil {
		return models.OperationResult{}, err
	}
	msg := fmt.Sprintf("Created %d records successfully across %d tables", out.Total, len(out.Tables))
	return models.Success(out, msg), nil
}

// Read returns every row of the table, or the rows whose filterColumn equals
// filterValue when both are given.
func (r *CrudRepository) Read(ctx context.Context, tableName, filterColumn string, filterValue any) (rows []models.Record, err error) {
	start := time.Now()
	defer func() { r.finish(ctx, "read", tableName, start, err) }()

	table, err := r.catalog.Resolve(ctx, tableName)
	if err != nil {
		return nil, err
	}
	sql, args, err := buildSelectEqual(table, filterColumn, filterValue)
	if err != nil {
		return nil, err
	}

	err = r.tx.WithTx(ctx, func(tx pgx.Tx) error {
		rows, err = queryRecords(ctx, tx, sql, args...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", tableName, err)
	}
	return rows, nil
}

// ReadPaginated counts and fetches one ordered page of filtered rows.
func (r *CrudRepository) ReadPaginated(ctx context.Context, tableName string, q models.PageQuery) (page *models.Page, err error) {
	start := time.Now()
	defer func() { r.finish(ctx, "read_paginated", tableName, start, err) }()

	operator := strings.ToLower(strings.TrimSpace(q.Operator))
	if operator == "" {
		operator = "and"
	}
	if operator != "and" && operator != "or" {
		return nil, fmt.Errorf("%w: %q, expected 'and' or 'or'", ErrInvalidOperator, q.Operator)
	}
	if q.Page < 1 {
		return nil, validationf("page must be at least 1, got %d", q.Page)
	}
	if q.Limit < 0 {
		return nil, validationf("limit must not be negative, got %d", q.Limit)
	}
	if q.Limit > 0 && q.Page-1 > math.MaxInt/q.Limit {
		return nil, validationf("page %d is out of range for limit %d", q.Page, q.Limit)
	}

	table, err := r.catalog.Resolve(ctx, tableName)
	if err != nil {
		return nil, err
	}

	orderBy := q.OrderBy
	if orderBy == "" {
		orderBy = defaultOrderColumn(table)
	}
	if !table.HasColumn(orderBy) {
		return nil, invalidColumn(table.Name, orderBy)
	}

	filters, err := codec.Normalize(models.Record(q.Filters))
	if err != nil {
		return nil, err
	}
	args := &argList{}
	pred, err := buildFilters(table, filters, operator, args)
	if err != nil {
		return nil, err
	}
	countSQL := buildCount(table, pred)
	countArgs := append([]any(nil), args.values...)
	desc := strings.EqualFold(q.OrderDirection, "desc")
	dataSQL := buildPageSelect(table, pred, args, orderBy, desc, q.Limit, (q.Page-1)*q.Limit)

	page = &models.Page{Data: []models.Record{}}
	err = r.tx.WithTx(ctx, func(tx pgx.Tx) error {
		countRows, err := tx.Query(ctx, countSQL, countArgs...)
		if err != nil {
			return err
		}
		total, err := pgx.CollectExactlyOneRow(countRows, pgx.RowTo[int64])
		if err != nil {
			return err
		}
		data, err := queryRecords(ctx, tx, dataSQL, args.values...)
		if err != nil {
			return err
		}
		page.Metadata = models.PageMetadata{
			TotalRecords: total,
			CurrentPage:  q.Page,
			Limit:        q.Limit,
			TotalPages:   models.TotalPages(total, q.Limit),
		}
		if data != nil {
			page.Data = data
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read page of %q: %w", tableName, err)
	}
	return page, nil
}

// Update writes payload to the rows whose filterColumn equals the value the
// payload carries for filterColumn. Changing the identifying value in the
// same call therefore targets the row that already has the new value.
func (r *CrudRepository) Update(ctx context.Context, tableName string, payload any, filterColumn string) (res models.OperationResult) {
	start := time.Now()
	defer func() { r.report(ctx, "update", tableName, start, res) }()

	values, err := codec.Normalize(payload)
	if err != nil {
		return translateUpdateError(err)
	}
	if _, ok := values[filterColumn]; !ok {
		msg := fmt.Sprintf("Field '%s' is not present in the payload", filterColumn)
		return models.Failure(http.StatusBadRequest, msg, "")
	}
	table, err := r.catalog.Resolve(ctx, tableName)
	if err != nil {
		return translateUpdateError(err)
	}
	sql, args, err := buildUpdate(table, values, filterColumn)
	if err != nil {
		return translateUpdateError(err)
	}

	var affected int64
	err = r.tx.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return translateUpdateError(err)
	}
	if affected == 0 {
		return models.Failure(http.StatusNotFound, "No record found to update", models.CodeRecordNotFound)
	}
	res = models.Success(nil, "Update successful")
	res.RowsAffected = &affected
	return res
}

// UpdateMultipleAtomic applies every update of every table in one
// transaction. Each item must carry the filter column and match at least
// one row, otherwise nothing is written.
func (r *CrudRepository) UpdateMultipleAtomic(ctx context.Context, updates []models.TableUpdate) (res models.OperationResult) {
	start := time.Now()
	defer func() { r.report(ctx, "update_multiple_atomic", updateTables(updates), start, res) }()

	for _, u := range updates {
		if u.FilterColumn == "" || len(u.Data) == 0 {
			return models.Failure(http.StatusBadRequest,
				"Update failed: "+validationf("invalid configuration for table %q", u.Table).Error(), "")
		}
	}

	results := make(map[string][]models.Record)
	total := 0
	err := r.tx.WithTx(ctx, func(tx pgx.Tx) error {
		clear(results)
		total = 0
		for _, u := range updates {
			table, err := r.catalog.Resolve(ctx, u.Table)
			if err != nil {
				return err
			}
			for i, item := range u.Data {
				values, err := codec.Normalize(item)
				if err != nil {
					return fmt.Errorf("table %q item %d: %w", u.Table, i, err)
				}
				filterValue, ok := values[u.FilterColumn]
				if !ok {
					return validationf("field %q is not present in the data for table %q", u.FilterColumn, u.Table)
				}
				sql, args, err := buildUpdate(table, values, u.FilterColumn)
				if err != nil {
					return err
				}
				tag, err := tx.Exec(ctx, sql, args...)
				if err != nil {
					return err
				}
				if tag.RowsAffected() == 0 {
					return validationf("no record with %s=%v in table %q", u.FilterColumn, filterValue, u.Table)
				}
				results[u.Table] = append(results[u.Table], values)
				total++
			}
		}
		return nil
	})
	if err != nil {
		if isCallerError(err) || IsIntegrityViolation(err) {
			return models.Failure(callerStatus(err), "Update failed: "+errorMessage(err), "")
		}
		return models.Failure(http.StatusInternalServerError, "Unexpected error updating multiple records: "+errorMessage(err), "")
	}
	return models.Success(results, fmt.Sprintf("Updated %d records successfully across %d tables", total, len(results)))
}

// Delete removes the rows whose filterColumn equals filterValue after
// checking that at least one exists.
func (r *CrudRepository) Delete(ctx context.Context, tableName, filterColumn string, filterValue any) (res models.OperationResult) {
	start := time.Now()
	defer func() { r.report(ctx, "delete", tableName, start, res) }()

	table, err := r.catalog.Resolve(ctx, tableName)
	if err != nil {
		return translateDeleteError(err)
	}
	existsSQL, existsArgs, err := buildExists(table, filterColumn, filterValue)
	if err != nil {
		return translateDeleteError(err)
	}
	deleteSQL, deleteArgs, err := buildDelete(table, filterColumn, filterValue)
	if err != nil {
		return translateDeleteError(err)
	}

	var affected int64
	err = r.tx.WithTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, existsSQL, existsArgs...)
		if err != nil {
			return err
		}
		found, err := pgx.CollectRows(rows, pgx.RowTo[int32])
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return errRecordNotFound
		}
		tag, err := tx.Exec(ctx, deleteSQL, deleteArgs...)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if errors.Is(err, errRecordNotFound) {
		msg := fmt.Sprintf("No record found with %s=%v", filterColumn, filterValue)
		return models.Failure(http.StatusNotFound, msg, models.CodeRecordNotFound)
	}
	if err != nil {
		return translateDeleteError(err)
	}
	res = models.Success(nil, fmt.Sprintf("Record deleted successfully. Rows affected: %d", affected))
	res.RowsAffected = &affected
	return res
}

// UseFunction evaluates an allow-listed SQL function. Arguments are bound
// literals or ColumnArg references. Data is the list of result values.
func (r *CrudRepository) UseFunction(ctx context.Context, name string, args ...any) (res models.OperationResult) {
	start := time.Now()
	defer func() { r.report(ctx, "use_function", name, start, res) }()

	sql, binds, err := r.buildFunctionCall(ctx, name, args)
	if err != nil {
		if errors.Is(err, ErrUnknownFunction) {
			return models.Failure(http.StatusBadRequest, fmt.Sprintf("Function '%s' is not allowed", name), "")
		}
		if isCallerError(err) {
			return models.Failure(callerStatus(err), fmt.Sprintf("Invalid call to '%s': %s", name, err), "")
		}
		return models.Failure(http.StatusInternalServerError, fmt.Sprintf("Error executing function '%s': %s", name, err), "")
	}

	values := []any{}
	err = r.tx.WithTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, sql, binds...)
		if err != nil {
			return err
		}
		scalars, err := pgx.CollectRows(rows, pgx.RowTo[any])
		if err != nil {
			return err
		}
		for _, v := range scalars {
			values = append(values, decodeValue(v))
		}
		return nil
	})
	if err != nil {
		return models.Failure(http.StatusInternalServerError, fmt.Sprintf("Error executing function '%s': %s", name, errorMessage(err)), "")
	}
	return models.Success(values, "")
}

// CreateLinked inserts a parent row and its children in one transaction.
// The parent's referenced key is copied into each child through the
// foreign key the child table declares towards the parent table.
func (r *CrudRepository) CreateLinked(ctx context.Context, parentTable string, parent any, childTable string, children []any) (created models.Record, lines []models.Record, err error) {
	start := time.Now()
	defer func() { r.finish(ctx, "create_linked", parentTable+","+childTable, start, err) }()

	ptable, err := r.catalog.Resolve(ctx, parentTable)
	if err != nil {
		return nil, nil, err
	}
	ctable, err := r.catalog.Resolve(ctx, childTable)
	if err != nil {
		return nil, nil, err
	}
	fk, ok := ctable.ForeignKeyTo(ptable.Name)
	if !ok {
		return nil, nil, validationf("table %q has no foreign key to %q", ctable.Name, ptable.Name)
	}
	header, err := codec.Normalize(parent)
	if err != nil {
		return nil, nil, err
	}
	items, err := codec.NormalizeAll(children)
	if err != nil {
		return nil, nil, err
	}

	err = r.tx.WithTx(ctx, func(tx pgx.Tx) error {
		rows, err := insertRows(ctx, tx, ptable, []models.Record{header}, returningAll)
		if err != nil {
			return fmt.Errorf("table %q: %w", ptable.Name, err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("table %q: insert returned no row", ptable.Name)
		}
		created = rows[0]
		key, ok := created[fk.ToColumn]
		if !ok || key == nil {
			return validationf("parent row has no value for %q", fk.ToColumn)
		}
		if len(items) == 0 {
			lines = []models.Record{}
			return nil
		}
		for _, item := range items {
			item[fk.FromColumn] = key
		}
		lines, err = insertRows(ctx, tx, ctable, items, returningAll)
		if err != nil {
			return fmt.Errorf("table %q: %w", ctable.Name, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return created, lines, nil
}

func insertRows(ctx context.Context, tx pgx.Tx, table *models.TableDefinition, rows []models.Record, returning string) ([]models.Record, error) {
	sql, args, err := buildInsert(table, rows, returning)
	if err != nil {
		return nil, err
	}
	if returning == "" {
		_, err := tx.Exec(ctx, sql, args...)
		return nil, err
	}
	return queryRecords(ctx, tx, sql, args...)
}

func queryRecords(ctx context.Context, tx pgx.Tx, sql string, args ...any) ([]models.Record, error) {
	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}
	out := make([]models.Record, len(maps))
	for i, m := range maps {
		rec := make(models.Record, len(m))
		for k, v := range m {
			rec[k] = decodeValue(v)
		}
		out[i] = rec
	}
	return out, nil
}

// decodeValue turns pgx wire types into JSON friendly scalars.
func decodeValue(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		if f, err := x.Float64Value(); err == nil && f.Valid {
			return f.Float64
		}
		return x
	case [16]byte:
		return uuid.UUID(x).String()
	}
	return v
}

func defaultOrderColumn(table *models.TableDefinition) string {
	if pk, ok := table.PrimaryKey(); ok {
		return pk
	}
	if len(table.Columns) > 0 {
		return table.Columns[0].Name
	}
	return ""
}

func isCallerError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidColumn) ||
		errors.Is(err, ErrInvalidOperator) ||
		errors.Is(err, codec.ErrInvalidPayload) ||
		errors.Is(err, catalog.ErrTableNotFound)
}

// callerStatus is 404 for an unknown table and 400 for every other caller
// mistake, matching responses.Classify.
func callerStatus(err error) int {
	if errors.Is(err, catalog.ErrTableNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func errorMessage(err error) string {
	if _, ok := pgError(err); ok {
		return engineMessage(err)
	}
	return err.Error()
}

func translateWriteError(prefix string, err error) models.OperationResult {
	if column, value, ok := DuplicateEntry(err); ok {
		msg := fmt.Sprintf("A record with value '%s' already exists for column '%s'", value, column)
		return models.Failure(http.StatusBadRequest, msg, models.CodeDuplicateEntry)
	}
	if IsIntegrityViolation(err) {
		return models.Failure(http.StatusBadRequest, "Database integrity error: "+engineMessage(err), models.CodeIntegrityError)
	}
	if isCallerError(err) {
		return models.Failure(callerStatus(err), prefix+": "+err.Error(), "")
	}
	return models.Failure(http.StatusInternalServerError, prefix+": "+errorMessage(err), "")
}

func translateUpdateError(err error) models.OperationResult {
	if isCallerError(err) {
		return models.Failure(callerStatus(err), "Update failed: "+err.Error(), "")
	}
	return models.Failure(http.StatusInternalServerError, "Update failed: "+errorMessage(err), "")
}

func translateDeleteError(err error) models.OperationResult {
	if IsForeignKeyViolation(err) {
		return models.Failure(http.StatusBadRequest,
			"The record cannot be deleted because other records reference it", models.CodeForeignKeyConstraint)
	}
	if isCallerError(err) {
		return models.Failure(callerStatus(err), "Delete failed: "+err.Error(), models.CodeDeleteError)
	}
	return models.Failure(http.StatusInternalServerError, "Delete failed: "+errorMessage(err), models.CodeDeleteError)
}

func batchTables(batches []models.TableBatch) string {
	names := make([]string, len(batches))
	for i, b := range batches {
		names[i] = b.Table
	}
	return strings.Join(names, ",")
}

func updateTables(updates []models.TableUpdate) string {
	names := make([]string, len(updates))
	for i, u := range updates {
		names[i] = u.Table
	}
	return strings.Join(names, ",")
}

func (r *CrudRepository) finish(ctx context.Context, op, table string, start time.Time, err error) {
	metrics.ObserveOperation(op, table, start, err)
	log := logger.From(ctx).With(logger.Op(op), logger.Table(table), logger.Duration(time.Since(start)))
	switch {
	case err == nil:
		log.Debug("operation completed")
	case isCallerError(err) || IsIntegrityViolation(err):
		log.Warn("operation rejected", logger.Err(err))
	default:
		log.Error("operation failed", logger.Err(err))
	}
}

func (r *CrudRepository) report(ctx context.Context, op, table string, start time.Time, res models.OperationResult) {
	var err error
	if !res.OK() {
		err = errors.New(res.Message)
	}
	metrics.ObserveOperation(op, table, start, err)
	log := logger.From(ctx).With(logger.Op(op), logger.Table(table), logger.Duration(time.Since(start)))
	switch {
	case res.OK():
		log.Debug("operation completed")
	case res.Status < http.StatusInternalServerError:
		log.Warn("operation rejected", logger.Status(res.Status), zap.String("error_code", res.ErrorCode), zap.String("message", res.Message))
	default:
		log.Error("operation failed", logger.Status(res.Status), zap.String("message", res.Message))
	}
}
