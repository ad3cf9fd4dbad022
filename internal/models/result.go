package models

import "net/http"

// Error codes carried by failed results.
const (
	CodeDuplicateEntry       = "DUPLICATE_ENTRY"
	CodeIntegrityError       = "INTEGRITY_ERROR"
	CodeRecordNotFound       = "RECORD_NOT_FOUND"
	CodeForeignKeyConstraint = "FOREIGN_KEY_CONSTRAINT"
	CodeDeleteError          = "DELETE_ERROR"
)

// OperationResult is the tagged outcome of the operations that translate
// failures instead of returning errors. Status 200 means success.
type OperationResult struct {
	Status       int    `json:"status"`
	Data         any    `json:"data,omitempty"`
	Message      string `json:"message"`
	ErrorCode    string `json:"error_code,omitempty"`
	RowsAffected *int64 `json:"rows_affected,omitempty"`
}

func (r OperationResult) OK() bool { return r.Status == http.StatusOK }

func Success(data any, message string) OperationResult {
	return OperationResult{Status: http.StatusOK, Data: data, Message: message}
}

func Failure(status int, message, code string) OperationResult {
	return OperationResult{Status: status, Message: message, ErrorCode: code}
}
