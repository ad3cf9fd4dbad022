package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sales_backend/internal/codec"
	"sales_backend/internal/models"
	"sales_backend/internal/responses"
	"sales_backend/internal/utils"
)

// Resource binds one table to typed create payloads. Key is the column
// used by update and delete.
type Resource struct {
	Table string
	Key   string

	decodeOne  func(c *gin.Context) (any, error)
	decodeMany func(c *gin.Context) ([]any, error)
}

// NewResource validates create payloads as T through gin binding tags.
func NewResource[T codec.Mapper](table, key string) Resource {
	return Resource{
		Table: table,
		Key:   key,
		decodeOne: func(c *gin.Context) (any, error) {
			var v T
			if err := c.ShouldBindJSON(&v); err != nil {
				return nil, err
			}
			return v, nil
		},
		decodeMany: func(c *gin.Context) ([]any, error) {
			var vs []T
			if err := c.ShouldBindJSON(&vs); err != nil {
				return nil, err
			}
			out := make([]any, len(vs))
			for i, v := range vs {
				out[i] = v
			}
			return out, nil
		},
	}
}

type ResourceHandler struct {
	exec CrudExecutor
	res  Resource
}

func NewResourceHandler(exec CrudExecutor, res Resource) *ResourceHandler {
	return &ResourceHandler{exec: exec, res: res}
}

// Create handles POST /<resource>
func (h *ResourceHandler) Create(c *gin.Context) {
	payload, err := h.res.decodeOne(c)
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	rec, err := h.exec.Create(c.Request.Context(), h.res.Table, payload)
	if err != nil {
		responses.FromError(c, err)
		return
	}
	responses.Success(c, http.StatusCreated, rec, "Record created successfully")
}

// Bulk handles POST /<resource>/bulk
func (h *ResourceHandler) Bulk(c *gin.Context) {
	payloads, err := h.res.decodeMany(c)
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	responses.Result(c, h.exec.BulkCreate(c.Request.Context(), h.res.Table, payloads))
}

// List handles GET /<resource>?column=&value=
func (h *ResourceHandler) List(c *gin.Context) {
	column := c.Query("column")
	value, hasValue := c.GetQuery("value")

	var filter any
	if column != "" && hasValue {
		filter = value
	} else {
		column = ""
	}
	rows, err := h.exec.Read(c.Request.Context(), h.res.Table, column, filter)
	if err != nil {
		responses.FromError(c, err)
		return
	}
	responses.Success(c, http.StatusOK, rows, "")
}

// Search handles POST /<resource>/search
func (h *ResourceHandler) Search(c *gin.Context) {
	q := models.PageQuery{Page: 1, Limit: 20}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&q); err != nil {
			responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
			return
		}
	}
	page, err := h.exec.ReadPaginated(c.Request.Context(), h.res.Table, q)
	if err != nil {
		responses.FromError(c, err)
		return
	}
	responses.Success(c, http.StatusOK, page, "")
}

// Update handles PUT /<resource>. The body must carry the key column.
func (h *ResourceHandler) Update(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	responses.Result(c, h.exec.Update(c.Request.Context(), h.res.Table, payload, h.res.Key))
}

// Delete handles DELETE /<resource>/:id
func (h *ResourceHandler) Delete(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		responses.Fail(c, http.StatusBadRequest, nil, "Invalid id")
		return
	}
	responses.Result(c, h.exec.Delete(c.Request.Context(), h.res.Table, h.res.Key, id))
}
