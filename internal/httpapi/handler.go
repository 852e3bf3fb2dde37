package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/pmstore/pkg/types"
)

// Paging defaults for list requests.
const (
	DefaultSkip  = 0
	DefaultLimit = 100
)

// Handler serves the per-table CRUD routes.
type Handler struct {
	tables types.Tables
}

// NewHandler returns a Handler backed by tables.
func NewHandler(tables types.Tables) *Handler {
	return &Handler{tables: tables}
}

// table resolves the :table path parameter.
func (h *Handler) table(c *gin.Context) (string, types.Table, bool) {
	name := c.Param("table")
	tbl, err := h.tables.GetTable(name)
	if err != nil {
		failure(c, err)
		return "", nil, false
	}
	return name, tbl, true
}

// parseID parses the :id path parameter.
func parseID(c *gin.Context) (int64, bool) {
	v, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "id must be an integer")
		return 0, false
	}
	return v, true
}

// queryInt parses a non-negative integer query parameter.
func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw, ok := c.GetQuery(key)
	if !ok {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		badRequest(c, key+" must be a non-negative integer")
		return 0, false
	}
	return v, true
}

// List handles GET /api/:table?skip=&limit=.
func (h *Handler) List(c *gin.Context) {
	_, tbl, ok := h.table(c)
	if !ok {
		return
	}
	skip, ok := queryInt(c, "skip", DefaultSkip)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", DefaultLimit)
	if !ok {
		return
	}
	rows, err := tbl.List(skip, limit)
	if err != nil {
		failure(c, err)
		return
	}
	success(c, http.StatusOK, rows)
}

// Get handles GET /api/:table/:id.
func (h *Handler) Get(c *gin.Context) {
	_, tbl, ok := h.table(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	row, err := tbl.Get(id)
	if err != nil {
		failure(c, err)
		return
	}
	success(c, http.StatusOK, row)
}

// Create handles POST /api/:table.
func (h *Handler) Create(c *gin.Context) {
	name, tbl, ok := h.table(c)
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, "reading body failed")
		return
	}
	entity, err := types.ParseEntity(name, body)
	if err != nil {
		failure(c, err)
		return
	}
	if _, err := tbl.Create(entity); err != nil {
		failure(c, err)
		return
	}
	success(c, http.StatusCreated, entity)
}

// Update handles PUT and PATCH /api/:table/:id. Both apply a partial update.
func (h *Handler) Update(c *gin.Context) {
	name, tbl, ok := h.table(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		badRequest(c, "reading body failed")
		return
	}
	patch, err := types.ParsePatch(name, body)
	if err != nil {
		failure(c, err)
		return
	}
	row, err := tbl.Update(id, patch)
	if err != nil {
		failure(c, err)
		return
	}
	success(c, http.StatusOK, row)
}

// Delete handles DELETE /api/:table/:id.
func (h *Handler) Delete(c *gin.Context) {
	_, tbl, ok := h.table(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := tbl.Delete(id); err != nil {
		failure(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"id": id})
}
