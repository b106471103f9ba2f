package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/datakamer/datakamer-backend/internal/api/http/middleware"
	"github.com/datakamer/datakamer-backend/internal/catalog/domain"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// store is the service surface one resource needs.
type store[M any] interface {
	List(ctx context.Context) ([]M, error)
	Get(ctx context.Context, id int64) (M, error)
	Create(ctx context.Context, m *M) error
	Update(ctx context.Context, m *M) error
	Delete(ctx context.Context, id int64) error
}

// resource serves the CRUD routes of one entity. list and retrieve default to
// the flat records; regions and universities swap in their nested views.
type resource[M any] struct {
	svc   store[M]
	setID func(*M, int64)
	// defaults seeds POST and PUT bodies before binding
	defaults func(*M)
	check    func(*M) error
	list     func(*gin.Context) (any, error)
	retrieve func(*gin.Context, int64) (any, error)
	// keys that must appear in POST and PUT bodies even though their zero
	// value is valid
	mandatory []string
}

func (r *resource[M]) register(rg *gin.RouterGroup) {
	rg.GET("", r.handleList)
	rg.GET("/:id", r.handleRetrieve)
	rg.POST("", r.handleCreate)
	rg.PUT("/:id", r.handleReplace)
	rg.PATCH("/:id", r.handlePatch)
	rg.DELETE("/:id", r.handleDelete)
}

func (r *resource[M]) handleList(c *gin.Context) {
	var (
		out any
		err error
	)
	if r.list != nil {
		out, err = r.list(c)
	} else {
		out, err = r.svc.List(c.Request.Context())
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (r *resource[M]) handleRetrieve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var (
		out any
		err error
	)
	if r.retrieve != nil {
		out, err = r.retrieve(c, id)
	} else {
		out, err = r.svc.Get(c.Request.Context(), id)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (r *resource[M]) handleCreate(c *gin.Context) {
	var m M
	if !r.bindFull(c, &m) {
		return
	}
	r.setID(&m, 0)
	if err := r.svc.Create(c.Request.Context(), &m); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (r *resource[M]) handleReplace(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var m M
	if !r.bindFull(c, &m) {
		return
	}
	r.setID(&m, id)
	if err := r.svc.Update(c.Request.Context(), &m); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// handlePatch overlays the body on the stored record and validates the result
// as a whole.
func (r *resource[M]) handlePatch(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	m, err := r.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !r.bind(c, &m) {
		return
	}
	r.setID(&m, id)
	if err := r.svc.Update(c.Request.Context(), &m); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (r *resource[M]) handleDelete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := r.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindFull binds a complete record and requires the mandatory keys to be
// present and non-null.
func (r *resource[M]) bindFull(c *gin.Context, m *M) bool {
	if r.defaults != nil {
		r.defaults(m)
	}
	if !r.bind(c, m) {
		return false
	}
	if len(r.mandatory) == 0 {
		return true
	}

	var keys map[string]any
	if err := c.ShouldBindBodyWith(&keys, binding.JSON); err != nil {
		writeError(c, domain.ValidationError(err))
		return false
	}
	for _, k := range r.mandatory {
		if v, ok := keys[k]; !ok || v == nil {
			writeError(c, fmt.Errorf("%w: %s is required", domain.ErrValidation, k))
			return false
		}
	}
	return true
}

// bind decodes the body over m through gin's JSON binding, which also checks
// the field constraints, then runs the resource's HTTP-only checks. PATCH
// passes the stored record so the body overlays it.
func (r *resource[M]) bind(c *gin.Context, m *M) bool {
	if err := c.ShouldBindBodyWith(m, binding.JSON); err != nil {
		writeError(c, domain.ValidationError(err))
		return false
	}
	if r.check != nil {
		if err := r.check(m); err != nil {
			writeError(c, err)
			return false
		}
	}
	return true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("[error] request failed id=%s path=%s err=%v",
			middleware.GetRequestID(c.Request.Context()), c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
