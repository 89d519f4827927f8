package httphandler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pierregarcia1/construction-aggregator/internal/core/domain"
	"github.com/pierregarcia1/construction-aggregator/internal/core/port"
)

// GET /api/search?material=concrete&vendors=home-depot,lowes&sortBy=rating&location=Austin,TX 78701
// GET /api/vendors
// GET /api/vendors/:id/products/:productId
// GET /api/test

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type RouterOpt func(*gin.Engine)

func CORSOpt(origins []string) RouterOpt {
	return func(r *gin.Engine) {
		r.Use(CORS(origins))
	}
}

// NewRouter returns the engine with request ids, access logging and panic
// recovery installed. Routes are added with the Register functions.
func NewRouter(opts ...RouterOpt) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), AccessLog(), gin.Recovery())
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type SearchHandler struct {
	searcher port.ProductSearcher
}

func RegisterSearch(r gin.IRouter, searcher port.ProductSearcher) {
	h := SearchHandler{searcher}
	r.GET("/api/search", h.Search)
}

func (h SearchHandler) Search(c *gin.Context) {
	const op = "SearchHandler.Search"
	log := slog.With("op", op, "requestID", c.GetString(requestIDKey))

	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		log.Warn("failed to parse query", "err", err)
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.searcher.Search(c.Request.Context(), q.toDomain())
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: vErr.Error()})
			return
		}
		log.Error("search failed", "err", err)
		writeInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type VendorsHandler struct {
	lister   port.VendorLister
	detailer port.ProductDetailer
}

func RegisterVendors(
	r gin.IRouter, lister port.VendorLister, detailer port.ProductDetailer,
) {
	h := VendorsHandler{lister, detailer}
	r.GET("/api/vendors", h.List)
	r.GET("/api/vendors/:id/products/:productId", h.ProductDetails)
}

func (h VendorsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"vendors": h.lister.Vendors()})
}

func (h VendorsHandler) ProductDetails(c *gin.Context) {
	const op = "VendorsHandler.ProductDetails"
	log := slog.With("op", op, "requestID", c.GetString(requestIDKey))

	vendorID, productID := c.Param("id"), c.Param("productId")
	p, err := h.detailer.ProductDetails(c.Request.Context(), vendorID, productID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrVendorNotFound):
			c.JSON(http.StatusNotFound, errorResponse{Error: "Vendor not found"})
		case errors.Is(err, domain.ErrProductNotFound):
			c.JSON(http.StatusNotFound, errorResponse{Error: "Product not found"})
		default:
			log.Error("failed to get product details",
				"vendor", vendorID, "product", productID, "err", err,
			)
			writeInternal(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, p)
}

func RegisterHealth(r gin.IRouter) {
	r.GET("/api/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, testResponse{
			Message:   "API routes are working!",
			Timestamp: time.Now().UTC().Format(timestampLayout),
		})
	})
}

func writeInternal(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, errorResponse{
		Error:   "Internal server error",
		Details: err.Error(),
	})
}
