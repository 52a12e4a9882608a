package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/storefront"
)

type SelectVariantRequest struct {
	Index int `json:"index"`
}

type SelectSizeRequest struct {
	Size string `json:"size" binding:"required"`
}

type AddToCartRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// HandleLoadCategory handles GET /v1/catalog/:category
func HandleLoadCategory(reg *storefront.Registry, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, release := publicStorefront(c, reg)
		defer release()

		st, err := sf.Catalog.LoadCategory(c.Request.Context(), c.Param("category"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

// HandleFacets handles GET /v1/catalog/:category/facets
func HandleFacets(reg *storefront.Registry, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, release := publicStorefront(c, reg)
		defer release()

		// Load the category unless it is already the current listing
		if sf.Catalog.State().Category != c.Param("category") {
			if _, err := sf.Catalog.LoadCategory(c.Request.Context(), c.Param("category")); err != nil {
				respondError(c, logger, err)
				return
			}
		}
		c.JSON(http.StatusOK, sf.Catalog.Facets())
	}
}

// HandleApplyFilter handles POST /v1/catalog/filter
func HandleApplyFilter(reg *storefront.Registry, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var criteria domain.FilterCriteria
		if err := c.ShouldBindJSON(&criteria); err != nil {
			respondBindError(c, err)
			return
		}

		sf, release := publicStorefront(c, reg)
		defer release()

		st, err := sf.Catalog.ApplyFilter(c.Request.Context(), criteria)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

// HandleRefresh handles POST /v1/me/catalog/refresh
func HandleRefresh(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}

		st, err := sf.Catalog.Refresh(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

// HandleGetProduct handles GET /v1/products/:id
func HandleGetProduct(reg *storefront.Registry, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, release := publicStorefront(c, reg)
		defer release()

		detail, err := sf.Catalog.FetchProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

// HandleSelectVariant handles PUT /v1/me/product/variant
func HandleSelectVariant(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}

		var req SelectVariantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		detail, err := sf.Catalog.SelectVariant(req.Index)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

// HandleSelectSize handles PUT /v1/me/product/size
func HandleSelectSize(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}

		var req SelectSizeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		detail, err := sf.Catalog.SelectSize(req.Size)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

// HandleAddToCart handles POST /v1/me/cart
func HandleAddToCart(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sf, ok := sessionStorefront(c)
		if !ok {
			return
		}

		var req AddToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}

		cart, err := sf.Catalog.AddToCart(c.Request.Context(), req.Quantity)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cart": cart})
	}
}
