package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"catalog/src/app/http/dto"
	"catalog/src/app/http/response"
	"catalog/src/app/middleware"
	"catalog/src/core/usecase"
)

// ProductHandler handles product endpoints.
type ProductHandler struct {
	productService *usecase.ProductService
}

func NewProductHandler(productService *usecase.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List returns all products.
// GET /api/products
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.productService.List(c.Request.Context())
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, dto.ProductsFromDomain(products))
}

// Get returns one product.
// GET /api/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}
	product, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, dto.ProductFromDomain(product))
}

// Create stores a new product.
// POST /api/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name, price and image are required", middleware.GetRequestID(c))
		return
	}
	product, err := h.productService.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.Created(c, dto.ProductFromDomain(product))
}

// Update applies a partial update.
// PUT /api/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", middleware.GetRequestID(c))
		return
	}
	product, err := h.productService.Update(c.Request.Context(), id, req.ToPatch())
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, dto.ProductFromDomain(product))
}

// Delete removes a product and returns it.
// DELETE /api/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}
	product, err := h.productService.Delete(c.Request.Context(), id)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, dto.ProductFromDomain(product))
}

func parseProductID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid product id", middleware.GetRequestID(c))
		return 0, false
	}
	return id, true
}
