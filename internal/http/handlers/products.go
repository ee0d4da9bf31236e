package handlers

import (
	"fmt"
	"net/http"

	"catalogapi/internal/domain/models"
	"catalogapi/internal/http/middleware"
	"catalogapi/internal/services"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	Products services.ProductService
	Export   services.ExportService
}

// POST /api/products
func (h ProductHandler) Create(c *gin.Context) {
	var req models.CreateProductRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	owner, _ := middleware.CurrentUser(c)
	product, err := h.Products.Create(c.Request.Context(), req, owner.ID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, "Product created successfully", product)
}

// GET /api/products
func (h ProductHandler) List(c *gin.Context) {
	res, err := h.Products.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "Products retrieved successfully", res)
}

// GET /api/products/:id
func (h ProductHandler) Get(c *gin.Context) {
	product, err := h.Products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "Product found", product)
}

// PUT /api/products/:id
func (h ProductHandler) Update(c *gin.Context) {
	var req models.UpdateProductRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	product, err := h.Products.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "Product updated successfully", product)
}

// DELETE /api/products/:id
func (h ProductHandler) Delete(c *gin.Context) {
	if err := h.Products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "Product deleted successfully", nil)
}

// GET /api/products/export
func (h ProductHandler) ExportPDF(c *gin.Context) {
	pdf, filename, err := h.Export.Catalog(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
