package handlers

import (
	"net/http"

	"catalogapi/internal/domain/models"
	"catalogapi/internal/http/middleware"
	"catalogapi/internal/services"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	Categories services.CategoryService
}

// POST /api/categories
func (h CategoryHandler) Create(c *gin.Context) {
	var req models.CreateCategoryRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	owner, _ := middleware.CurrentUser(c)
	category, err := h.Categories.Create(c.Request.Context(), req, owner.ID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, "Category created successfully", category)
}

// GET /api/categories
func (h CategoryHandler) List(c *gin.Context) {
	res, err := h.Categories.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "Categories retrieved successfully", res)
}

// GET /api/categories/:id
func (h CategoryHandler) Get(c *gin.Context) {
	category, err := h.Categories.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "Category found", category)
}

// PUT /api/categories/:id
func (h CategoryHandler) Update(c *gin.Context) {
	var req models.UpdateCategoryRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	category, err := h.Categories.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "Category updated successfully", category)
}

// DELETE /api/categories/:id
func (h CategoryHandler) Delete(c *gin.Context) {
	if err := h.Categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "Category deleted successfully", nil)
}
