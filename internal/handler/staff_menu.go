package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// StaffMenuHandler bundles the catalog repositories for menu
// management endpoints (ADMINISTRADOR only).
type StaffMenuHandler struct {
	Products   *repository.ProductRepo
	Categories *repository.CategoryRepo
	Combos     *repository.ComboRepo
}

// NewStaffMenuHandler constructs a StaffMenuHandler and panics if any
// dependency is nil.
func NewStaffMenuHandler(products *repository.ProductRepo, categories *repository.CategoryRepo, combos *repository.ComboRepo) *StaffMenuHandler {
	if products == nil || categories == nil || combos == nil {
		panic("nil repository passed to NewStaffMenuHandler")
	}
	return &StaffMenuHandler{Products: products, Categories: categories, Combos: combos}
}

type productReq struct {
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	PriceCents         int64   `json:"price_cents"`
	Quantity           uint32  `json:"quantity"`
	CategoryID         *uint64 `json:"category_id"`
	OnPromotion        bool    `json:"on_promotion"`
	DiscountPercentage uint8   `json:"discount_percentage"`
	IsAvailable        bool    `json:"is_available"`
}

func (req *productReq) validate() map[string]string {
	errs := map[string]string{}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" {
		errs["name"] = "name is required"
	}
	if req.Description == "" {
		errs["description"] = "description is required"
	}
	if req.PriceCents <= 0 {
		errs["price_cents"] = "price must be greater than zero"
	}
	if req.DiscountPercentage > 100 {
		errs["discount_percentage"] = "discount must be between 0 and 100"
	}
	return errs
}

func (req productReq) toModel(id uint64) model.Product {
	return model.Product{
		ID:                 id,
		Name:               req.Name,
		Description:        req.Description,
		PriceCents:         req.PriceCents,
		Quantity:           req.Quantity,
		CategoryID:         req.CategoryID,
		OnPromotion:        req.OnPromotion,
		DiscountPercentage: req.DiscountPercentage,
		IsAvailable:        req.IsAvailable,
	}
}

// CreateProduct handles POST /v1/staff/products.
func (h *StaffMenuHandler) CreateProduct(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if errs := req.validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}
	p := req.toModel(0)
	if err := h.Products.Create(c.Request().Context(), &p); err != nil {
		if errors.Is(err, repository.ErrProductNameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "product name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create product failed"})
	}
	return c.JSON(http.StatusCreated, productJSON(p))
}

// UpdateProduct handles PUT /v1/staff/products/:id.
func (h *StaffMenuHandler) UpdateProduct(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if errs := req.validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}
	p := req.toModel(id)
	err := h.Products.Update(c.Request().Context(), &p)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	case errors.Is(err, repository.ErrProductNameExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "product name already exists"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update product failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteProduct handles DELETE /v1/staff/products/:id.
func (h *StaffMenuHandler) DeleteProduct(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	err := h.Products.Delete(c.Request().Context(), id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "product is referenced by orders and cannot be deleted"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete product failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListProducts handles GET /v1/staff/products (all products, not just
// the available ones).
func (h *StaffMenuHandler) ListProducts(c echo.Context) error {
	products, err := h.Products.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(products))
	for _, p := range products {
		out = append(out, productJSON(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"products": out})
}

type categoryReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

func (req *categoryReq) validate() map[string]string {
	errs := map[string]string{}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" {
		errs["name"] = "name is required"
	}
	if req.Description == "" {
		errs["description"] = "description is required"
	}
	return errs
}

// CreateCategory handles POST /v1/staff/categories.
func (h *StaffMenuHandler) CreateCategory(c echo.Context) error {
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if errs := req.validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}
	cat := model.Category{Name: req.Name, Description: req.Description, IsActive: req.IsActive}
	if err := h.Categories.Create(c.Request().Context(), &cat); err != nil {
		if errors.Is(err, repository.ErrCategoryNameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "category name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create category failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": cat.ID, "name": cat.Name, "description": cat.Description, "is_active": cat.IsActive})
}

// UpdateCategory handles PUT /v1/staff/categories/:id.
func (h *StaffMenuHandler) UpdateCategory(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if errs := req.validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}
	cat := model.Category{ID: id, Name: req.Name, Description: req.Description, IsActive: req.IsActive}
	err := h.Categories.Update(c.Request().Context(), &cat)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	case errors.Is(err, repository.ErrCategoryNameExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "category name already exists"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update category failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteCategory handles DELETE /v1/staff/categories/:id.
func (h *StaffMenuHandler) DeleteCategory(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}
	err := h.Categories.Delete(c.Request().Context(), id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete category failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListCategories handles GET /v1/staff/categories (inactive included).
func (h *StaffMenuHandler) ListCategories(c echo.Context) error {
	categories, err := h.Categories.List(c.Request().Context(), false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(categories))
	for _, cat := range categories {
		out = append(out, echo.Map{"id": cat.ID, "name": cat.Name, "description": cat.Description, "is_active": cat.IsActive})
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": out})
}

type comboReq struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	PriceCents         int64    `json:"price_cents"`
	OnPromotion        bool     `json:"on_promotion"`
	DiscountPercentage uint8    `json:"discount_percentage"`
	IsActive           bool     `json:"is_active"`
	ProductIDs         []uint64 `json:"product_ids"`
}

func (req *comboReq) validate() map[string]string {
	errs := map[string]string{}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" {
		errs["name"] = "name is required"
	}
	if req.Description == "" {
		errs["description"] = "description is required"
	}
	if req.PriceCents <= 0 {
		errs["price_cents"] = "price must be greater than zero"
	}
	if req.DiscountPercentage > model.MaxComboDiscount {
		errs["discount_percentage"] = "combo discount must be between 0 and 80"
	}
	if len(dedupeIDs(req.ProductIDs)) == 0 {
		errs["product_ids"] = "a combo needs at least one product"
	}
	return errs
}

func (req comboReq) toModel(id uint64) model.Combo {
	return model.Combo{
		ID:                 id,
		Name:               req.Name,
		Description:        req.Description,
		PriceCents:         req.PriceCents,
		OnPromotion:        req.OnPromotion,
		DiscountPercentage: req.DiscountPercentage,
		IsActive:           req.IsActive,
	}
}

// CreateCombo handles POST /v1/staff/combos.
func (h *StaffMenuHandler) CreateCombo(c echo.Context) error {
	var req comboReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if errs := req.validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}
	co := req.toModel(0)
	if err := h.Combos.Create(c.Request().Context(), &co, dedupeIDs(req.ProductIDs)); err != nil {
		if errors.Is(err, repository.ErrComboNameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "combo name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create combo failed"})
	}
	return c.JSON(http.StatusCreated, comboJSON(co))
}

// UpdateCombo handles PUT /v1/staff/combos/:id.
func (h *StaffMenuHandler) UpdateCombo(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid combo id"})
	}
	var req comboReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if errs := req.validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}
	co := req.toModel(id)
	err := h.Combos.Update(c.Request().Context(), &co, dedupeIDs(req.ProductIDs))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "combo not found"})
	case errors.Is(err, repository.ErrComboNameExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "combo name already exists"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update combo failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteCombo handles DELETE /v1/staff/combos/:id.
func (h *StaffMenuHandler) DeleteCombo(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid combo id"})
	}
	err := h.Combos.Delete(c.Request().Context(), id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "combo not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "combo is referenced by orders and cannot be deleted"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete combo failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListCombos handles GET /v1/staff/combos (inactive included).
func (h *StaffMenuHandler) ListCombos(c echo.Context) error {
	ctx := c.Request().Context()
	combos, err := h.Combos.List(ctx, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(combos))
	for _, co := range combos {
		m := comboJSON(co)
		if ids, err := h.Combos.ProductIDs(ctx, co.ID); err == nil {
			m["product_ids"] = ids
		}
		out = append(out, m)
	}
	return c.JSON(http.StatusOK, echo.Map{"combos": out})
}
