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

// PublicMenuHandler serves the guest-facing menu: active categories,
// available products, active combos and product ratings.  These
// endpoints sit behind the response cache middleware.  RateProduct is
// the one authenticated method; it is registered on the customer
// group.
type PublicMenuHandler struct {
	Products   *repository.ProductRepo
	Categories *repository.CategoryRepo
	Combos     *repository.ComboRepo
	Ratings    *repository.RatingRepo
}

// NewPublicMenuHandler constructs a PublicMenuHandler and panics if
// any dependency is nil.
func NewPublicMenuHandler(products *repository.ProductRepo, categories *repository.CategoryRepo, combos *repository.ComboRepo, ratings *repository.RatingRepo) *PublicMenuHandler {
	if products == nil || categories == nil || combos == nil || ratings == nil {
		panic("nil repository passed to NewPublicMenuHandler")
	}
	return &PublicMenuHandler{Products: products, Categories: categories, Combos: combos, Ratings: ratings}
}

// GetCategories handles GET /v1/menu/categories.
func (h *PublicMenuHandler) GetCategories(c echo.Context) error {
	categories, err := h.Categories.List(c.Request().Context(), true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(categories))
	for _, cat := range categories {
		out = append(out, echo.Map{"id": cat.ID, "name": cat.Name, "description": cat.Description})
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": out})
}

// GetProducts handles GET /v1/menu/products, optionally filtered by
// ?category_id=N.
func (h *PublicMenuHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		products []model.Product
		err      error
	)
	if raw := c.QueryParam("category_id"); raw != "" {
		id, ok := parseQueryID(raw)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category_id"})
		}
		products, err = h.Products.ListByCategory(ctx, id)
	} else {
		products, err = h.Products.ListAvailable(ctx)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(products))
	for _, p := range products {
		out = append(out, productJSON(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"products": out})
}

// GetProduct handles GET /v1/menu/products/:id with its ratings.
func (h *PublicMenuHandler) GetProduct(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	ctx := c.Request().Context()
	p, err := h.Products.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !p.IsAvailable {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}
	ratings, err := h.Ratings.ListForProduct(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	rated := make([]echo.Map, 0, len(ratings))
	for _, rt := range ratings {
		rated = append(rated, echo.Map{"title": rt.Title, "text": rt.Text, "rating": rt.Rating})
	}
	resp := productJSON(*p)
	resp["ratings"] = rated
	return c.JSON(http.StatusOK, resp)
}

// GetCombos handles GET /v1/menu/combos.
func (h *PublicMenuHandler) GetCombos(c echo.Context) error {
	ctx := c.Request().Context()
	combos, err := h.Combos.List(ctx, true)
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

type ratingReq struct {
	Title  string `json:"title"`
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

// RateProduct handles POST /v1/products/:id/ratings (CLIENTE).  The
// product's stored average is refreshed in the same transaction as
// the insert.
func (h *PublicMenuHandler) RateProduct(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	var req ratingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Text = strings.TrimSpace(req.Text)
	if errs := model.ValidateRating(req.Title, req.Text, req.Rating); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}
	rt := model.Rating{
		Title:     req.Title,
		Text:      req.Text,
		Rating:    uint8(req.Rating),
		ProductID: id,
		UserID:    userID,
	}
	if err := h.Ratings.Create(c.Request().Context(), &rt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save rating failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": rt.ID, "rating": rt.Rating})
}
