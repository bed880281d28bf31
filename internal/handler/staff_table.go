package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/clock"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

type tableReq struct {
	Capacity    uint32 `json:"capacity"`
	Description string `json:"description"`
}

// CreateTable handles POST /v1/staff/tables.  The table number is
// assigned automatically: the smallest positive integer not currently
// in use, so deleted numbers are reused.
func (h *StaffHandler) CreateTable(c echo.Context) error {
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": map[string]string{"capacity": "capacity must be at least 1"}})
	}
	table, err := h.Tables.Create(c.Request().Context(), req.Capacity, strings.TrimSpace(req.Description))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create table failed"})
	}
	return c.JSON(http.StatusCreated, tableJSON(*table))
}

// ListTables handles GET /v1/staff/tables.
func (h *StaffHandler) ListTables(c echo.Context) error {
	tables, err := h.Tables.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(tables))
	for _, t := range tables {
		out = append(out, tableJSON(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": out})
}

// GetTable handles GET /v1/staff/tables/:id.
func (h *StaffHandler) GetTable(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	table, err := h.Tables.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, tableJSON(*table))
}

// UpdateTable handles PUT /v1/staff/tables/:id.  Capacity changes are
// refused while the table is attached to an active booking; the
// conflict response names the table number and the booking codes so
// staff know what stands in the way.
func (h *StaffHandler) UpdateTable(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": map[string]string{"capacity": "capacity must be at least 1"}})
	}
	today, now := clock.Split(h.Clock.Now())
	err := h.Tables.UpdateCapacity(c.Request().Context(), id, req.Capacity, strings.TrimSpace(req.Description), today, now)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
	case errors.Is(err, repository.ErrConflict):
		return h.tableConflict(c, id, "table cannot be changed while booked")
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update table failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteTable handles DELETE /v1/staff/tables/:id with the same
// active-booking guard as UpdateTable.
func (h *StaffHandler) DeleteTable(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	today, now := clock.Split(h.Clock.Now())
	err := h.Tables.Delete(c.Request().Context(), id, today, now)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
	case errors.Is(err, repository.ErrConflict):
		return h.tableConflict(c, id, "table cannot be deleted while booked")
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete table failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// tableConflict builds the 409 body for a guarded table mutation,
// naming the table number and the codes of the bookings holding it.
func (h *StaffHandler) tableConflict(c echo.Context, tableID uint64, msg string) error {
	ctx := c.Request().Context()
	resp := echo.Map{"error": msg}
	if table, err := h.Tables.GetByID(ctx, tableID); err == nil {
		resp["table_number"] = table.Number
	}
	today, now := clock.Split(h.Clock.Now())
	if codes, err := h.Tables.ActiveBookingCodes(ctx, tableID, today, now); err == nil {
		resp["booking_codes"] = codes
	}
	return c.JSON(http.StatusConflict, resp)
}
