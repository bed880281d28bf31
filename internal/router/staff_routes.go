package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// RegisterStaff registers staff endpoints under /v1/staff.  Catalog
// and registry management requires ADMINISTRADOR; the booking review
// queue accepts CAJERO as well, since cashiers confirm reservations
// at the counter.
func RegisterStaff(e *echo.Echo, sh *handler.StaffHandler, mh *handler.StaffMenuHandler, jwtSecret string) {
	admin := e.Group(
		"/v1/staff",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdministrador),
	)

	// Time-slot catalog.
	admin.POST("/time-slots", sh.CreateSlot)
	admin.GET("/time-slots", sh.ListSlots)
	admin.GET("/time-slots/:id", sh.GetSlot)
	admin.PUT("/time-slots/:id", sh.UpdateSlot)
	admin.DELETE("/time-slots/:id", sh.DeleteSlot)

	// Table registry.
	admin.POST("/tables", sh.CreateTable)
	admin.GET("/tables", sh.ListTables)
	admin.GET("/tables/:id", sh.GetTable)
	admin.PUT("/tables/:id", sh.UpdateTable)
	admin.DELETE("/tables/:id", sh.DeleteTable)

	// Menu catalog.
	admin.GET("/products", mh.ListProducts)
	admin.POST("/products", mh.CreateProduct)
	admin.PUT("/products/:id", mh.UpdateProduct)
	admin.DELETE("/products/:id", mh.DeleteProduct)
	admin.GET("/categories", mh.ListCategories)
	admin.POST("/categories", mh.CreateCategory)
	admin.PUT("/categories/:id", mh.UpdateCategory)
	admin.DELETE("/categories/:id", mh.DeleteCategory)
	admin.GET("/combos", mh.ListCombos)
	admin.POST("/combos", mh.CreateCombo)
	admin.PUT("/combos/:id", mh.UpdateCombo)
	admin.DELETE("/combos/:id", mh.DeleteCombo)

	// Booking review queue, open to both staff roles.
	review := e.Group(
		"/v1/staff/bookings",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdministrador, model.RoleCajero),
	)
	review.GET("/undecided", sh.ReviewQueue)
	review.POST("/:id/approve", sh.ApproveBooking)
	review.POST("/:id/reject", sh.RejectBooking)

	// Order fulfilment, also cashier work.
	fulfil := e.Group(
		"/v1/staff/orders",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdministrador, model.RoleCajero),
	)
	fulfil.PUT("/:id/state", sh.UpdateOrderState)
}
