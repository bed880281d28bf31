package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.
// All routes require a valid JWT and the CLIENTE role.  Customers can
// browse availability, manage their own bookings, stage a cart
// against a booking, confirm it into an order, and rate products.
func RegisterCustomer(e *echo.Echo, ch *handler.CustomerHandler, oh *handler.OrderHandler, pm *handler.PublicMenuHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCliente),
	)

	// Availability and bookings.
	g.GET("/availability", ch.Availability)
	g.POST("/bookings", ch.CreateBooking)
	g.GET("/my-bookings", ch.MyBookings)
	g.GET("/bookings/:id", ch.GetBooking)
	g.DELETE("/bookings/:id", ch.DeleteBooking)

	// Cart staged against one booking.
	g.GET("/bookings/:id/cart", oh.ViewCart)
	g.POST("/bookings/:id/cart/items", oh.AddCartItem)
	g.DELETE("/bookings/:id/cart/items", oh.DecrementCartItem)
	g.DELETE("/bookings/:id/cart", oh.ClearCart)
	g.POST("/bookings/:id/cart/confirm", oh.ConfirmCart)

	// Orders.
	g.GET("/bookings/:id/orders", oh.ListOrders)
	g.GET("/my-orders", oh.MyOrders)
	g.GET("/orderable-bookings", oh.OrderableBookings)
	g.GET("/orders/:id", oh.GetOrder)
	g.POST("/orders/:id/cancel", oh.CancelOrder)
	g.DELETE("/orders/:id", oh.DeleteOrder)

	// Product ratings.
	g.POST("/products/:id/ratings", pm.RateProduct)
}
