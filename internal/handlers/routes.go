package handlers

import "github.com/gin-gonic/gin"

// Handlers groups every handler exposed under /api/v1
type Handlers struct {
	Bookings *BookingHandler
	Trips    *TripHandler
	Payments *PaymentHandler
	Ratings  *RatingHandler
}

// RegisterRoutes mounts the booking core API. auth guards every route except
// the public rating summaries.
func RegisterRoutes(v1 *gin.RouterGroup, h Handlers, auth gin.HandlerFunc) {
	bookings := v1.Group("/bookings", auth)
	{
		bookings.POST("", h.Bookings.CreateBooking)
		bookings.GET("", h.Bookings.ListBookings)
		bookings.GET("/:id", h.Bookings.GetBooking)
		bookings.GET("/:id/ticket", h.Bookings.DownloadTicket)
		bookings.PATCH("/:id/cancel", h.Bookings.CancelBooking)
		bookings.DELETE("/:id", h.Bookings.DeleteBooking)
	}

	trips := v1.Group("/trips", auth)
	{
		trips.PATCH("/:id/complete", h.Trips.CompleteTrip)
	}

	payments := v1.Group("/payments", auth)
	{
		payments.POST("/create-intent", h.Payments.CreateIntent)
		payments.POST("", h.Payments.RecordPayment)
		payments.GET("/:id", h.Payments.GetPayment)
		payments.POST("/:id/refund", h.Payments.RefundPayment)
	}

	ratings := v1.Group("/ratings")
	{
		ratings.GET("/trip/:id", h.Ratings.TripAverage)
		ratings.GET("/driver/:id", h.Ratings.DriverAverage)
		ratings.POST("", auth, h.Ratings.RateTrip)
	}
}
