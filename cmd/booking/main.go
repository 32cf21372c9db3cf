package main

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"rentacar/pkg/database"
	"rentacar/pkg/models"
)

var db *gorm.DB

// carLocks serializes check-then-commit per car, so two simultaneous
// requests for the same car cannot both pass the availability check and
// double-book the slot.
var carLocks sync.Map

func lockCar(carUid string) *sync.Mutex {
	mu, _ := carLocks.LoadOrStore(carUid, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func main() {
	log.Println("Starting booking service...")

	db = database.InitBookingDB()

	seedTestData()

	server := gin.Default()
	server.GET("/api/v1/reservations", getReservations)
	server.POST("/api/v1/reservations", createReservation)
	server.POST("/api/v1/reservations/check-availability", checkAvailability)
	server.GET("/api/v1/reservations/stats", getStats)
	server.GET("/api/v1/reservations/calendar", getCalendar)
	server.GET("/api/v1/reservations/:reservationUid", getReservation)
	server.PUT("/api/v1/reservations/:reservationUid", updateReservation)
	server.DELETE("/api/v1/reservations/:reservationUid", deleteReservation)
	server.GET("/manage/health", healthCheck)

	log.Println("Booking service starting on :8070")
	if err := server.Run(":8070"); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func seedTestData() {
	now := time.Now()
	reservations := []models.Reservation{
		{
			ReservationUid: "a9f3d5c1-0e4b-4f6a-8d2e-3b5c7a9e1f20",
			CarUid:         "7ce7d12e-5b38-4df5-b0a1-88078a70b3a2",
			ClientUid:      "5f6dd2cb-95a2-4f04-b0a5-5d0c9f5ea9d3",
			StartDate:      now.AddDate(0, 0, -14),
			EndDate:        now.AddDate(0, 0, -10),
			TotalDays:      4,
			DailyRate:      85,
			TotalAmount:    340,
			Status:         "completed",
			PaymentStatus:  "paid",
		},
		{
			ReservationUid: "c1b7e8a2-6d3f-4c5a-9e0b-7f2d4a6c8e13",
			CarUid:         "4b5f0bbe-43a2-4a1e-9b38-bf1cfbd5a0a9",
			ClientUid:      "9d2ef9a7-7f05-4e44-9771-fd1b44e0d3a1",
			StartDate:      now.AddDate(0, 0, 3),
			EndDate:        now.AddDate(0, 0, 6),
			TotalDays:      3,
			DailyRate:      60,
			TotalAmount:    180,
			Status:         "confirmed",
			PaymentStatus:  "partial",
			DepositAmount:  50,
		},
	}

	for _, res := range reservations {
		var existing models.Reservation
		if err := db.Where("reservation_uid = ?", res.ReservationUid).First(&existing).Error; err != nil {
			db.Create(&res)
		}
	}
	log.Println("Booking test data seeded")
}

func healthCheck(ctx *gin.Context) {
	sqlDB, err := db.DB()
	if err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database connection failed",
			"error":   err.Error(),
		})
		return
	}
	if err := sqlDB.Ping(); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database ping failed",
			"error":   err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "UP",
		"details": "Host localhost:8070 is active",
	})
}
