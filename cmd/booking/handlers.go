package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rentacar/pkg/models"
	"rentacar/pkg/schedule"
)

var blockingStatuses = []string{"pending", "confirmed", "active"}

func parseDate(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}

func reservationResponse(res models.Reservation) gin.H {
	return gin.H{
		"reservationUid": res.ReservationUid,
		"carUid":         res.CarUid,
		"clientUid":      res.ClientUid,
		"startDate":      res.StartDate.Format(time.RFC3339),
		"endDate":        res.EndDate.Format(time.RFC3339),
		"totalDays":      res.TotalDays,
		"dailyRate":      res.DailyRate,
		"totalAmount":    res.TotalAmount,
		"status":         res.Status,
		"paymentStatus":  res.PaymentStatus,
		"pickupLocation": res.PickupLocation,
		"returnLocation": res.ReturnLocation,
		"depositAmount":  res.DepositAmount,
		"notes":          res.Notes,
		"createdAt":      res.CreatedAt.Format(time.RFC3339),
	}
}

func loadBookedPeriods(carUid string) ([]schedule.BookedPeriod, error) {
	var reservations []models.Reservation
	if err := db.Where("car_uid = ?", carUid).Find(&reservations).Error; err != nil {
		return nil, err
	}
	periods := make([]schedule.BookedPeriod, len(reservations))
	for i, res := range reservations {
		periods[i] = schedule.BookedPeriod{
			ReservationUid: res.ReservationUid,
			Status:         schedule.Status(res.Status),
			Period:         schedule.TimeRange{Start: res.StartDate, End: res.EndDate},
		}
	}
	return periods, nil
}

func createReservation(c *gin.Context) {
	var request struct {
		ClientUid      string  `json:"clientUid" binding:"required"`
		CarUid         string  `json:"carUid" binding:"required"`
		DailyRate      float64 `json:"dailyRate" binding:"required"`
		StartDate      string  `json:"startDate" binding:"required"`
		EndDate        string  `json:"endDate" binding:"required"`
		Status         string  `json:"status"`
		PaymentStatus  string  `json:"paymentStatus"`
		PickupLocation string  `json:"pickupLocation"`
		ReturnLocation string  `json:"returnLocation"`
		DepositAmount  float64 `json:"depositAmount"`
		Notes          string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	start, err := parseDate(request.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use RFC3339"})
		return
	}
	end, err := parseDate(request.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use RFC3339"})
		return
	}

	status := request.Status
	if status == "" {
		status = string(schedule.StatusPending)
	}
	// Staff may confirm on creation; everything else goes through the
	// lifecycle afterwards.
	if status != string(schedule.StatusPending) && status != string(schedule.StatusConfirmed) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "New reservations must be pending or confirmed"})
		return
	}

	paymentStatus := request.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = string(schedule.PaymentUnpaid)
	}
	if !schedule.PaymentStatus(paymentStatus).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown payment status"})
		return
	}

	period, err := schedule.NewBookingRange(start, end, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mu := lockCar(request.CarUid)
	mu.Lock()
	defer mu.Unlock()

	existing, err := loadBookedPeriods(request.CarUid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	decision, err := schedule.Check(request.DailyRate, period, existing, "")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !decision.Available {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Car is already reserved for the selected dates",
			"conflicts": decision.Conflicts,
		})
		return
	}

	reservation := models.Reservation{
		ReservationUid: uuid.New().String(),
		CarUid:         request.CarUid,
		ClientUid:      request.ClientUid,
		StartDate:      period.Start,
		EndDate:        period.End,
		TotalDays:      decision.Quote.TotalDays,
		DailyRate:      decision.Quote.DailyRate,
		TotalAmount:    decision.Quote.TotalAmount,
		Status:         status,
		PaymentStatus:  paymentStatus,
		PickupLocation: request.PickupLocation,
		ReturnLocation: request.ReturnLocation,
		DepositAmount:  request.DepositAmount,
		Notes:          request.Notes,
	}
	if err := db.Create(&reservation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create reservation"})
		return
	}

	c.JSON(http.StatusCreated, reservationResponse(reservation))
}

func checkAvailability(c *gin.Context) {
	var request struct {
		CarUid                string  `json:"carUid" binding:"required"`
		DailyRate             float64 `json:"dailyRate" binding:"required"`
		StartDate             string  `json:"startDate" binding:"required"`
		EndDate               string  `json:"endDate" binding:"required"`
		ExcludeReservationUid string  `json:"excludeReservationUid"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	start, err := parseDate(request.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use RFC3339"})
		return
	}
	end, err := parseDate(request.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use RFC3339"})
		return
	}

	// Edits of an existing reservation may keep a start date that has
	// already passed; new bookings may not.
	var period schedule.TimeRange
	if request.ExcludeReservationUid != "" {
		period, err = schedule.NewTimeRange(start, end)
	} else {
		period, err = schedule.NewBookingRange(start, end, time.Now())
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := loadBookedPeriods(request.CarUid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	decision, err := schedule.Check(request.DailyRate, period, existing, request.ExcludeReservationUid)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !decision.Available {
		c.JSON(http.StatusOK, gin.H{
			"available": false,
			"message":   "Car is already reserved for the selected dates",
			"conflicts": decision.Conflicts,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"available": true,
		"message":   "Car is available for the selected dates",
		"pricing":   decision.Quote,
	})
}

func getReservations(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	sizeStr := c.DefaultQuery("size", "10")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 1 || size > 100 {
		size = 10
	}

	query := db.Model(&models.Reservation{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if carUid := c.Query("carUid"); carUid != "" {
		query = query.Where("car_uid = ?", carUid)
	}
	if clientUid := c.Query("clientUid"); clientUid != "" {
		query = query.Where("client_uid = ?", clientUid)
	}
	if startDate := c.Query("startDate"); startDate != "" {
		from, err := parseDate(startDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate format. Use RFC3339"})
			return
		}
		query = query.Where("start_date >= ?", from)
	}
	if endDate := c.Query("endDate"); endDate != "" {
		to, err := parseDate(endDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate format. Use RFC3339"})
			return
		}
		query = query.Where("end_date <= ?", to)
	}

	var totalElements int64
	query.Count(&totalElements)

	var reservations []models.Reservation
	offset := (page - 1) * size
	if err := query.Order("created_at DESC").Offset(offset).Limit(size).Find(&reservations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, len(reservations))
	for i, res := range reservations {
		items[i] = reservationResponse(res)
	}
	c.JSON(http.StatusOK, gin.H{
		"page":          page,
		"pageSize":      size,
		"totalElements": totalElements,
		"items":         items,
	})
}

func getReservation(c *gin.Context) {
	reservationUid := c.Param("reservationUid")

	var res models.Reservation
	if err := db.Where("reservation_uid = ?", reservationUid).First(&res).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
		return
	}

	c.JSON(http.StatusOK, reservationResponse(res))
}

func updateReservation(c *gin.Context) {
	reservationUid := c.Param("reservationUid")

	var request struct {
		StartDate      *string  `json:"startDate"`
		EndDate        *string  `json:"endDate"`
		Status         *string  `json:"status"`
		PaymentStatus  *string  `json:"paymentStatus"`
		PickupLocation *string  `json:"pickupLocation"`
		ReturnLocation *string  `json:"returnLocation"`
		DepositAmount  *float64 `json:"depositAmount"`
		Notes          *string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	var newStart, newEnd *time.Time
	if request.StartDate != nil {
		parsed, err := parseDate(*request.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use RFC3339"})
			return
		}
		newStart = &parsed
	}
	if request.EndDate != nil {
		parsed, err := parseDate(*request.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use RFC3339"})
			return
		}
		newEnd = &parsed
	}

	// One automatic retry when a concurrent edit wins the optimistic
	// update; a second loss surfaces as a conflict.
	for attempt := 0; attempt < 2; attempt++ {
		var res models.Reservation
		if err := db.Where("reservation_uid = ?", reservationUid).First(&res).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
			return
		}

		updates := map[string]interface{}{}
		carEffect := schedule.CarNoChange

		if request.Status != nil {
			effect, err := schedule.Transition(schedule.AdminPolicy,
				schedule.Status(res.Status), schedule.Status(*request.Status))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if *request.Status != res.Status {
				updates["status"] = *request.Status
				carEffect = effect
			}
		}
		if request.PaymentStatus != nil {
			if !schedule.PaymentStatus(*request.PaymentStatus).Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown payment status"})
				return
			}
			updates["payment_status"] = *request.PaymentStatus
		}
		if request.PickupLocation != nil {
			updates["pickup_location"] = *request.PickupLocation
		}
		if request.ReturnLocation != nil {
			updates["return_location"] = *request.ReturnLocation
		}
		if request.DepositAmount != nil {
			updates["deposit_amount"] = *request.DepositAmount
		}
		if request.Notes != nil {
			updates["notes"] = *request.Notes
		}

		mu := lockCar(res.CarUid)
		mu.Lock()

		if newStart != nil || newEnd != nil {
			start := res.StartDate
			end := res.EndDate
			if newStart != nil {
				start = *newStart
			}
			if newEnd != nil {
				end = *newEnd
			}

			period, err := schedule.NewTimeRange(start, end)
			if err != nil {
				mu.Unlock()
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			existing, err := loadBookedPeriods(res.CarUid)
			if err != nil {
				mu.Unlock()
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}

			// The frozen rate prices the new period; the car's current
			// price list is irrelevant to an existing reservation.
			decision, err := schedule.Check(res.DailyRate, period, existing, res.ReservationUid)
			if err != nil {
				mu.Unlock()
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if !decision.Available {
				mu.Unlock()
				c.JSON(http.StatusConflict, gin.H{
					"error":     "Car is already reserved for the selected dates",
					"conflicts": decision.Conflicts,
				})
				return
			}

			updates["start_date"] = period.Start
			updates["end_date"] = period.End
			updates["total_days"] = decision.Quote.TotalDays
			updates["total_amount"] = decision.Quote.TotalAmount
		}

		if len(updates) == 0 {
			mu.Unlock()
			c.JSON(http.StatusOK, reservationResponse(res))
			return
		}

		result := db.Model(&models.Reservation{}).
			Where("reservation_uid = ? AND updated_at = ?", reservationUid, res.UpdatedAt).
			Updates(updates)
		mu.Unlock()

		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update reservation"})
			return
		}
		if result.RowsAffected == 0 {
			continue
		}

		var updated models.Reservation
		if err := db.Where("reservation_uid = ?", reservationUid).First(&updated).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		response := reservationResponse(updated)
		response["carEffect"] = string(carEffect)
		c.JSON(http.StatusOK, response)
		return
	}

	c.JSON(http.StatusConflict, gin.H{"error": "Reservation was modified concurrently, please retry"})
}

func deleteReservation(c *gin.Context) {
	reservationUid := c.Param("reservationUid")

	var res models.Reservation
	if err := db.Where("reservation_uid = ?", reservationUid).First(&res).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
		return
	}

	if res.Status != string(schedule.StatusPending) && res.Status != string(schedule.StatusCancelled) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending or cancelled reservations can be deleted"})
		return
	}

	if err := db.Delete(&res).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete reservation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reservation deleted successfully"})
}

func getStats(c *gin.Context) {
	var windowStart, windowEnd time.Time
	if startDate := c.Query("startDate"); startDate != "" {
		parsed, err := parseDate(startDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate format. Use RFC3339"})
			return
		}
		windowStart = parsed
	}
	if endDate := c.Query("endDate"); endDate != "" {
		parsed, err := parseDate(endDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate format. Use RFC3339"})
			return
		}
		windowEnd = parsed
	}

	horizonDays, err := strconv.Atoi(c.DefaultQuery("horizonDays", "7"))
	if err != nil || horizonDays < 1 {
		horizonDays = 7
	}

	var reservations []models.Reservation
	if err := db.Find(&reservations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	summary := schedule.Summarize(reservations, now, windowStart, windowEnd, horizonDays)

	var recent []models.Reservation
	if err := db.Where("created_at >= ?", now.AddDate(0, 0, -7)).
		Order("created_at DESC").Limit(5).Find(&recent).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	recentItems := make([]gin.H, len(recent))
	for i, res := range recent {
		recentItems[i] = reservationResponse(res)
	}

	c.JSON(http.StatusOK, gin.H{
		"statusCounts": summary.StatusCounts,
		"totalRevenue": summary.TotalRevenue,
		"overdue": gin.H{
			"count": len(summary.Overdue),
			"items": summary.Overdue,
		},
		"upcoming": gin.H{
			"count": len(summary.Upcoming),
			"items": summary.Upcoming,
		},
		"recent": recentItems,
	})
}

func getCalendar(c *gin.Context) {
	now := time.Now()
	windowStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	windowEnd := windowStart.AddDate(0, 1, 0)

	if startDate := c.Query("startDate"); startDate != "" {
		parsed, err := parseDate(startDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate format. Use RFC3339"})
			return
		}
		windowStart = parsed
	}
	if endDate := c.Query("endDate"); endDate != "" {
		parsed, err := parseDate(endDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate format. Use RFC3339"})
			return
		}
		windowEnd = parsed
	}

	query := db.Where("status IN ?", blockingStatuses).
		Where("start_date < ? AND end_date > ?", windowEnd, windowStart)
	if carUid := c.Query("carUid"); carUid != "" {
		query = query.Where("car_uid = ?", carUid)
	}

	var reservations []models.Reservation
	if err := query.Order("start_date ASC").Find(&reservations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	events := make([]gin.H, len(reservations))
	for i, res := range reservations {
		events[i] = gin.H{
			"reservationUid": res.ReservationUid,
			"carUid":         res.CarUid,
			"clientUid":      res.ClientUid,
			"startDate":      res.StartDate.Format(time.RFC3339),
			"endDate":        res.EndDate.Format(time.RFC3339),
			"status":         res.Status,
		}
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
