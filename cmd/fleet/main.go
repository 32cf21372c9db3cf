package main

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"rentacar/pkg/database"
	"rentacar/pkg/models"
)

var db *gorm.DB

func main() {
	log.Println("Starting fleet service...")

	db = database.InitFleetDB()

	seedTestData()

	server := gin.Default()
	server.GET("/api/v1/cars", getCars)
	server.GET("/api/v1/cars/stats", getCarStats)
	server.GET("/api/v1/cars/:carUid", getCar)
	server.POST("/api/v1/cars", createCar)
	server.POST("/api/v1/cars/:carUid/rent", rentCar)
	server.POST("/api/v1/cars/:carUid/release", releaseCar)
	server.GET("/manage/health", healthCheck)

	log.Println("Fleet service starting on :8060")
	if err := server.Run(":8060"); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func carResponse(car models.Car) gin.H {
	return gin.H{
		"carUid":             car.CarUid,
		"brand":              car.Brand,
		"model":              car.Model,
		"year":               car.Year,
		"licensePlate":       car.LicensePlate,
		"pricePerDay":        car.PricePerDay,
		"availabilityStatus": car.AvailabilityStatus,
		"fuelType":           car.FuelType,
		"transmission":       car.Transmission,
		"seats":              car.Seats,
		"color":              car.Color,
		"mileage":            car.Mileage,
		"description":        car.Description,
		"currentRenterUid":   car.CurrentRenterUid,
	}
}

func getCars(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	sizeStr := c.DefaultQuery("size", "20")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 1 || size > 100 {
		size = 20
	}

	query := db.Model(&models.Car{})
	if brand := c.Query("brand"); brand != "" {
		query = query.Where("brand LIKE ?", "%"+brand+"%")
	}
	if model := c.Query("model"); model != "" {
		query = query.Where("model LIKE ?", "%"+model+"%")
	}
	if availability := c.Query("availability"); availability != "" {
		query = query.Where("availability_status = ?", availability)
	}
	if minPrice := c.Query("minPrice"); minPrice != "" {
		if price, err := strconv.ParseFloat(minPrice, 64); err == nil {
			query = query.Where("price_per_day >= ?", price)
		}
	}
	if maxPrice := c.Query("maxPrice"); maxPrice != "" {
		if price, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			query = query.Where("price_per_day <= ?", price)
		}
	}

	var totalElements int64
	query.Count(&totalElements)

	var cars []models.Car
	offset := (page - 1) * size
	if err := query.Offset(offset).Limit(size).Find(&cars).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, len(cars))
	for i, car := range cars {
		items[i] = carResponse(car)
	}
	c.JSON(http.StatusOK, gin.H{
		"page":          page,
		"pageSize":      size,
		"totalElements": totalElements,
		"items":         items,
	})
}

func getCar(c *gin.Context) {
	carUid := c.Param("carUid")

	var car models.Car
	if err := db.Where("car_uid = ?", carUid).First(&car).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		return
	}

	c.JSON(http.StatusOK, carResponse(car))
}

func getCarStats(c *gin.Context) {
	var total, available, rented, maintenance int64
	db.Model(&models.Car{}).Count(&total)
	db.Model(&models.Car{}).Where("availability_status = ?", "available").Count(&available)
	db.Model(&models.Car{}).Where("availability_status = ?", "rented").Count(&rented)
	db.Model(&models.Car{}).Where("availability_status = ?", "maintenance").Count(&maintenance)

	c.JSON(http.StatusOK, gin.H{
		"totalCars":       total,
		"availableCars":   available,
		"rentedCars":      rented,
		"maintenanceCars": maintenance,
	})
}

func createCar(c *gin.Context) {
	var request struct {
		Brand        string  `json:"brand" binding:"required"`
		Model        string  `json:"model" binding:"required"`
		Year         int     `json:"year" binding:"required"`
		PricePerDay  float64 `json:"pricePerDay" binding:"required,gt=0"`
		LicensePlate string  `json:"licensePlate"`
		FuelType     string  `json:"fuelType"`
		Transmission string  `json:"transmission"`
		Seats        int     `json:"seats"`
		Color        string  `json:"color"`
		Mileage      int     `json:"mileage"`
		Description  string  `json:"description"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if request.LicensePlate != "" {
		var existing models.Car
		if err := db.Where("license_plate = ?", request.LicensePlate).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "License plate already registered"})
			return
		}
	}

	car := models.Car{
		CarUid:             uuid.New().String(),
		Brand:              request.Brand,
		Model:              request.Model,
		Year:               request.Year,
		LicensePlate:       request.LicensePlate,
		PricePerDay:        request.PricePerDay,
		AvailabilityStatus: "available",
		FuelType:           request.FuelType,
		Transmission:       request.Transmission,
		Seats:              request.Seats,
		Color:              request.Color,
		Mileage:            request.Mileage,
		Description:        request.Description,
	}
	if err := db.Create(&car).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create car"})
		return
	}

	c.JSON(http.StatusCreated, carResponse(car))
}

func rentCar(c *gin.Context) {
	carUid := c.Param("carUid")

	var request struct {
		ClientUid string `json:"clientUid" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "clientUid is required"})
		return
	}

	var car models.Car
	if err := db.Where("car_uid = ?", carUid).First(&car).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		return
	}

	if car.AvailabilityStatus == "maintenance" {
		c.JSON(http.StatusConflict, gin.H{"error": "Car is under maintenance"})
		return
	}

	car.AvailabilityStatus = "rented"
	car.CurrentRenterUid = request.ClientUid
	if err := db.Save(&car).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update car status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"carUid":             car.CarUid,
		"availabilityStatus": car.AvailabilityStatus,
		"currentRenterUid":   car.CurrentRenterUid,
	})
}

func releaseCar(c *gin.Context) {
	carUid := c.Param("carUid")

	var car models.Car
	if err := db.Where("car_uid = ?", carUid).First(&car).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		return
	}

	// Maintenance is an independent state: releasing a rental never
	// overrides it.
	if car.AvailabilityStatus == "rented" {
		car.AvailabilityStatus = "available"
		car.CurrentRenterUid = ""
		if err := db.Save(&car).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update car status"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"carUid":             car.CarUid,
		"availabilityStatus": car.AvailabilityStatus,
	})
}

func seedTestData() {
	cars := []models.Car{
		{
			CarUid:             "7ce7d12e-5b38-4df5-b0a1-88078a70b3a2",
			Brand:              "Toyota",
			Model:              "Camry",
			Year:               2022,
			LicensePlate:       "A123BC",
			PricePerDay:        85,
			AvailabilityStatus: "available",
			FuelType:           "petrol",
			Transmission:       "automatic",
			Seats:              5,
			Color:              "white",
		},
		{
			CarUid:             "4b5f0bbe-43a2-4a1e-9b38-bf1cfbd5a0a9",
			Brand:              "Volkswagen",
			Model:              "Golf",
			Year:               2021,
			LicensePlate:       "B456DE",
			PricePerDay:        60,
			AvailabilityStatus: "available",
			FuelType:           "diesel",
			Transmission:       "manual",
			Seats:              5,
			Color:              "blue",
		},
		{
			CarUid:             "2c0a3ae1-3cb9-4f5c-9c6b-1f0a27d45d58",
			Brand:              "BMW",
			Model:              "X5",
			Year:               2023,
			LicensePlate:       "C789FG",
			PricePerDay:        150,
			AvailabilityStatus: "maintenance",
			FuelType:           "petrol",
			Transmission:       "automatic",
			Seats:              5,
			Color:              "black",
		},
	}

	for _, car := range cars {
		var existing models.Car
		if err := db.Where("car_uid = ?", car.CarUid).First(&existing).Error; err != nil {
			if err := db.Create(&car).Error; err != nil {
				log.Printf("Failed to create test car %s %s: %v", car.Brand, car.Model, err)
			}
		}
	}
	log.Println("Fleet test data seeded")
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
		"details": "Host localhost:8060 is active",
	})
}
