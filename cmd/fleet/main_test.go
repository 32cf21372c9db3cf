package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"rentacar/pkg/models"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect test database")
	}
	db.AutoMigrate(&models.Car{})
	return db
}

func testCar(uid, brand, model, status string, price float64) models.Car {
	return models.Car{
		CarUid:             uid,
		Brand:              brand,
		Model:              model,
		Year:               2022,
		PricePerDay:        price,
		AvailabilityStatus: status,
	}
}

func TestGetCars(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db = setupTestDB()
	db.Create(&models.Car{
		CarUid: "car-1", Brand: "Toyota", Model: "Camry", Year: 2022,
		PricePerDay: 85, AvailabilityStatus: "available", LicensePlate: "A123BC",
	})
	db.Create(&models.Car{
		CarUid: "car-2", Brand: "BMW", Model: "X5", Year: 2023,
		PricePerDay: 150, AvailabilityStatus: "rented", LicensePlate: "C789FG",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/cars", nil)

	getCars(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(2), response["totalElements"])
}

func TestGetCarsFilterByAvailability(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db = setupTestDB()
	db.Create(&models.Car{CarUid: "car-1", Brand: "Toyota", Model: "Camry", Year: 2022, PricePerDay: 85, AvailabilityStatus: "available", LicensePlate: "A123BC"})
	db.Create(&models.Car{CarUid: "car-2", Brand: "BMW", Model: "X5", Year: 2023, PricePerDay: 150, AvailabilityStatus: "rented", LicensePlate: "C789FG"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/cars?availability=available", nil)

	getCars(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	items := response["items"].([]interface{})
	assert.Len(t, items, 1)
	assert.Equal(t, "car-1", items[0].(map[string]interface{})["carUid"])
}

func TestGetCarsFilterByPriceRange(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db = setupTestDB()
	db.Create(&models.Car{CarUid: "cheap", Brand: "Lada", Model: "Granta", Year: 2020, PricePerDay: 30, AvailabilityStatus: "available", LicensePlate: "K100AA"})
	db.Create(&models.Car{CarUid: "mid", Brand: "Toyota", Model: "Camry", Year: 2022, PricePerDay: 85, AvailabilityStatus: "available", LicensePlate: "K200BB"})
	db.Create(&models.Car{CarUid: "expensive", Brand: "BMW", Model: "X5", Year: 2023, PricePerDay: 150, AvailabilityStatus: "available", LicensePlate: "K300CC"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/cars?minPrice=50&maxPrice=100", nil)

	getCars(c)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	items := response["items"].([]interface{})
	assert.Len(t, items, 1)
	assert.Equal(t, "mid", items[0].(map[string]interface{})["carUid"])
}

func TestGetCarNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db = setupTestDB()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/cars/missing", nil)
	c.Params = gin.Params{gin.Param{Key: "carUid", Value: "missing"}}

	getCar(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCar(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db = setupTestDB()

	body, _ := json.Marshal(map[string]interface{}{
		"brand":        "Skoda",
		"model":        "Octavia",
		"year":         2023,
		"pricePerDay":  70.5,
		"licensePlate": "E321KX",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/v1/cars", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	createCar(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.NotEmpty(t, response["carUid"])
	assert.Equal(t, "available", response["availabilityStatus"])
}

func TestCreateCarDuplicatePlate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db = setupTestDB()
	car := testCar("car-1", "Skoda", "Octavia", "available", 70)
	car.LicensePlate = "E321KX"
	db.Create(&car)

	body, _ := json.Marshal(map[string]interface{}{
		"brand":        "Skoda",
		"model":        "Fabia",
		"year":         2022,
		"pricePerDay":  55,
		"licensePlate": "E321KX",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/v1/cars", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	createCar(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRentCar(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db = setupTestDB()
	db.Create(&models.Car{CarUid: "car-1", Brand: "Toyota", Model: "Camry", Year: 2022, PricePerDay: 85, AvailabilityStatus: "available"})

	body, _ := json.Marshal(map[string]string{"clientUid": "client-1"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/v1/cars/car-1/rent", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{gin.Param{Key: "carUid", Value: "car-1"}}

	rentCar(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var car models.Car
	db.Where("car_uid = ?", "car-1").First(&car)
	assert.Equal(t, "rented", car.AvailabilityStatus)
	assert.Equal(t, "client-1", car.CurrentRenterUid)
}

func TestRentCarInMaintenance(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db = setupTestDB()
	db.Create(&models.Car{CarUid: "car-1", Brand: "BMW", Model: "X5", Year: 2023, PricePerDay: 150, AvailabilityStatus: "maintenance"})

	body, _ := json.Marshal(map[string]string{"clientUid": "client-1"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/v1/cars/car-1/rent", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{gin.Param{Key: "carUid", Value: "car-1"}}

	rentCar(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReleaseCar(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db = setupTestDB()
	db.Create(&models.Car{CarUid: "car-1", Brand: "Toyota", Model: "Camry", Year: 2022, PricePerDay: 85, AvailabilityStatus: "rented", CurrentRenterUid: "client-1"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/v1/cars/car-1/release", nil)
	c.Params = gin.Params{gin.Param{Key: "carUid", Value: "car-1"}}

	releaseCar(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var car models.Car
	db.Where("car_uid = ?", "car-1").First(&car)
	assert.Equal(t, "available", car.AvailabilityStatus)
	assert.Empty(t, car.CurrentRenterUid)
}

func TestReleaseCarKeepsMaintenance(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db = setupTestDB()
	db.Create(&models.Car{CarUid: "car-1", Brand: "BMW", Model: "X5", Year: 2023, PricePerDay: 150, AvailabilityStatus: "maintenance"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/v1/cars/car-1/release", nil)
	c.Params = gin.Params{gin.Param{Key: "carUid", Value: "car-1"}}

	releaseCar(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var car models.Car
	db.Where("car_uid = ?", "car-1").First(&car)
	assert.Equal(t, "maintenance", car.AvailabilityStatus)
}

func TestGetCarStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db = setupTestDB()
	db.Create(&models.Car{CarUid: "car-1", Brand: "Toyota", Model: "Camry", Year: 2022, PricePerDay: 85, AvailabilityStatus: "available", LicensePlate: "S100AA"})
	db.Create(&models.Car{CarUid: "car-2", Brand: "VW", Model: "Golf", Year: 2021, PricePerDay: 60, AvailabilityStatus: "rented", LicensePlate: "S200BB"})
	db.Create(&models.Car{CarUid: "car-3", Brand: "BMW", Model: "X5", Year: 2023, PricePerDay: 150, AvailabilityStatus: "maintenance", LicensePlate: "S300CC"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/cars/stats", nil)

	getCarStats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(3), response["totalCars"])
	assert.Equal(t, float64(1), response["availableCars"])
	assert.Equal(t, float64(1), response["rentedCars"])
	assert.Equal(t, float64(1), response["maintenanceCars"])
}
