package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"rentacar/pkg/database"
	"rentacar/pkg/models"
)

var db *gorm.DB

func main() {
	log.Println("Starting clients service...")

	db = database.InitClientsDB()

	seedTestData()

	server := gin.Default()
	server.GET("/api/v1/clients/:clientUid", getClient)
	server.POST("/api/v1/clients", createClient)
	server.PUT("/api/v1/clients/:clientUid", updateClient)
	server.GET("/manage/health", healthCheck)

	log.Println("Clients service starting on :8050")
	if err := server.Run(":8050"); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func clientResponse(client models.Client) gin.H {
	return gin.H{
		"clientUid":        client.ClientUid,
		"fullName":         client.FullName,
		"email":            client.Email,
		"phone":            client.Phone,
		"address":          client.Address,
		"driverLicense":    client.DriverLicense,
		"emergencyContact": client.EmergencyContact,
		"notes":            client.Notes,
	}
}

func getClient(c *gin.Context) {
	clientUid := c.Param("clientUid")

	var client models.Client
	if err := db.Where("client_uid = ?", clientUid).First(&client).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	c.JSON(http.StatusOK, clientResponse(client))
}

func createClient(c *gin.Context) {
	var request struct {
		FullName         string `json:"fullName" binding:"required"`
		Email            string `json:"email"`
		Phone            string `json:"phone"`
		Address          string `json:"address"`
		DriverLicense    string `json:"driverLicense"`
		EmergencyContact string `json:"emergencyContact"`
		Notes            string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	client := models.Client{
		ClientUid:        uuid.New().String(),
		FullName:         request.FullName,
		Email:            request.Email,
		Phone:            request.Phone,
		Address:          request.Address,
		DriverLicense:    request.DriverLicense,
		EmergencyContact: request.EmergencyContact,
		Notes:            request.Notes,
	}
	if err := db.Create(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create client"})
		return
	}

	c.JSON(http.StatusCreated, clientResponse(client))
}

func updateClient(c *gin.Context) {
	clientUid := c.Param("clientUid")

	var client models.Client
	if err := db.Where("client_uid = ?", clientUid).First(&client).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	var request struct {
		FullName         *string `json:"fullName"`
		Email            *string `json:"email"`
		Phone            *string `json:"phone"`
		Address          *string `json:"address"`
		DriverLicense    *string `json:"driverLicense"`
		EmergencyContact *string `json:"emergencyContact"`
		Notes            *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	if request.FullName != nil {
		client.FullName = *request.FullName
	}
	if request.Email != nil {
		client.Email = *request.Email
	}
	if request.Phone != nil {
		client.Phone = *request.Phone
	}
	if request.Address != nil {
		client.Address = *request.Address
	}
	if request.DriverLicense != nil {
		client.DriverLicense = *request.DriverLicense
	}
	if request.EmergencyContact != nil {
		client.EmergencyContact = *request.EmergencyContact
	}
	if request.Notes != nil {
		client.Notes = *request.Notes
	}

	if err := db.Save(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update client"})
		return
	}

	c.JSON(http.StatusOK, clientResponse(client))
}

func seedTestData() {
	clients := []models.Client{
		{
			ClientUid:     "5f6dd2cb-95a2-4f04-b0a5-5d0c9f5ea9d3",
			FullName:      "Ivan Petrov",
			Email:         "ivan.petrov@example.com",
			Phone:         "+7 915 123-45-67",
			DriverLicense: "77 12 345678",
		},
		{
			ClientUid:     "9d2ef9a7-7f05-4e44-9771-fd1b44e0d3a1",
			FullName:      "Maria Sidorova",
			Email:         "maria.sidorova@example.com",
			Phone:         "+7 926 765-43-21",
			DriverLicense: "78 98 765432",
		},
	}

	for _, client := range clients {
		var existing models.Client
		if err := db.Where("client_uid = ?", client.ClientUid).First(&existing).Error; err != nil {
			db.Create(&client)
		}
	}
	log.Println("Clients test data seeded")
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
		"details": "Host localhost:8050 is active",
	})
}
