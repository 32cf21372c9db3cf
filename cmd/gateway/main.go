package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"rentacar/pkg/circuitbreaker"
	"rentacar/pkg/queue"
)

var (
	fleetServiceURL   string
	clientsServiceURL string
	bookingServiceURL string
	httpClient        *http.Client
	fleetBreaker      *circuitbreaker.CircuitBreaker
	retryQueue        *queue.Queue
)

func main() {
	fleetServiceURL = getEnv("FLEET_SERVICE_URL", "http://localhost:8060")
	clientsServiceURL = getEnv("CLIENTS_SERVICE_URL", "http://localhost:8050")
	bookingServiceURL = getEnv("BOOKING_SERVICE_URL", "http://localhost:8070")

	httpClient = &http.Client{
		Timeout: 10 * time.Second,
	}
	fleetBreaker = circuitbreaker.New(3, 30*time.Second)
	retryQueue = queue.NewQueue()

	go retryWorker()

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/api/v1/cars", getCarsHandler)
	r.GET("/api/v1/cars/stats", getCarStatsHandler)
	r.GET("/api/v1/cars/:carUid", getCarHandler)
	r.POST("/api/v1/cars", createCarHandler)

	r.GET("/api/v1/clients/:clientUid", getClientHandler)
	r.POST("/api/v1/clients", createClientHandler)
	r.PUT("/api/v1/clients/:clientUid", updateClientHandler)

	r.GET("/api/v1/reservations", getReservationsHandler)
	r.POST("/api/v1/reservations", createReservationHandler)
	r.POST("/api/v1/reservations/check-availability", checkAvailabilityHandler)
	r.GET("/api/v1/reservations/stats", getDashboardHandler)
	r.GET("/api/v1/reservations/calendar", getCalendarHandler)
	r.GET("/api/v1/reservations/:reservationUid", getReservationHandler)
	r.PUT("/api/v1/reservations/:reservationUid", updateReservationHandler)
	r.DELETE("/api/v1/reservations/:reservationUid", deleteReservationHandler)

	r.GET("/manage/health", healthCheck)

	log.Println("Gateway service starting on port 8080")
	r.Run(":8080")
}

// proxyRequest forwards the call as-is and relays the downstream response,
// preserving its status code.
func proxyRequest(c *gin.Context, method, url string, body []byte) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewBuffer(body)
	}
	request, err := http.NewRequest(method, url, reader)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create a request"})
		return
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	response, err := httpClient.Do(request)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to perform the request"})
		return
	}
	defer response.Body.Close()
	data, err := io.ReadAll(response.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read the response"})
		return
	}
	c.Data(response.StatusCode, "application/json", data)
}

func withQuery(c *gin.Context, url string) string {
	params := c.Request.URL.Query().Encode()
	if params != "" {
		url += "?" + params
	}
	return url
}

func getCarsHandler(c *gin.Context) {
	proxyRequest(c, "GET", withQuery(c, fleetServiceURL+"/api/v1/cars"), nil)
}

func getCarStatsHandler(c *gin.Context) {
	proxyRequest(c, "GET", fleetServiceURL+"/api/v1/cars/stats", nil)
}

func getCarHandler(c *gin.Context) {
	carUid := c.Param("carUid")
	proxyRequest(c, "GET", fmt.Sprintf("%s/api/v1/cars/%s", fleetServiceURL, carUid), nil)
}

func createCarHandler(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	proxyRequest(c, "POST", fleetServiceURL+"/api/v1/cars", body)
}

func getClientHandler(c *gin.Context) {
	clientUid := c.Param("clientUid")
	proxyRequest(c, "GET", fmt.Sprintf("%s/api/v1/clients/%s", clientsServiceURL, clientUid), nil)
}

func createClientHandler(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	proxyRequest(c, "POST", clientsServiceURL+"/api/v1/clients", body)
}

func updateClientHandler(c *gin.Context) {
	clientUid := c.Param("clientUid")
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	proxyRequest(c, "PUT", fmt.Sprintf("%s/api/v1/clients/%s", clientsServiceURL, clientUid), body)
}

func getReservationsHandler(c *gin.Context) {
	url := withQuery(c, bookingServiceURL+"/api/v1/reservations")
	request, err := http.NewRequest("GET", url, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create the request"})
		return
	}
	response, err := httpClient.Do(request)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to perform the request"})
		return
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(response.Body)
		c.Data(response.StatusCode, "application/json", body)
		return
	}

	var page map[string]interface{}
	if err := json.NewDecoder(response.Body).Decode(&page); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to decode the response"})
		return
	}

	items, _ := page["items"].([]interface{})
	enriched := make([]map[string]interface{}, len(items))
	for i, item := range items {
		res, _ := item.(map[string]interface{})
		enriched[i] = enrichReservation(res)
	}
	page["items"] = enriched
	c.JSON(http.StatusOK, page)
}

func getReservationHandler(c *gin.Context) {
	reservationUid := c.Param("reservationUid")
	url := fmt.Sprintf("%s/api/v1/reservations/%s", bookingServiceURL, reservationUid)
	request, err := http.NewRequest("GET", url, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create the request"})
		return
	}
	response, err := httpClient.Do(request)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to perform the request"})
		return
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(response.Body)
		c.Data(response.StatusCode, "application/json", body)
		return
	}

	var res map[string]interface{}
	if err := json.NewDecoder(response.Body).Decode(&res); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to decode the response"})
		return
	}
	c.JSON(http.StatusOK, enrichReservation(res))
}

func createReservationHandler(c *gin.Context) {
	var request struct {
		ClientUid      string  `json:"clientUid" binding:"required"`
		CarUid         string  `json:"carUid" binding:"required"`
		StartDate      string  `json:"startDate" binding:"required"`
		EndDate        string  `json:"endDate" binding:"required"`
		Status         string  `json:"status"`
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

	carInfo := getCarInfo(request.CarUid)
	if carInfo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		return
	}
	if status, _ := carInfo["availabilityStatus"].(string); status == "maintenance" {
		c.JSON(http.StatusConflict, gin.H{"error": "Car is under maintenance"})
		return
	}
	clientInfo := getClientInfo(request.ClientUid)
	if clientInfo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	// The rate the customer saw is captured here; later price list edits
	// must not change the total of this reservation.
	dailyRate, _ := carInfo["pricePerDay"].(float64)

	body, err := json.Marshal(map[string]interface{}{
		"clientUid":      request.ClientUid,
		"carUid":         request.CarUid,
		"dailyRate":      dailyRate,
		"startDate":      request.StartDate,
		"endDate":        request.EndDate,
		"status":         request.Status,
		"pickupLocation": request.PickupLocation,
		"returnLocation": request.ReturnLocation,
		"depositAmount":  request.DepositAmount,
		"notes":          request.Notes,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create request body"})
		return
	}

	req, err := http.NewRequest("POST", bookingServiceURL+"/api/v1/reservations", bytes.NewBuffer(body))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create the request"})
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpClient.Do(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to perform the request"})
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		rbody, _ := io.ReadAll(resp.Body)
		c.Data(resp.StatusCode, "application/json", rbody)
		return
	}

	var reservation map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&reservation); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to decode the response"})
		return
	}

	reservation["car"] = carInfo
	reservation["client"] = clientInfo
	c.JSON(http.StatusCreated, reservation)
}

func checkAvailabilityHandler(c *gin.Context) {
	var request struct {
		CarUid                string `json:"carUid" binding:"required"`
		StartDate             string `json:"startDate" binding:"required"`
		EndDate               string `json:"endDate" binding:"required"`
		ExcludeReservationUid string `json:"excludeReservationUid"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	carInfo := getCarInfo(request.CarUid)
	if carInfo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		return
	}
	dailyRate, _ := carInfo["pricePerDay"].(float64)

	body, err := json.Marshal(map[string]interface{}{
		"carUid":                request.CarUid,
		"dailyRate":             dailyRate,
		"startDate":             request.StartDate,
		"endDate":               request.EndDate,
		"excludeReservationUid": request.ExcludeReservationUid,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create request body"})
		return
	}
	proxyRequest(c, "POST", bookingServiceURL+"/api/v1/reservations/check-availability", body)
}

func updateReservationHandler(c *gin.Context) {
	reservationUid := c.Param("reservationUid")
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	url := fmt.Sprintf("%s/api/v1/reservations/%s", bookingServiceURL, reservationUid)
	req, err := http.NewRequest("PUT", url, bytes.NewBuffer(body))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create the request"})
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpClient.Do(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to perform the request"})
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		rbody, _ := io.ReadAll(resp.Body)
		c.Data(resp.StatusCode, "application/json", rbody)
		return
	}

	var reservation map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&reservation); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to decode the response"})
		return
	}

	carEffect, _ := reservation["carEffect"].(string)
	if carEffect != "" {
		carUid, _ := reservation["carUid"].(string)
		clientUid, _ := reservation["clientUid"].(string)
		applyCarEffect(carEffect, carUid, clientUid)
	}

	c.JSON(http.StatusOK, reservation)
}

func deleteReservationHandler(c *gin.Context) {
	reservationUid := c.Param("reservationUid")
	proxyRequest(c, "DELETE", fmt.Sprintf("%s/api/v1/reservations/%s", bookingServiceURL, reservationUid), nil)
}

func getCalendarHandler(c *gin.Context) {
	url := withQuery(c, bookingServiceURL+"/api/v1/reservations/calendar")
	request, err := http.NewRequest("GET", url, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create the request"})
		return
	}
	response, err := httpClient.Do(request)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to perform the request"})
		return
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(response.Body)
		c.Data(response.StatusCode, "application/json", body)
		return
	}

	var calendar map[string]interface{}
	if err := json.NewDecoder(response.Body).Decode(&calendar); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to decode the response"})
		return
	}

	// Attach display labels so the frontend can render events directly.
	events, _ := calendar["events"].([]interface{})
	for _, item := range events {
		event, _ := item.(map[string]interface{})
		if event == nil {
			continue
		}
		carUid, _ := event["carUid"].(string)
		if carInfo := getCarInfo(carUid); carInfo != nil {
			event["carLabel"] = fmt.Sprintf("%v %v", carInfo["brand"], carInfo["model"])
		}
		clientUid, _ := event["clientUid"].(string)
		if clientInfo := getClientInfo(clientUid); clientInfo != nil {
			event["clientLabel"] = clientInfo["fullName"]
		}
	}
	c.JSON(http.StatusOK, calendar)
}

// getDashboardHandler merges the booking summary with the fleet counters so
// the frontend needs a single call.
func getDashboardHandler(c *gin.Context) {
	url := withQuery(c, bookingServiceURL+"/api/v1/reservations/stats")
	request, err := http.NewRequest("GET", url, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create the request"})
		return
	}
	response, err := httpClient.Do(request)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to perform the request"})
		return
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(response.Body)
		c.Data(response.StatusCode, "application/json", body)
		return
	}

	var stats map[string]interface{}
	if err := json.NewDecoder(response.Body).Decode(&stats); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to decode the response"})
		return
	}

	if fleetStats := getFleetStats(); fleetStats != nil {
		stats["fleet"] = fleetStats
	}
	c.JSON(http.StatusOK, stats)
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "UP",
		"details": "Host localhost:8080 is active",
	})
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func enrichReservation(res map[string]interface{}) map[string]interface{} {
	if res == nil {
		return nil
	}
	carUid, _ := res["carUid"].(string)
	clientUid, _ := res["clientUid"].(string)
	if carInfo := getCarInfo(carUid); carInfo != nil {
		res["car"] = carInfo
	}
	if clientInfo := getClientInfo(clientUid); clientInfo != nil {
		res["client"] = clientInfo
	}
	return res
}

func getCarInfo(carUid string) map[string]interface{} {
	url := fmt.Sprintf("%s/api/v1/cars/%s", fleetServiceURL, carUid)
	request, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil
	}
	response, err := httpClient.Do(request)
	if err != nil {
		return nil
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil
	}
	var car map[string]interface{}
	if err := json.NewDecoder(response.Body).Decode(&car); err != nil {
		return nil
	}
	return car
}

func getClientInfo(clientUid string) map[string]interface{} {
	url := fmt.Sprintf("%s/api/v1/clients/%s", clientsServiceURL, clientUid)
	request, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil
	}
	response, err := httpClient.Do(request)
	if err != nil {
		return nil
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil
	}
	var client map[string]interface{}
	if err := json.NewDecoder(response.Body).Decode(&client); err != nil {
		return nil
	}
	return client
}

func getFleetStats() map[string]interface{} {
	request, err := http.NewRequest("GET", fleetServiceURL+"/api/v1/cars/stats", nil)
	if err != nil {
		return nil
	}
	response, err := httpClient.Do(request)
	if err != nil {
		return nil
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil
	}
	var stats map[string]interface{}
	if err := json.NewDecoder(response.Body).Decode(&stats); err != nil {
		return nil
	}
	return stats
}

// applyCarEffect flips the car status in the fleet service. The reservation
// is already committed at this point, so a fleet outage must not fail the
// request: the flip is queued and replayed until it lands.
func applyCarEffect(action, carUid, clientUid string) {
	err := fleetBreaker.Execute(
		func() error { return sendCarAction(action, carUid, clientUid) },
		func() error { return circuitbreaker.ErrOpen },
	)
	if err != nil {
		log.Printf("Failed to %s car %s, queueing retry: %v", action, carUid, err)
		retryQueue.Enqueue(&queue.Task{
			CarUid:      carUid,
			ClientUid:   clientUid,
			Action:      action,
			RetryAt:     time.Now().Add(10 * time.Second),
			Attempts:    0,
			MaxAttempts: 10,
		})
	}
}

func sendCarAction(action, carUid, clientUid string) error {
	url := fmt.Sprintf("%s/api/v1/cars/%s/%s", fleetServiceURL, carUid, action)
	var body io.Reader
	if action == "rent" {
		data, err := json.Marshal(map[string]string{"clientUid": clientUid})
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(data)
	}
	req, err := http.NewRequest("POST", url, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("failed to %s car: status %d", action, resp.StatusCode)
	}
	return nil
}

// retryWorker drains queued car-status flips with exponential backoff.
func retryWorker() {
	for {
		time.Sleep(5 * time.Second)
		drainRetryQueue()
	}
}

// drainRetryQueue replays every task whose retry time has come. Failed tasks
// are requeued with a longer delay, so the loop always terminates.
func drainRetryQueue() {
	for {
		task := retryQueue.Dequeue()
		if task == nil {
			return
		}
		if err := sendCarAction(task.Action, task.CarUid, task.ClientUid); err != nil {
			task.Attempts++
			if task.Attempts >= task.MaxAttempts {
				log.Printf("Giving up on %s for car %s after %d attempts", task.Action, task.CarUid, task.Attempts)
				continue
			}
			task.RetryAt = time.Now().Add(time.Duration(task.Attempts*10) * time.Second)
			retryQueue.Enqueue(task)
			continue
		}
		log.Printf("Replayed %s for car %s", task.Action, task.CarUid)
	}
}
