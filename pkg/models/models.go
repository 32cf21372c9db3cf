package models

import (
	"time"
)

type Car struct {
	ID                 uint    `gorm:"primaryKey"`
	CarUid             string  `gorm:"type:uuid;uniqueIndex;not null"`
	Brand              string  `gorm:"size:80;not null"`
	Model              string  `gorm:"size:80;not null"`
	Year               int     `gorm:"not null"`
	LicensePlate       string  `gorm:"size:20;uniqueIndex"`
	PricePerDay        float64 `gorm:"not null;check:price_per_day > 0"`
	AvailabilityStatus string  `gorm:"size:20;not null;default:'available'"` // available, rented, maintenance
	FuelType           string  `gorm:"size:20"`
	Transmission       string  `gorm:"size:20"`
	Seats              int
	Color              string `gorm:"size:40"`
	Mileage            int
	Description        string
	CurrentRenterUid   string `gorm:"type:uuid"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Client struct {
	ID               uint   `gorm:"primaryKey"`
	ClientUid        string `gorm:"type:uuid;uniqueIndex;not null"`
	FullName         string `gorm:"size:120;not null"`
	Email            string `gorm:"size:120"`
	Phone            string `gorm:"size:40"`
	Address          string
	DriverLicense    string `gorm:"size:40"`
	EmergencyContact string `gorm:"size:120"`
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Reservation struct {
	ID             uint      `gorm:"primaryKey"`
	ReservationUid string    `gorm:"type:uuid;uniqueIndex;not null"`
	CarUid         string    `gorm:"type:uuid;not null;index"`
	ClientUid      string    `gorm:"type:uuid;not null;index"`
	StartDate      time.Time `gorm:"not null"`
	EndDate        time.Time `gorm:"not null"`
	TotalDays      int       `gorm:"not null"`
	DailyRate      float64   `gorm:"not null"` // Rate captured from the car when the reservation is created
	TotalAmount    float64   `gorm:"not null"`
	Status         string    `gorm:"size:20;not null;index"`
	PaymentStatus  string    `gorm:"size:20;not null;default:'unpaid'"`
	PickupLocation string
	ReturnLocation string
	DepositAmount  float64
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
