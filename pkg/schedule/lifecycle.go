package schedule

import (
	"errors"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

var (
	ErrInvalidStatus        = errors.New("unknown reservation status")
	ErrInvalidPaymentStatus = errors.New("unknown payment status")
	ErrInvalidTransition    = errors.New("status transition not allowed")
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Blocks reports whether a reservation in this status holds its time slot.
// Cancelled and completed reservations free the slot for new bookings.
func (s Status) Blocks() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusActive
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentUnpaid, PaymentPartial, PaymentPaid:
		return true
	}
	return false
}

// Statuses lists every lifecycle status, in workflow order.
func Statuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusActive, StatusCompleted, StatusCancelled}
}

// CarEffect is the fleet-side consequence of a status transition.
type CarEffect string

const (
	CarNoChange CarEffect = ""
	CarRent     CarEffect = "rent"
	CarRelease  CarEffect = "release"
)

// Policy selects which transitions are legal.
type Policy int

const (
	// AdminPolicy lets managers move a reservation between any two
	// statuses, matching the freedom the back office needs to correct
	// records (a completed reservation can be reopened).
	AdminPolicy Policy = iota
	// StrictPolicy walks the lifecycle graph only: pending -> confirmed ->
	// active -> completed, with cancellation from any non-terminal state.
	StrictPolicy
)

var strictTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusActive, StatusCancelled},
	StatusConfirmed: {StatusActive, StatusCancelled},
	StatusActive:    {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// Transition validates a status change under policy and reports the car
// side effect the caller must apply: entering active rents the car, leaving
// active hands it back. Moves between non-active statuses never touch the
// car because it was not held on this reservation's behalf.
func Transition(policy Policy, from, to Status) (CarEffect, error) {
	if !from.Valid() || !to.Valid() {
		return CarNoChange, ErrInvalidStatus
	}
	if from == to {
		return CarNoChange, nil
	}
	if policy == StrictPolicy {
		allowed := false
		for _, next := range strictTransitions[from] {
			if next == to {
				allowed = true
				break
			}
		}
		if !allowed {
			return CarNoChange, ErrInvalidTransition
		}
	}
	if to == StatusActive {
		return CarRent, nil
	}
	if from == StatusActive {
		return CarRelease, nil
	}
	return CarNoChange, nil
}
