package model

import "time"

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "SCHEDULED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
)

// Appointment is a booked slot for a customer. Read-only in this service.
type Appointment struct {
	ID             string            `json:"id"`
	OrganizationID string            `json:"organizationId"`
	CustomerID     string            `json:"customerId"`
	Title          string            `json:"title"`
	StartTime      time.Time         `json:"startTime"`
	EndTime        time.Time         `json:"endTime"`
	Status         AppointmentStatus `json:"status"`
}

// CustomerDetail is a customer with their most recent appointments.
type CustomerDetail struct {
	Customer
	Appointments []Appointment `json:"appointments"`
}
