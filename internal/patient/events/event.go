// Package events publishes patient lifecycle facts to the message bus.
// Delivery is fire-and-forget: the bus being down never fails the
// operation that produced the event.
package events

// EventTypePatientCreated tags the patient-created lifecycle fact.
const EventTypePatientCreated = "PATIENT_CREATED"

// PatientEvent is the JSON payload produced to the patient topic.
type PatientEvent struct {
	PatientID string `json:"patientId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	EventType string `json:"eventType"`
}
