// Package http exposes the reservation services over a JSON REST API.
// Handlers translate wire payloads to service parameters, delegate all
// business rules to the application layer, and localize errors for the
// Spanish speaking operators of the booking desk.
package http
