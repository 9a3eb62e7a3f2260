// Package services provides the pure domain decisions the delay-notification
// workflow makes between its side-effecting steps.
//
// Everything here is deterministic: the same inputs always yield the same
// outputs, no clock, random source or I/O is consulted. Workflow code calls
// these functions directly (not through activities), so replaying a workflow
// history reaches the same decisions and never re-triggers a notification.
//
// The package includes:
//   - EvaluateDelay: decides whether a measured delay warrants notifying the customer
//   - FallbackMessage: the templated message used when AI generation is unavailable
package services
