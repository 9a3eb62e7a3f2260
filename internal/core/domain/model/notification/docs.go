// Package notification models the customer-facing delay notifications that
// the notification-delivery step produces.
//
// A Notification is written once per (workflow run, channel). Its idempotency
// key ties it to that run and channel, so a send activity that is executed
// again after the provider accepted the message finds the existing record
// instead of notifying the customer a second time.
//
// Status transitions:
//
//	pending ──▶ sent
//	   │
//	   ├──────▶ failed
//	   └──────▶ skipped
package notification
