// Package delivery models the freight delivery as the delay-notification core
// sees it: a read-only snapshot of the route, the customer to notify, the
// monitoring flags and the delay threshold.
//
// Deliveries are created and edited elsewhere; the workflows only read them to
// decide whether to run, how often to re-run and whom to notify.
package delivery
