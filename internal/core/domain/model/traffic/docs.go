// Package traffic holds the value objects describing a live traffic lookup
// for a delivery route: the delay against free-flow travel time and a
// qualitative condition bucket.
package traffic
