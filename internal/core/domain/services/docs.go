// Package services contains stateless domain services. The access policy is
// the single authorization decision point: it is evaluated before the state
// machine on every transition request and before every read of order-scoped
// data, including location pings and realtime subscriptions.
package services
