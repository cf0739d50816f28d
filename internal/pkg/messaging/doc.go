// Package messaging provides a broker-agnostic publisher.
//
// Business code depends on Publisher and stays independent from the
// underlying broker (Kafka, NATS, NSQ, Google Pub/Sub). The "none" driver
// drops every message so deployments without a broker need no branches.
package messaging
