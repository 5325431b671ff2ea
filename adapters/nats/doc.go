// Package nats provides an event log sink that publishes JSON records to NATS.
//
// Records are published on "<prefix>.<bus>.<event>" with the level and record identity carried
// as message headers. Dots, wildcards and whitespace in bus and event names are replaced by "_"
// so each name stays a single subject token.
package nats
