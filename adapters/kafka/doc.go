// Package kafka provides an event log sink that produces JSON records to a Kafka topic.
//
// NewWithKgo wires a franz-go client; any other client can be used through the Writer interface.
package kafka
