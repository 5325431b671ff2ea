/*
Package rabbitmq provides an event log sink for RabbitMQ.
Records are published as JSON to a durable topic exchange through an auto-reconnect publisher,
with optional header propagation via an events.HeaderPropagator.
*/
package rabbitmq
