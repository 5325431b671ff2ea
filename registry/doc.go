/*
Package registry is the in-memory base publish/subscribe registry used by the event bus.
It keeps handlers per event name in registration order and supports persistent, once and
owner-scoped registrations.
*/
package registry
