// Package scrub provides ready-made event scrubbers for redacting log records before they
// leave the process.
package scrub
