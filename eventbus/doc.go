/*
Package eventbus is a logged event bus on top of a base handler registry.

Every dispatch posts exactly one LogRecord to the configured Sink, optionally passed through a
Scrubber first. Four trigger strategies differ in how handler results are aggregated:

	Trigger         invoke every handler, no results
	TriggerFirst    invoke until the first handler matches, return its value
	TriggerResults  invoke every handler, return their values in registration order
	TriggerThen     invoke every handler, join value-or-promise results into one promise

TriggerDefer schedules a Trigger for a later turn of the bus scheduler.

Trigger, TriggerFirst and TriggerResults record their params before handlers run. Only
TriggerFirst and TriggerResults carry results, because TriggerThen posts before its handlers run.
*/
package eventbus
