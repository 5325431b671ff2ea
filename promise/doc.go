/*
Package promise models a value that may not be available yet. Handlers dispatched through
TriggerThen may return a *Promise instead of a plain value; All joins a mix of both into a
single aggregate that resolves in input order or rejects with the first observed failure.
*/
package promise
