/*
Package events holds the contracts shared by the event bus, its registry, its scheduler and
its log sinks. It has no dependencies beyond the standard library so that adapters can depend
on it without pulling in the dispatch core.
*/
package events
