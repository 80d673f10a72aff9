// Package pipeline runs a chain of stages connected by channels.
//
// A pipeline starts with a root step producing items, goes through any number of steps
// (one-to-one, one-to-one-or-zero, one-to-many), each consumed by a bounded pool of
// workers, and ends with a sink. Every stage reports at most one error; the first error
// cancels the shared context so the other stages stop, and Run returns it.
//
// Pipeline options (see the measure and drawer packages) are told about every stage when
// it is added and about every item once it has been processed.
package pipeline
