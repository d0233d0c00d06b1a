// Package schedule holds the pure temporal logic of the receive-plan engine:
// closed-interval overlap testing, effective-window computation for plans
// whose execution started late, and advisory deadline warnings.
//
// Nothing in this package performs I/O or mutates shared state; every
// function may run with unbounded parallelism.
package schedule
