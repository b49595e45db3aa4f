// Package retry polls a one-shot check until it passes or the attempt budget
// runs out.
//
// The budget is a polling timeout, not a network timeout: a check that never
// passes costs roughly Attempts × (Interval + the check's own duration).
package retry
