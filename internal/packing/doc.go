// Package packing implements one-dimensional bin packing strategies: the
// Next Fit, First Fit and Best Fit placement heuristics, their
// size-sorted decreasing variants, and an exact branch-and-bound solver for
// small inputs. Every strategy returns the fill levels of the bins it opened,
// in opening order.
package packing
