// Package benchmark measures packing strategies over sweeps of item counts.
// For every item count it draws random item sets, packs each set with every
// requested strategy under a wall-clock timer, and reports mean execution
// time, bin count and utilization. The exact solver is skipped for item
// counts it cannot accept.
package benchmark
