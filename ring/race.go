//go:build race

package ring

// RaceEnabled is true when the race detector is active. Tests use it to
// skip concurrent scenarios that are correct under the ring's
// acquire/release sequence protocol but appear as false-positive data
// races to a detector that only tracks explicit synchronization
// primitives, not cross-variable atomic orderings.
const RaceEnabled = true
