// Package alignment pairs source-language captions with target-language
// captions by timestamp overlap.
//
// Align makes a single greedy pass over the source track. A cursor into the
// target track only moves forward: once a target caption is attached to a
// source caption it is never offered again. Every source caption yields
// exactly one Pair, matched or not, in source order.
package alignment
