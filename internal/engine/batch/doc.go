// Package batch runs a per-item function over a slice in fixed-size batches.
//
// Items inside a batch run concurrently up to a worker limit; batches run one
// after another so memory and in-flight reference lookups stay bounded. Item
// failures are collected per item and never abort the remaining items.
// Context cancellation stops processing between items.
package batch
