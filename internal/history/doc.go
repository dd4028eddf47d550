// Package history keeps a SQLite ledger of dispatched runs and the outcome of
// every extraction job, so failed tracks can be found after the terminal
// output is gone.
package history
