// Package watch drives carbonwatch's watch loop. It runs one pass
// immediately, then blocks on debounced batches of file-system changes in
// the code directory and runs a pass for each batch until interrupted.
package watch
