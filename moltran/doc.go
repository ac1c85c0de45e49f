// Package moltran provides trajectory-specific transform stages: geometric
// operations on coordinate and force arrays of shape (frames, atoms, dims).
//
// The numerics are deliberately small: a hand-rolled 3x3 symmetric
// eigensolver covers the principal-axes rotation, and featurization is plain
// pairwise distances. Anything heavier belongs outside the pipeline.
package moltran
