// Package fvecs reads and writes SIFT .fvecs vector datasets.
//
// Each record is a little-endian int32 dimension followed by that many
// little-endian float32 components. All records in a file share one
// dimension, so a file holding n vectors of dimension d is n*(4+4d) bytes.
package fvecs
