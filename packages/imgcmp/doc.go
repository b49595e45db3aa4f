// Package imgcmp compares screenshots.
//
// Tool runs the external imgcmp executable, which prints a similarity score
// between 0 and 100. Similarity implements the same scoring in-process and is
// what the bundled imgcmp command uses.
package imgcmp
