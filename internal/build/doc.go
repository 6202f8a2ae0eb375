// Package build runs course conversions.
//
// A Batch loads course exports, registers every course in a shared corpus so
// that cross-course links resolve, then converts courses in parallel with a
// bounded worker pool. Every course owns its table, rewriter and converter;
// the only state shared between workers is the read-only cross-course lookup.
//
// Failures are caught per course and reported in the Summary. One broken
// course never aborts its siblings.
package build
