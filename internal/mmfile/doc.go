// Package mmfile maps trace files read-only into memory. Platforms without
// mmap read the whole file instead; callers see the same API either way.
package mmfile
