// Package mmap provides read-only memory mapping for segment file reads.
package mmap
