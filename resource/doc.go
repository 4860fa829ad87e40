// Package resource provides process-wide resource limits shared by insert
// buffers: a hard cap on total buffered memory and a token-bucket limiter
// for flush IO bandwidth.
package resource
