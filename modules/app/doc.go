// Package app composes the full tenancy stack from environment
// configuration: shared Redis connection for cache, rate limiting, and usage
// counters, the Mongo tenant registry, the resolver, and the request
// middleware chain. It is the batteries-included entry point; applications
// that need a different topology wire the packages themselves.
package app
