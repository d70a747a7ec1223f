// Package redis provides connection setup and health checking for the Redis
// instances backing the tenant cache, rate limiter, and usage meter.
package redis
