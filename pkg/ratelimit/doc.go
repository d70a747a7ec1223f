// Package ratelimit enforces per-tenant request ceilings with a sliding
// window log.
//
// The algorithm keeps one timestamped entry per admitted request. A check
// atomically prunes entries older than the window, counts survivors, and
// admits (recording a new entry) only when the count is below the limit.
// Executing prune-count-admit as one atomic store operation is what prevents
// two concurrent requests from both observing "count < limit" and both being
// admitted past the ceiling.
//
// Two stores are provided: a Redis store whose check runs as a single Lua
// script (the production, multi-instance path) and an in-memory store for
// tests and single-node deployments.
//
// The tenant middleware wires the limiter to tier limits and answers with
// X-RateLimit-Limit, X-RateLimit-Remaining, and X-RateLimit-Reset headers,
// plus Retry-After on rejection. When the backing store is unreachable the
// limiter fails open — requests proceed unlimited and the event is logged at
// error level. That is a deliberate availability-over-strictness trade-off:
// a cache outage must not take down all traffic.
package ratelimit
