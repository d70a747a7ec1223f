// Package mongo provides connection setup and health checking for the MongoDB
// instance backing the tenant directory and the tenant-scoped data gateway.
package mongo
