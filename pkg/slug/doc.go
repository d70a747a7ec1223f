// Package slug validates and derives tenant slugs. A slug is the tenant's
// URL-safe handle: it appears as the subdomain label, in explicit tenant
// headers, and as the unique key in the registry, so every producer and
// consumer must agree on one shape. That shape is DNS-label-like: lowercase
// alphanumerics and hyphens, starting with an alphanumeric.
package slug
