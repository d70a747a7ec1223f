// Package tier defines the ordered subscription tiers and their numeric
// limits. The limit table is configuration, loaded from the environment, so
// resolution and rate limiting logic never hardcodes tier numbers.
package tier
