// Package config loads environment-based configuration into tagged structs.
//
// Configuration is declared as plain structs with `env` tags and loaded
// through the generic Load function. A .env file, if present in the working
// directory, is read once before the first load so local development does not
// require exporting variables manually.
//
//	type Config struct {
//		BaseDomain string        `env:"TENANT_BASE_DOMAIN,required"`
//		CacheTTL   time.Duration `env:"TENANT_CACHE_TTL" envDefault:"300s"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		// handle error
//	}
//
// Each struct type is parsed exactly once per process; repeated loads of the
// same type return the cached value, so packages can load their own config
// independently without coordinating startup order.
package config
