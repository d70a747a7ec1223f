package tier

// Config declares the per-tier limit table as environment configuration.
// Defaults mirror the published pricing page; -1 means unlimited.
type Config struct {
	FreeUsers        int64 `env:"TIER_FREE_USERS" envDefault:"2"`
	FreeTransactions int64 `env:"TIER_FREE_TRANSACTIONS" envDefault:"500"`
	FreeRPM          int   `env:"TIER_FREE_REQUESTS_PER_MINUTE" envDefault:"20"`

	StarterUsers        int64 `env:"TIER_STARTER_USERS" envDefault:"5"`
	StarterTransactions int64 `env:"TIER_STARTER_TRANSACTIONS" envDefault:"5000"`
	StarterRPM          int   `env:"TIER_STARTER_REQUESTS_PER_MINUTE" envDefault:"60"`

	ProfessionalUsers        int64 `env:"TIER_PROFESSIONAL_USERS" envDefault:"25"`
	ProfessionalTransactions int64 `env:"TIER_PROFESSIONAL_TRANSACTIONS" envDefault:"50000"`
	ProfessionalRPM          int   `env:"TIER_PROFESSIONAL_REQUESTS_PER_MINUTE" envDefault:"300"`

	EnterpriseUsers        int64 `env:"TIER_ENTERPRISE_USERS" envDefault:"-1"`
	EnterpriseTransactions int64 `env:"TIER_ENTERPRISE_TRANSACTIONS" envDefault:"-1"`
	EnterpriseRPM          int   `env:"TIER_ENTERPRISE_REQUESTS_PER_MINUTE" envDefault:"1000"`
}

// NewTable builds the limit table from configuration.
func NewTable(cfg Config) Table {
	return Table{
		Free: {
			Users:                cfg.FreeUsers,
			TransactionsPerMonth: cfg.FreeTransactions,
			RequestsPerMinute:    cfg.FreeRPM,
		},
		Starter: {
			Users:                cfg.StarterUsers,
			TransactionsPerMonth: cfg.StarterTransactions,
			RequestsPerMinute:    cfg.StarterRPM,
		},
		Professional: {
			Users:                cfg.ProfessionalUsers,
			TransactionsPerMonth: cfg.ProfessionalTransactions,
			RequestsPerMinute:    cfg.ProfessionalRPM,
		},
		Enterprise: {
			Users:                cfg.EnterpriseUsers,
			TransactionsPerMonth: cfg.EnterpriseTransactions,
			RequestsPerMinute:    cfg.EnterpriseRPM,
		},
	}
}
