package tier

// Tier is a subscription level with monotonically increasing limits.
type Tier string

const (
	Free         Tier = "free"
	Starter      Tier = "starter"
	Professional Tier = "professional"
	Enterprise   Tier = "enterprise"
)

// Unlimited marks a limit with no cap.
const Unlimited int64 = -1

var ranks = map[Tier]int{
	Free:         0,
	Starter:      1,
	Professional: 2,
	Enterprise:   3,
}

// Rank returns the tier's position in the ordering. Unknown tiers rank
// below Free.
func (t Tier) Rank() int {
	if r, ok := ranks[t]; ok {
		return r
	}
	return -1
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	_, ok := ranks[t]
	return ok
}

// AtLeast reports whether t ranks at or above other.
func (t Tier) AtLeast(other Tier) bool {
	return t.Rank() >= other.Rank()
}

// Limits holds the numeric caps attached to a tier. Unlimited (-1) disables
// a cap.
type Limits struct {
	Users                int64 `json:"users"`
	TransactionsPerMonth int64 `json:"transactions_per_month"`
	RequestsPerMinute    int   `json:"requests_per_minute"`
}

// Table maps each tier to its limits.
type Table map[Tier]Limits

// For returns the limits for t, falling back to the Free tier for unknown
// values so a corrupted tenant record degrades to the most restrictive caps.
func (tb Table) For(t Tier) Limits {
	if l, ok := tb[t]; ok {
		return l
	}
	return tb[Free]
}
