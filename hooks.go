package nsmap

// Reasons passed to Hooks.Purged and Hooks.Kept.
const (
	ReasonClose     = "close"
	ReasonCollected = "collected"
)

// Hooks lightweight callbacks for lifecycle and consistency events.
// Implementations MUST be cheap and non-blocking.
type Hooks interface {
	// The namespace was deleted on destruction. keys is how many were removed.
	Purged(token string, keys int, reason string)

	// Destruction ran on a persisted map; the store was left untouched.
	Kept(token string, reason string)

	// A map became unreachable without Close. The collector safety net runs next.
	Leaked(token string, persisted bool)

	// A key listed by a scan was gone when it was read (concurrent writer).
	ScanMiss(physicalKey string)

	// The safety-net purge failed; there is no caller to return the error to.
	CleanupError(token string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Purged(string, int, string) {}
func (NopHooks) Kept(string, string)        {}
func (NopHooks) Leaked(string, bool)        {}
func (NopHooks) ScanMiss(string)            {}
func (NopHooks) CleanupError(string, error) {}
