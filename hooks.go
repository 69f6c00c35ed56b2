package redisbasic

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; they run inline with the
// store calls. Wrap with hooks/async when an implementation may block.
type Hooks interface {
	// A recorded operation failed to update its bookkeeping.
	// stage ∈ {"count", "inputs", "outputs"}. A failure after "count"
	// leaves the counter ahead of the history lists.
	BookkeepingError(op, stage string, err error)

	// A stored value was found but the decode function rejected it.
	DecodeFailed(key string, err error)

	// GetPage served url from the store; count is the access counter after
	// this request.
	PageHit(url string, count int64)

	// GetPage fetched url upstream; status is the HTTP status code.
	PageMiss(url string, status int, count int64)

	// The upstream fetch failed; nothing was cached or counted.
	PageFetchError(url string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) BookkeepingError(string, string, error) {}
func (NopHooks) DecodeFailed(string, error)             {}
func (NopHooks) PageHit(string, int64)                  {}
func (NopHooks) PageMiss(string, int, int64)            {}
func (NopHooks) PageFetchError(string, error)           {}
