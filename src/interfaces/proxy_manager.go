package interfaces

// -----------------------------------------------------------------------------
// IProxyManager is what the network manager needs from proxy handling:
// the outbound proxy, a User-Agent, and a way to move on when the season
// site blocks a request.
// -----------------------------------------------------------------------------

type IProxyManager interface {

	// GetCurrentProxy returns the proxy URL to use, or "" for a direct
	// connection when no proxies are configured.
	GetCurrentProxy() (string, error)

	// -----------------------------------------------------------------------------

	// RotateProxy moves to the next proxy in the list.
	RotateProxy()

	// -----------------------------------------------------------------------------

	HasProxies() bool

	// -----------------------------------------------------------------------------

	// GetUserAgent returns the configured agent, or a random browser agent
	// when none is set.
	GetUserAgent() string

	// -----------------------------------------------------------------------------

	// RefreshProxies downloads the proxy list page, reads the ip/port
	// table with goquery and replaces the list with up to 50 shuffled
	// entries. It returns how many were kept; a page with no usable rows
	// is an error and leaves the current list untouched.
	RefreshProxies() (int, error)
}
