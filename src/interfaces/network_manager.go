package interfaces

import "context"

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for outbound HTTP requests.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a single GET request to the specified URL with parameters.
	// Returns the response body as bytes or an error; nothing is retried.
	Get(ctx context.Context, url string, params map[string]string) ([]byte, error)
}
