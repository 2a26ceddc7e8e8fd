package interfaces

// -----------------------------------------------------------------------------
// IDataExchanger defines the dashboard server as seen by the rest of the process.
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes a payload to every connected session.
	Broadcast(payload interface{})

	// -----------------------------------------------------------------------------
	// InvalidateSeason tells the sessions showing season to reload it.
	InvalidateSeason(season int)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
