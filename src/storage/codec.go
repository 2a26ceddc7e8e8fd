package storage

import (
	"encoding/json"
	"fmt"

	"nba-stats-explorer/src/models"
)

// encodeTable serializes a season table for the SQL and redis stores.
func encodeTable(table *models.MPlayerSeasonTable) ([]byte, error) {
	payload, err := json.Marshal(table)
	if err != nil {
		return nil, fmt.Errorf("failed to encode season %d: %w", table.Season, err)
	}
	return payload, nil
}

func decodeTable(payload []byte) (*models.MPlayerSeasonTable, error) {
	var table models.MPlayerSeasonTable
	if err := json.Unmarshal(payload, &table); err != nil {
		return nil, fmt.Errorf("failed to decode season table: %w", err)
	}
	return &table, nil
}
