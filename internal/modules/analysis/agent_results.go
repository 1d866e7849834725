package analysis

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aristath/analytics/internal/database"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AgentResultRepository stores raw producer payloads for audit.
// Rows are append-only in spirit: INSERT OR REPLACE on the natural key
// (symbol, agent_type, analysis_date) means a rerun on the same day
// supersedes that day's row, while history across days accumulates.
type AgentResultRepository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewAgentResultRepository creates a new agent result repository.
func NewAgentResultRepository(db *database.DB, log zerolog.Logger) *AgentResultRepository {
	return &AgentResultRepository{
		db:  db,
		log: log.With().Str("repository", "agent_results").Logger(),
	}
}

// Store writes a raw agent payload. executionTimeMS may be zero when the
// producer did not report timing. The freshness tag is read from the payload
// itself (data_freshness key), defaulting to UNKNOWN.
func (r *AgentResultRepository) Store(symbol, agentType string, payload map[string]any, executionTimeMS int, analysisDate time.Time) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal raw agent payload: %w", err)
	}

	freshness := "UNKNOWN"
	if f, ok := payload["data_freshness"].(string); ok && f != "" {
		freshness = f
	}

	var execMS interface{}
	if executionTimeMS > 0 {
		execMS = executionTimeMS
	}

	_, err = r.db.Exec(`
		INSERT OR REPLACE INTO agent_results
		(run_id, symbol, agent_type, analysis_date, raw_result, execution_time_ms, data_freshness)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), symbol, agentType, analysisDate.Format("2006-01-02"),
		string(raw), execMS, freshness)

	if err != nil {
		return fmt.Errorf("failed to store agent result: %w", err)
	}

	r.log.Debug().
		Str("symbol", symbol).
		Str("agent_type", agentType).
		Str("freshness", freshness).
		Msg("Stored raw agent result")

	return nil
}

// Count returns the number of audit rows for a symbol and agent type.
func (r *AgentResultRepository) Count(symbol, agentType string) (int, error) {
	var n int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM agent_results WHERE symbol = ? AND agent_type = ?
	`, symbol, agentType).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count agent results: %w", err)
	}
	return n, nil
}
