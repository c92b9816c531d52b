package types

// ProofMode tags how the proving engine produced an artifact.
type ProofMode string

const (
	ModeCompressed ProofMode = "compressed"
	ModeFull       ProofMode = "full"
)

// Valid reports whether m is one of the known proof modes.
func (m ProofMode) Valid() bool {
	return m == ModeCompressed || m == ModeFull
}

// ProofRequest is a validated withdrawal proof request.
type ProofRequest struct {
	UserAddress      string `json:"user_address"`
	PoolID           int64  `json:"pool_id"`
	UserBalance      int64  `json:"user_balance"`
	WithdrawalAmount int64  `json:"withdrawal_amount"`
	PoolLiquidity    int64  `json:"pool_liquidity"`
}

// ProofArtifact is the opaque output of the proving engine. Immutable once
// produced; the gateway assigns ID from the proof digest on receipt.
type ProofArtifact struct {
	ID           string    `json:"id,omitempty"`
	Proof        []byte    `json:"proof"`
	PublicInputs []byte    `json:"public_inputs"`
	VKeyHash     string    `json:"vkey_hash"`
	Mode         ProofMode `json:"mode"`
	Timestamp    int64     `json:"timestamp"` // unix milliseconds, engine-assigned
}

// VerificationResult is the outcome of one verification call. Never persisted.
type VerificationResult struct {
	ArtifactID string `json:"artifact_id"`
	Valid      bool   `json:"valid"`
	Reason     string `json:"reason,omitempty"`
}

// Health states reported by GET /api/health.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus is recomputed from live dependency pings on every check.
type HealthStatus struct {
	Status       string            `json:"status"`
	Timestamp    int64             `json:"timestamp"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies"`
}
