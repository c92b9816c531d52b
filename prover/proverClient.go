package prover

import (
	"context"
	"errors"
	"fmt"

	"github.com/shieldpool/proof-gateway/engine"
	"github.com/shieldpool/proof-gateway/types"
	"github.com/sirupsen/logrus"
)

// GenerationError is a semantic refusal from the proving engine: the request
// reached the engine and it declined to produce a proof.
type GenerationError struct {
	Cause string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("proof generation failed: %s", e.Cause)
}

// ProverClient submits validated proof requests to the external proving
// engine. It never fabricates an artifact: on any engine failure the caller
// gets a typed error instead.
type ProverClient struct {
	engine *engine.Client
	log    *logrus.Logger
}

// NewProverClient creates a ProverClient for the engine at endpoint.
func NewProverClient(endpoint string, log *logrus.Logger) *ProverClient {
	return &ProverClient{
		engine: engine.NewClient(endpoint, log),
		log:    log,
	}
}

type generateBody struct {
	UserAddress      string `json:"user_address"`
	PoolID           int64  `json:"pool_id"`
	UserBalance      int64  `json:"user_balance"`
	WithdrawalAmount int64  `json:"withdrawal_amount"`
	PoolLiquidity    int64  `json:"pool_liquidity"`
}

// Generate asks the proving engine for a withdrawal proof. Blocking is
// bounded by ctx; cancellation is propagated to the engine call.
func (p *ProverClient) Generate(ctx context.Context, req *types.ProofRequest) (*types.ProofArtifact, error) {
	body := generateBody{
		UserAddress:      req.UserAddress,
		PoolID:           req.PoolID,
		UserBalance:      req.UserBalance,
		WithdrawalAmount: req.WithdrawalAmount,
		PoolLiquidity:    req.PoolLiquidity,
	}

	var artifact types.ProofArtifact
	if err := p.engine.Post(ctx, "/api/v1/proof/generate", body, &artifact); err != nil {
		var rej *engine.Rejection
		if errors.As(err, &rej) {
			return nil, &GenerationError{Cause: rej.Error()}
		}
		return nil, err
	}

	if len(artifact.Proof) == 0 || !artifact.Mode.Valid() {
		return nil, &GenerationError{Cause: "engine returned an incomplete artifact"}
	}

	artifact.ID = types.ArtifactID(artifact.Proof, artifact.PublicInputs)
	p.log.Infof("Generated proof %s for pool %d (mode %s)", artifact.ID, req.PoolID, artifact.Mode)
	return &artifact, nil
}

// Ping checks that the proving engine is reachable.
func (p *ProverClient) Ping(ctx context.Context) error {
	return p.engine.Ping(ctx)
}
