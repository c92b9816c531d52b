package verifier

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/shieldpool/proof-gateway/engine"
	"github.com/shieldpool/proof-gateway/types"
	"github.com/sirupsen/logrus"
)

// EngineError is a semantic failure from the verification engine: the call
// completed but the engine could not evaluate the artifact (bad vkey hash,
// undecodable proof bytes, unknown mode).
type EngineError struct {
	Cause string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("verification engine error: %s", e.Cause)
}

// VerifierClient submits proof artifacts to the external verification
// engine. The validity flag in the result comes from the engine alone; the
// client never substitutes a local guess, so re-verifying the same artifact
// always yields the same answer.
type VerifierClient struct {
	engine *engine.Client
	log    *logrus.Logger
}

// NewVerifierClient creates a VerifierClient for the engine at endpoint.
func NewVerifierClient(endpoint string, log *logrus.Logger) *VerifierClient {
	return &VerifierClient{
		engine: engine.NewClient(endpoint, log),
		log:    log,
	}
}

type verifyBody struct {
	Proof        []byte `json:"proof"`
	PublicInputs []byte `json:"public_inputs"`
	VKeyHash     string `json:"vkey_hash"`
	Mode         string `json:"mode"`
}

type verifyData struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Verify checks artifact against the verification engine. When publicInputs
// is non-nil it replaces the artifact's self-reported copy, so callers can
// supply inputs they obtained independently.
func (v *VerifierClient) Verify(ctx context.Context, artifact *types.ProofArtifact, publicInputs []byte) (*types.VerificationResult, error) {
	inputs := artifact.PublicInputs
	if publicInputs != nil {
		inputs = publicInputs
	}

	body := verifyBody{
		Proof:        artifact.Proof,
		PublicInputs: inputs,
		VKeyHash:     artifact.VKeyHash,
		Mode:         string(artifact.Mode),
	}

	var data verifyData
	if err := v.engine.Post(ctx, "/api/v1/proof/verify", body, &data); err != nil {
		var rej *engine.Rejection
		if errors.As(err, &rej) {
			return nil, &EngineError{Cause: rej.Error()}
		}
		return nil, err
	}

	id := artifact.ID
	if id == "" {
		id = types.ArtifactID(artifact.Proof, inputs)
	}

	result := &types.VerificationResult{
		ArtifactID: id,
		Valid:      data.Valid,
		Reason:     data.Reason,
	}
	v.log.Infof("Verified proof %s: valid=%t", id, data.Valid)
	return result, nil
}

// Ping checks that the verification engine is reachable.
func (v *VerifierClient) Ping(ctx context.Context) error {
	return v.engine.Ping(ctx)
}

// DecodePublicInputs parses the caller-supplied hex form of public inputs.
func DecodePublicInputs(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("public_inputs is not valid hex: %w", err)
	}
	return b, nil
}
