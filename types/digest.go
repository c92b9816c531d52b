package types

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// ArtifactID derives the stable identifier of an artifact from its proof and
// public input bytes. The same artifact always hashes to the same id.
func ArtifactID(proof, publicInputs []byte) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(proof)
	h.Write(publicInputs)
	return "0x" + hex.EncodeToString(h.Sum(nil))
}
