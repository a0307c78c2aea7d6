package workflows

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// RunIDPrefix prefixes every derived workflow ID.
const RunIDPrefix = "fix-issue-"

// runIDDigestLen is the number of hex characters kept from the digest. 20
// characters of SHA-256 make accidental collisions implausible while keeping
// the ID readable in workflow listings.
const runIDDigestLen = 20

// DeriveRunID derives the canonical workflow ID for a request. It is a pure
// function of the normalized request fields, so resubmitting the same
// request, before or after a crash, maps onto the same run and the substrate
// deduplicates it. Malformed requests are rejected before derivation.
func DeriveRunID(req IssueRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", NewValidationError("invalid fix request", err)
	}
	normalized := fmt.Sprintf("%s#%d", strings.ToLower(strings.TrimSpace(req.RepoPath)), req.IssueNumber)
	sum := sha256.Sum256([]byte(normalized))
	return RunIDPrefix + hex.EncodeToString(sum[:])[:runIDDigestLen], nil
}
