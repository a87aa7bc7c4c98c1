package deploy

import (
	"fmt"
	"slices"
)

// On-chain artifact names deployed by the contracts toolchain. The registry
// and compliance contract must exist before the token that consults it, and
// the router references both, so deploys follow this fixed order.
const (
	ArtifactComplianceRegistry = "compliance_registry"
	ArtifactAssetToken         = "asset_token"
	ArtifactRouter             = "router"
)

// ContractArtifacts lists the on-chain artifacts in deploy order.
func ContractArtifacts() []string {
	return []string{ArtifactComplianceRegistry, ArtifactAssetToken, ArtifactRouter}
}

// contractDependencies maps each artifact to the artifacts that must already
// be deployed before it.
var contractDependencies = map[string][]string{
	ArtifactComplianceRegistry: nil,
	ArtifactAssetToken:         {ArtifactComplianceRegistry},
	ArtifactRouter:             {ArtifactComplianceRegistry, ArtifactAssetToken},
}

// ValidateArtifactOrder rejects a deploy sequence that would deploy an
// artifact before one of its dependencies. deployed holds the names already
// present in the registry for the target network. The check runs before any
// deploy call is issued, so a violation has zero external side effects.
func ValidateArtifactOrder(sequence []string, deployed map[string]struct{}) error {
	seen := make(map[string]struct{}, len(deployed))
	for name := range deployed {
		seen[name] = struct{}{}
	}

	for _, name := range sequence {
		deps, ok := contractDependencies[name]
		if !ok {
			return fmt.Errorf("unknown contract artifact %q: %w", name, ErrDependencyOrderViolation)
		}
		for _, dep := range deps {
			if _, ok := seen[dep]; !ok {
				return fmt.Errorf("%s requires %s to be deployed first: %w",
					name, dep, ErrDependencyOrderViolation)
			}
		}
		seen[name] = struct{}{}
	}

	return nil
}

// normalizeArtifactSequence validates that the requested artifacts are known
// and returns them in canonical deploy order.
func normalizeArtifactSequence(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return ContractArtifacts(), nil
	}

	ordered := make([]string, 0, len(requested))
	for _, name := range ContractArtifacts() {
		if slices.Contains(requested, name) {
			ordered = append(ordered, name)
		}
	}
	if len(ordered) != len(requested) {
		for _, name := range requested {
			if !slices.Contains(ContractArtifacts(), name) {
				return nil, fmt.Errorf("unknown contract artifact %q: %w",
					name, ErrDependencyOrderViolation)
			}
		}
	}

	return ordered, nil
}
