package registry

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// localIdentifierRe matches identifiers emitted by dev-network toolchains,
// e.g. "local-compliance-1".
var localIdentifierRe = regexp.MustCompile(`^local-[a-z0-9][a-z0-9-]*$`)

// NormalizeIdentifier validates identifier against the network's address
// grammar and returns its canonical form.
//
// Test and main networks require a hex contract address, which is always
// standardized to EIP-55 checksum form before storage. The dev network
// additionally accepts "local-" prefixed identifiers produced by local
// toolchains.
func NormalizeIdentifier(network Network, identifier string) (string, error) {
	if identifier == "" || identifier == common.HexToAddress("0x0").Hex() {
		return "", fmt.Errorf("identifier cannot be empty: %w", ErrInvalidIdentifier)
	}

	if network == NetworkDev && localIdentifierRe.MatchString(identifier) {
		return identifier, nil
	}

	if !common.IsHexAddress(identifier) {
		return "", fmt.Errorf("identifier %s does not match the %s address grammar: %w",
			identifier, network, ErrInvalidIdentifier)
	}

	return common.HexToAddress(identifier).Hex(), nil
}

// validateName checks the logical artifact name.
func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("logical name cannot be empty: %w", ErrInvalidIdentifier)
	}

	return nil
}
