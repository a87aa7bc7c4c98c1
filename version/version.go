// Package version tracks the semantic version of each product component and
// evaluates cross-component compatibility. Components are compatible when they
// all share the same (major, minor) pair; patch versions may diverge freely.
package version

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

var (
	ErrNotFound       = errors.New("component not found")
	ErrInvalidVersion = errors.New("invalid version")
)

// Component identifies one of the independently versioned product components.
type Component string

const (
	ComponentFrontend  Component = "frontend"
	ComponentBackend   Component = "backend"
	ComponentContracts Component = "contracts"
)

// Components lists all tracked components in canonical order.
func Components() []Component {
	return []Component{ComponentFrontend, ComponentBackend, ComponentContracts}
}

func (c Component) String() string { return string(c) }

// ParseComponent parses a component name, failing with ErrNotFound for
// anything outside the tracked set.
func ParseComponent(s string) (Component, error) {
	switch Component(s) {
	case ComponentFrontend, ComponentBackend, ComponentContracts:
		return Component(s), nil
	default:
		return "", fmt.Errorf("component %q: %w", s, ErrNotFound)
	}
}

// BumpKind selects which part of a semver to increment.
type BumpKind string

const (
	BumpMajor BumpKind = "major"
	BumpMinor BumpKind = "minor"
	BumpPatch BumpKind = "patch"
)

// ParseBumpKind parses a bump kind.
func ParseBumpKind(s string) (BumpKind, error) {
	switch BumpKind(s) {
	case BumpMajor, BumpMinor, BumpPatch:
		return BumpKind(s), nil
	default:
		return "", fmt.Errorf("bump kind %q: %w", s, ErrInvalidVersion)
	}
}

// Manifest is the persisted version document mapping each component to its
// recorded semver string.
type Manifest map[Component]string

// defaultManifest is the manifest recorded for a workspace that has never had
// a version written.
func defaultManifest() Manifest {
	m := make(Manifest, len(Components()))
	for _, c := range Components() {
		m[c] = "0.1.0"
	}

	return m
}

// CompatibilityResult is the outcome of a compatibility check. PerComponent
// holds each component's (major, minor) pair as "major.minor".
type CompatibilityResult struct {
	Compatible   bool                 `json:"compatible"`
	PerComponent map[Component]string `json:"per_component"`
}

// checkCompatibility evaluates the (major, minor) equality invariant over a
// set of parsed versions.
func checkCompatibility(versions map[Component]*semver.Version) CompatibilityResult {
	result := CompatibilityResult{
		Compatible:   true,
		PerComponent: make(map[Component]string, len(versions)),
	}

	var ref string
	for _, c := range Components() {
		v, ok := versions[c]
		if !ok {
			continue
		}
		mm := fmt.Sprintf("%d.%d", v.Major(), v.Minor())
		result.PerComponent[c] = mm
		if ref == "" {
			ref = mm
		} else if mm != ref {
			result.Compatible = false
		}
	}

	return result
}
