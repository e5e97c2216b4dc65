package surfaceplan

import (
	"github.com/pkg/errors"
)

var (
	// ErrContractViolation is returned when an external engine answers a query inconsistently, e.g.
	// a different number of surface names than intersection geometries.
	ErrContractViolation = errors.New("engine contract violation")
	// ErrCatalogMiss is returned when a colliding surface is not part of the surface catalog.
	ErrCatalogMiss = errors.New("surface missing from catalog")
)

// NewContractViolationError returns an error for a collision query whose names and geometries do
// not correspond element-wise.
func NewContractViolationError(side LegSide, names, geometries int) error {
	return errors.Wrapf(ErrContractViolation,
		"%s query returned %d surface names but %d intersection geometries", side, names, geometries)
}

// NewAffordanceMismatchError returns an error for an affordance engine reporting a different number
// of obstacle names than surfaces.
func NewAffordanceMismatchError(category string, names, surfaces int) error {
	return errors.Wrapf(ErrContractViolation,
		"affordance %q has %d obstacle names but %d surfaces", category, names, surfaces)
}

// NewCatalogMissError returns an error for a surface name absent from the catalog.
func NewCatalogMissError(name string) error {
	return errors.Wrapf(ErrCatalogMiss, "%q", name)
}
