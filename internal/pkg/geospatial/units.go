// Package geospatial converts between the land-area units fields are reported in.
package geospatial

const (
	sqMetersPerHectare = 10_000.0
	acresPerHectare    = 2.4710538146717
)

// SquareMetersToHectares converts an area in square metres to hectares.
func SquareMetersToHectares(m2 float64) float64 {
	return m2 / sqMetersPerHectare
}

// HectaresToAcres converts an area in hectares to acres.
func HectaresToAcres(ha float64) float64 {
	return ha * acresPerHectare
}
