package usecases

import (
	"strings"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
)

var popularRegions = []domain.Region{
	{Name: "Punjab (Wheat Belt)", Center: domain.LatLng{Lat: 30.7333, Lng: 76.7794}, Zoom: domain.ZoomRegion},
	{Name: "Haryana (Rice Belt)", Center: domain.LatLng{Lat: 29.0588, Lng: 76.0856}, Zoom: domain.ZoomRegion},
	{Name: "Maharashtra (Cotton)", Center: domain.LatLng{Lat: 19.7515, Lng: 75.7139}, Zoom: domain.ZoomRegion},
	{Name: "Karnataka (Coffee)", Center: domain.LatLng{Lat: 12.9716, Lng: 77.5946}, Zoom: domain.ZoomRegion},
	{Name: "Tamil Nadu (Sugarcane)", Center: domain.LatLng{Lat: 11.1271, Lng: 78.6569}, Zoom: domain.ZoomRegion},
	{Name: "Gujarat (Groundnut)", Center: domain.LatLng{Lat: 23.0225, Lng: 72.5714}, Zoom: domain.ZoomRegion},
	{Name: "West Bengal (Rice)", Center: domain.LatLng{Lat: 22.9868, Lng: 87.8550}, Zoom: domain.ZoomRegion},
	{Name: "Uttar Pradesh (Wheat)", Center: domain.LatLng{Lat: 26.8467, Lng: 80.9462}, Zoom: domain.ZoomRegion},
}

// PopularRegions lists the farming regions offered as quick navigation targets.
func PopularRegions() []domain.Region {
	out := make([]domain.Region, len(popularRegions))
	copy(out, popularRegions)
	return out
}

// FindRegion matches name case-insensitively, either in full or by the part
// before the crop label ("Punjab" matches "Punjab (Wheat Belt)").
func FindRegion(name string) (domain.Region, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Region{}, false
	}
	for _, r := range popularRegions {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	for _, r := range popularRegions {
		short, _, _ := strings.Cut(r.Name, " (")
		if strings.EqualFold(short, name) {
			return r, true
		}
	}
	return domain.Region{}, false
}
