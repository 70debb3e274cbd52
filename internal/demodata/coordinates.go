package demodata

import "github.com/spec-kit/society-waste-service/internal/domain"

// Box is a square area anchored at its south-west corner.
type Box struct {
	MinLat float64
	MinLng float64
	Span   float64
}

const coordinateSteps = 2000

// Coordinates places seedID at a stable point inside box.
func Coordinates(seedID string, box Box) domain.Coordinates {
	seed := NewSeed(seedID)
	step := box.Span / coordinateSteps
	return domain.Coordinates{
		Lat: box.MinLat + float64(seed.Hex(0, 4)%coordinateSteps)*step,
		Lng: box.MinLng + float64(seed.Hex(4, 4)%coordinateSteps)*step,
	}
}
