package domain

import "time"

// WasteType categorizes a collection slot.
type WasteType string

const (
	WasteTypeOrganic       WasteType = "organic"
	WasteTypeRecyclable    WasteType = "recyclable"
	WasteTypeNonRecyclable WasteType = "nonRecyclable"
	WasteTypeAll           WasteType = "all"
)

// CollectionSlot is one scheduled pickup for a society.
type CollectionSlot struct {
	ID          string
	Date        time.Time
	WasteType   WasteType
	Notes       string
	IsPast      bool
	IsCompleted bool
}

// Coordinates is a geographic point.
type Coordinates struct {
	Lat float64
	Lng float64
}

// MapPin places a society on the map.
type MapPin struct {
	SocietyID   string
	SocietyName string
	Address     string
	Point       Coordinates
	Geocoded    bool
}
