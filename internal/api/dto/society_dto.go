package dto

import (
	"time"

	"github.com/spec-kit/society-waste-service/internal/domain"
)

// CollectionSlotResponse is one entry of a society's collection calendar.
type CollectionSlotResponse struct {
	ID          string           `json:"id"`
	Date        time.Time        `json:"date"`
	WasteType   domain.WasteType `json:"wasteType"`
	Notes       string           `json:"notes"`
	IsPast      bool             `json:"isPast"`
	IsCompleted bool             `json:"isCompleted"`
}

// MapPinResponse places a society on the map.
type MapPinResponse struct {
	SocietyID   string  `json:"societyId"`
	SocietyName string  `json:"societyName"`
	Address     string  `json:"address"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Geocoded    bool    `json:"geocoded"`
}

// NewSocietyList projects the directory.
func NewSocietyList(accounts []domain.Account) []*AccountResponse {
	items := make([]*AccountResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, NewAccountResponse(&accounts[i]))
	}
	return items
}

// NewSchedule projects a collection calendar.
func NewSchedule(slots []domain.CollectionSlot) []CollectionSlotResponse {
	items := make([]CollectionSlotResponse, 0, len(slots))
	for _, slot := range slots {
		items = append(items, CollectionSlotResponse{
			ID:          slot.ID,
			Date:        slot.Date,
			WasteType:   slot.WasteType,
			Notes:       slot.Notes,
			IsPast:      slot.IsPast,
			IsCompleted: slot.IsCompleted,
		})
	}
	return items
}

// NewMapPins projects map pins.
func NewMapPins(pins []domain.MapPin) []MapPinResponse {
	items := make([]MapPinResponse, 0, len(pins))
	for _, pin := range pins {
		items = append(items, MapPinResponse{
			SocietyID:   pin.SocietyID,
			SocietyName: pin.SocietyName,
			Address:     pin.Address,
			Lat:         pin.Point.Lat,
			Lng:         pin.Point.Lng,
			Geocoded:    pin.Geocoded,
		})
	}
	return items
}
