package demodata

import (
	"fmt"
	"time"

	"github.com/spec-kit/society-waste-service/internal/domain"
)

var wasteTypes = []domain.WasteType{
	domain.WasteTypeOrganic,
	domain.WasteTypeRecyclable,
	domain.WasteTypeNonRecyclable,
	domain.WasteTypeAll,
}

const weeksPerMonth = 4

// Schedule returns the collection slots of the previous, current and next month for the
// society identified by seedID. Slots fall on the same weekly rhythm each month, starting
// on a day in 1..7 and stopping after day 28.
func Schedule(seedID string, now time.Time) []domain.CollectionSlot {
	seed := NewSeed(seedID)
	startDay := int(seed.Hex(0, 2)%7) + 1
	year, month, _ := now.Date()
	loc := now.Location()

	slots := make([]domain.CollectionSlot, 0, 3*weeksPerMonth)

	for i := 0; i < weeksPerMonth; i++ {
		day := startDay + i*7
		if day > 28 {
			continue
		}
		wasteType := wasteTypes[seed.Hex(i*2+10, 2)%uint64(len(wasteTypes))]
		slots = append(slots, domain.CollectionSlot{
			ID:          fmt.Sprintf("%s-past-%d", seedID, i),
			Date:        time.Date(year, month-1, day, 0, 0, 0, 0, loc),
			WasteType:   wasteType,
			Notes:       slotNotes(seed, wasteType, i, true),
			IsPast:      true,
			IsCompleted: true,
		})
	}

	for i := 0; i < weeksPerMonth; i++ {
		day := startDay + i*7
		if day > 28 {
			continue
		}
		wasteType := wasteTypes[seed.Hex(i*2, 2)%uint64(len(wasteTypes))]
		date := time.Date(year, month, day, 0, 0, 0, 0, loc)
		isPast := date.Before(now)
		slots = append(slots, domain.CollectionSlot{
			ID:          fmt.Sprintf("%s-%d", seedID, i),
			Date:        date,
			WasteType:   wasteType,
			Notes:       slotNotes(seed, wasteType, i, false),
			IsPast:      isPast,
			IsCompleted: isPast && seed.Hex(i*5, 2)%100 > 30,
		})
	}

	for i := 0; i < weeksPerMonth; i++ {
		day := startDay + i*7
		if day > 28 {
			continue
		}
		wasteType := wasteTypes[seed.Hex(i*2+20, 2)%uint64(len(wasteTypes))]
		slots = append(slots, domain.CollectionSlot{
			ID:        fmt.Sprintf("%s-future-%d", seedID, i),
			Date:      time.Date(year, month+1, day, 0, 0, 0, 0, loc),
			WasteType: wasteType,
			Notes:     slotNotes(seed, wasteType, i, false),
		})
	}

	return slots
}

func slotNotes(seed Seed, wasteType domain.WasteType, index int, past bool) string {
	var notes string
	switch wasteType {
	case domain.WasteTypeOrganic:
		notes = "Organic waste collection"
	case domain.WasteTypeRecyclable:
		notes = "Recyclable waste collection"
	case domain.WasteTypeNonRecyclable:
		notes = "Non-recyclable waste collection"
	default:
		notes = "Full waste collection"
	}

	offset := index * 3
	if past {
		offset += 5
	}
	if seed.Hex(offset, 2)%3 == 0 {
		if past {
			return notes + " (completed)"
		}
		return notes + " (special drive)"
	}
	return notes
}
