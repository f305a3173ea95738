package domain

// Slots enumerates the 35 (day, hour) slots for a shift, in day-major,
// hour-ascending order.
func Slots(shift Shift) []Slot {
	bands := shiftHourBands[shift]
	out := make([]Slot, 0, len(Days)*len(bands))
	for d := range Days {
		for _, hour := range bands {
			out = append(out, Slot{Day: DayID(d), Hour: hour, Shift: shift})
		}
	}
	return out
}
