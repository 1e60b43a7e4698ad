package availability

import "fmt"

// FreeRuns groups consecutive available slots. Slots must be in time order.
func FreeRuns(cls []Classification) [][]Classification {
	var (
		runs    [][]Classification
		current []Classification
	)
	for _, c := range cls {
		if c.State != StateAvailable {
			if len(current) > 0 {
				runs = append(runs, current)
				current = nil
			}
			continue
		}
		if len(current) > 0 && current[len(current)-1].Slot.End() != c.Slot.Label {
			runs = append(runs, current)
			current = nil
		}
		current = append(current, c)
	}
	if len(current) > 0 {
		runs = append(runs, current)
	}
	return runs
}

// CanBook checks that count consecutive slots starting at start are all available.
func CanBook(cls []Classification, start Clock, count int) bool {
	if count <= 0 {
		return false
	}
	idx := indexOf(cls, start)
	if idx < 0 || idx+count > len(cls) {
		return false
	}
	for i := idx; i < idx+count; i++ {
		if cls[i].State != StateAvailable {
			return false
		}
		if i > idx && cls[i].Slot.Label != cls[i-1].Slot.End() {
			return false
		}
	}
	return true
}

// DurationOptions lists the bookable lengths in minutes from start, one per
// consecutive available slot.
func DurationOptions(cls []Classification, start Clock) []int {
	idx := indexOf(cls, start)
	if idx < 0 || cls[idx].State != StateAvailable {
		return nil
	}

	var (
		options []int
		total   int
	)
	for i := idx; i < len(cls); i++ {
		if cls[i].State != StateAvailable {
			break
		}
		if i > idx && cls[i].Slot.Label != cls[i-1].Slot.End() {
			break
		}
		total += cls[i].Slot.Minutes
		options = append(options, total)
	}
	return options
}

func indexOf(cls []Classification, start Clock) int {
	for i, c := range cls {
		if c.Slot.Label == start {
			return i
		}
	}
	return -1
}

// FormatDuration renders minutes as "45 min", "1 hr", "2 hr 30 min".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	hours, mins := minutes/60, minutes%60
	if mins == 0 {
		return fmt.Sprintf("%d hr", hours)
	}
	return fmt.Sprintf("%d hr %d min", hours, mins)
}
