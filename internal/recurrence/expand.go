package recurrence

// MaxSteps bounds how many dates Expand visits per chore, counted from the
// anchor, whether or not they land inside the requested window.
const MaxSteps = 100

// Expand returns the occurrence dates of a chore anchored at anchor that fall
// within [start, end], both inclusive, in ascending order.
func Expand(freq Freq, anchor, start, end Date) []Date {
	var results []Date

	iter := newIterator(freq, anchor)
	for {
		d, ok := iter.next()
		if !ok || d.After(end) {
			break
		}
		if !d.Before(start) {
			results = append(results, d)
		}
	}
	return results
}

type iterator struct {
	freq    Freq
	current Date
	started bool
	steps   int
}

func newIterator(freq Freq, anchor Date) *iterator {
	return &iterator{freq: freq, current: anchor}
}

func (it *iterator) next() (Date, bool) {
	if it.steps >= MaxSteps {
		return Date{}, false
	}
	it.steps++

	if !it.started {
		it.started = true
		return it.current, true
	}
	if !it.freq.Recurring() {
		return Date{}, false
	}
	it.current = it.freq.Next(it.current)
	return it.current, true
}
