package lanes

const hole = -1

// openTable tracks which interval holds each lane. Slots store interval
// indices; a hole marks a lane whose interval has closed while a higher lane
// is still open. The table is always trimmed so its last slot is occupied.
type openTable struct {
	slots []int
}

// claim appends idx and returns its lane.
func (t *openTable) claim(idx int) int {
	t.slots = append(t.slots, idx)
	return len(t.slots) - 1
}

// release frees lane and trims trailing holes.
func (t *openTable) release(lane int) {
	if lane < len(t.slots) {
		t.slots[lane] = hole
	}
	n := len(t.slots)
	for n > 0 && t.slots[n-1] == hole {
		n--
	}
	t.slots = t.slots[:n]
}

func (t *openTable) len() int { return len(t.slots) }
