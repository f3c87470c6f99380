package blocklog

// RecordBuffer is an append-only set of fixed-capacity record slots.
// Slots at index >= cursor are garbage. Not safe for concurrent use.
type RecordBuffer struct {
	slots      [][]byte
	cursor     int
	slotLength int
	reserve    int
}

// NewRecordBuffer preallocates capacity slots of slotLength bytes each.
// reserve slots are left unused when deciding the buffer is full.
func NewRecordBuffer(capacity, slotLength, reserve int) *RecordBuffer {
	if capacity <= 0 {
		capacity = int(defaultBufferCapacity)
	}
	if slotLength <= 0 {
		slotLength = int(defaultRecordMaxLength)
	}
	if reserve < 0 || reserve >= capacity {
		reserve = 0
	}

	b := &RecordBuffer{
		slots:      make([][]byte, capacity),
		slotLength: slotLength,
		reserve:    reserve,
	}
	for i := range b.slots {
		b.slots[i] = make([]byte, 0, slotLength)
	}
	return b
}

// Append copies record into the next free slot
func (b *RecordBuffer) Append(record []byte) error {
	if len(record) > b.slotLength {
		return fmtErrorf("%w: %d bytes exceeds slot length %d", ErrRecordTooLong, len(record), b.slotLength)
	}
	if b.cursor >= len(b.slots) {
		return fmtErrorf("%w: %d slots in use", ErrBufferFull, b.cursor)
	}
	b.slots[b.cursor] = append(b.slots[b.cursor][:0], record...)
	b.cursor++
	return nil
}

// IsFull reports whether the cursor reached capacity minus the reserve
func (b *RecordBuffer) IsFull() bool {
	return b.cursor >= len(b.slots)-b.reserve
}

// Clear zeroes the used slots and resets the cursor
func (b *RecordBuffer) Clear() {
	for i := 0; i < b.cursor; i++ {
		clear(b.slots[i][:cap(b.slots[i])])
		b.slots[i] = b.slots[i][:0]
	}
	b.cursor = 0
}

// Records returns the buffered records in append order. The slices alias the
// buffer and are only valid until the next Append or Clear.
func (b *RecordBuffer) Records() [][]byte {
	return b.slots[:b.cursor]
}

// Len returns the number of buffered records
func (b *RecordBuffer) Len() int {
	return b.cursor
}

// Cap returns the number of slots
func (b *RecordBuffer) Cap() int {
	return len(b.slots)
}

// SlotLength returns the max bytes per record
func (b *RecordBuffer) SlotLength() int {
	return b.slotLength
}
