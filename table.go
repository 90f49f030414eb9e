package memtab

// recordTable holds, per ordinal, the arena offsets of the four record
// fields as parallel columns. Ordinals are dense and append-only:
// 0..count-1 in insertion order. Capacity doubles on overflow and is
// independent of the hash index's slot capacity.
type recordTable struct {
	id      []uint32
	taskID  []uint32
	content []uint32
	tags    []uint32
	count   uint32
}

func newRecordTable(capacity uint32) *recordTable {
	if capacity == 0 {
		capacity = 1
	}
	return &recordTable{
		id:      make([]uint32, capacity),
		taskID:  make([]uint32, capacity),
		content: make([]uint32, capacity),
		tags:    make([]uint32, capacity),
	}
}

func (t *recordTable) capacity() uint32 { return uint32(len(t.id)) }

// push appends one record's offsets and returns its ordinal.
func (t *recordTable) push(id, taskID, content, tags uint32) uint32 {
	if t.count == t.capacity() {
		t.grow()
	}
	ord := t.count
	t.id[ord] = id
	t.taskID[ord] = taskID
	t.content[ord] = content
	t.tags[ord] = tags
	t.count++
	return ord
}

func (t *recordTable) grow() {
	newCap := t.capacity() * 2
	t.id = growColumn(t.id, newCap)
	t.taskID = growColumn(t.taskID, newCap)
	t.content = growColumn(t.content, newCap)
	t.tags = growColumn(t.tags, newCap)
}

func growColumn(col []uint32, newCap uint32) []uint32 {
	grown := make([]uint32, newCap)
	copy(grown, col)
	return grown
}
