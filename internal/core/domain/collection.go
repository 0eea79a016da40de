package domain

// Collection is the ordered working set of one analysis session.
// Order is insertion order; it is the display order and the order of
// sources in the final request.
//
// A Collection is not safe for concurrent use. The session that owns it
// serialises access.
type Collection struct {
	records []SourceRecord
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Add appends a record. Records are expected to come from an extractor,
// so no validation happens here.
func (c *Collection) Add(record SourceRecord) {
	c.records = append(c.records, record)
}

// Remove deletes and returns the record at index, shifting later records down.
func (c *Collection) Remove(index int) (SourceRecord, error) {
	if index < 0 || index >= len(c.records) {
		return SourceRecord{}, &IndexOutOfRangeError{Index: index, Length: len(c.records)}
	}
	removed := c.records[index]
	c.records = append(c.records[:index], c.records[index+1:]...)
	return removed, nil
}

// RemoveByID deletes and returns the record with the given ID.
func (c *Collection) RemoveByID(id string) (SourceRecord, error) {
	index := c.IndexOf(id)
	if index < 0 {
		return SourceRecord{}, ErrNotFound
	}
	return c.Remove(index)
}

// IndexOf returns the position of the record with the given ID, or -1.
func (c *Collection) IndexOf(id string) int {
	for i := range c.records {
		if c.records[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns the record with the given ID.
func (c *Collection) Get(id string) (SourceRecord, bool) {
	index := c.IndexOf(id)
	if index < 0 {
		return SourceRecord{}, false
	}
	return c.records[index], true
}

// List returns a copy of the records in insertion order.
// Later mutation of the collection does not affect the returned slice.
func (c *Collection) List() []SourceRecord {
	out := make([]SourceRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Count returns the number of records.
func (c *Collection) Count() int {
	return len(c.records)
}

// Clear removes every record.
func (c *Collection) Clear() {
	c.records = nil
}
