package tag

// Store is the ordered tag sequence. Identity is position; duplicates are allowed.
type Store struct {
	items []Item
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Append adds item to the end of the sequence.
func (s *Store) Append(item Item) {
	s.items = append(s.items, item)
}

// RemoveAt deletes the item at index, shifting later items left.
// An out-of-range index leaves the store untouched and returns false.
func (s *Store) RemoveAt(index int) bool {
	if index < 0 || index >= len(s.items) {
		return false
	}
	s.items = append(s.items[:index:index], s.items[index+1:]...)
	return true
}

// Items returns a copy of the sequence.
func (s *Store) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// At returns the item at index.
func (s *Store) At(index int) (Item, bool) {
	if index < 0 || index >= len(s.items) {
		return Item{}, false
	}
	return s.items[index], true
}

// Len returns the number of tags.
func (s *Store) Len() int {
	return len(s.items)
}

// Reset empties the store.
func (s *Store) Reset() {
	s.items = nil
}
