package selection

// List is an ordered, cursor-navigable snapshot of items.
// The cursor, when set, is always a valid index; an empty list never has one.
type List[T any] struct {
	items  []T
	cursor int // -1 when unset
}

// NewList returns a list over a copy of items with no cursor.
func NewList[T any](items []T) List[T] {
	cp := make([]T, len(items))
	copy(cp, items)
	return List[T]{items: cp, cursor: -1}
}

// Next moves the cursor forward, wrapping past the last item.
func (l *List[T]) Next() {
	if len(l.items) == 0 {
		return
	}
	if l.cursor < 0 || l.cursor >= len(l.items)-1 {
		l.cursor = 0
		return
	}
	l.cursor++
}

// Previous moves the cursor back, wrapping before the first item.
// An unset cursor lands on the first item, same as Next.
func (l *List[T]) Previous() {
	if len(l.items) == 0 {
		return
	}
	switch {
	case l.cursor < 0:
		l.cursor = 0
	case l.cursor == 0:
		l.cursor = len(l.items) - 1
	default:
		l.cursor--
	}
}

// Commit returns the item under the cursor.
func (l List[T]) Commit() (T, bool) {
	var zero T
	if l.cursor < 0 || l.cursor >= len(l.items) {
		return zero, false
	}
	return l.items[l.cursor], true
}

// Cursor returns the cursor index and whether it is set.
func (l List[T]) Cursor() (int, bool) {
	return l.cursor, l.cursor >= 0
}

func (l List[T]) Len() int {
	return len(l.items)
}

// Items returns a copy of the underlying items.
func (l List[T]) Items() []T {
	cp := make([]T, len(l.items))
	copy(cp, l.items)
	return cp
}

// Visible returns the [start, end) window of at most height items that keeps
// the cursor in view, centred where possible.
func (l List[T]) Visible(height int) (start, end int) {
	total := len(l.items)
	if height <= 0 || total == 0 {
		return 0, 0
	}
	if total <= height {
		return 0, total
	}
	cursor := l.cursor
	if cursor < 0 {
		cursor = 0
	}
	start = cursor - height/2
	if start < 0 {
		start = 0
	}
	end = start + height
	if end > total {
		end = total
		start = end - height
	}
	return start, end
}
