package jokes

import "sync"

const Exhausted = "I'm out of jokes for now. Ask me again later!"

// Dispenser hands out jokes in order, each at most once. Once the list
// is used up it keeps returning Exhausted.
type Dispenser struct {
	mu     sync.Mutex
	jokes  []string
	cursor int
}

func NewDispenser(jokes []string) *Dispenser {
	return &Dispenser{jokes: append([]string(nil), jokes...)}
}

func (d *Dispenser) Next() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cursor >= len(d.jokes) {
		return Exhausted
	}

	joke := d.jokes[d.cursor]
	d.cursor++
	return joke
}

func (d *Dispenser) Remaining() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.jokes) - d.cursor
}

// Cursor is the index of the next joke.
func (d *Dispenser) Cursor() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursor
}
