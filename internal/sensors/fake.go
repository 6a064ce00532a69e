package sensors

import "sync"

// Fake replays scripted readings for tests. The last reading repeats once the
// script is exhausted; a set error wins over the script.
type Fake struct {
	mu     sync.Mutex
	script []Reading
	idx    int
	err    error
}

func NewFake(script ...Reading) *Fake {
	return &Fake{script: script}
}

// Push appends a reading to the script.
func (f *Fake) Push(r Reading) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script = append(f.script, r)
}

// Set replaces the script so the next Read starts from r.
func (f *Fake) Set(r Reading) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script = []Reading{r}
	f.idx = 0
}

// SetErr forces subsequent reads to fail until cleared with nil.
func (f *Fake) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *Fake) Read() (Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return Invalid(), f.err
	}
	if len(f.script) == 0 {
		return Invalid(), nil
	}
	r := f.script[f.idx]
	if f.idx < len(f.script)-1 {
		f.idx++
	}
	return r, nil
}
