package stringtone

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrEmptyLabel     = errors.New("note label is empty")
	ErrDuplicateLabel = errors.New("duplicate note label")
	ErrUnknownTable   = errors.New("unknown note table")
)

// Note pairs a label (a pitch name such as "A" or "C#3") with its fundamental
// frequency in Hz.
type Note struct {
	Label     string
	Frequency float64
}

// Table is an ordered, read-only set of notes.
type Table struct {
	notes []Note
	index map[string]int
}

// NewTable validates notes and returns them as a table. Labels must be unique
// and non-empty, frequencies finite and positive.
func NewTable(notes ...Note) (*Table, error) {
	t := &Table{
		notes: make([]Note, len(notes)),
		index: make(map[string]int, len(notes)),
	}

	for i, n := range notes {
		if n.Label == "" {
			return nil, fmt.Errorf("note %d: %w", i, ErrEmptyLabel)
		}
		if n.Frequency <= 0 || math.IsNaN(n.Frequency) || math.IsInf(n.Frequency, 0) {
			return nil, fmt.Errorf("note %q: %w", n.Label, ErrInvalidFrequency)
		}
		if _, ok := t.index[n.Label]; ok {
			return nil, fmt.Errorf("note %q: %w", n.Label, ErrDuplicateLabel)
		}
		t.notes[i] = n
		t.index[n.Label] = i
	}

	return t, nil
}

func mustTable(notes ...Note) *Table {
	t, err := NewTable(notes...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Len() int {
	return len(t.notes)
}

func (t *Table) At(i int) Note {
	return t.notes[i]
}

// Notes returns a copy of the table contents.
func (t *Table) Notes() []Note {
	out := make([]Note, len(t.notes))
	copy(out, t.notes)
	return out
}

func (t *Table) Lookup(label string) (Note, bool) {
	i, ok := t.index[label]
	if !ok {
		return Note{}, false
	}
	return t.notes[i], true
}

// Octave groups notes sharing the same octave number.
type Octave struct {
	Name  string
	Notes []Note
}

// Octaves groups the table by the trailing octave digits of each label, in
// order of first appearance. Labels without an octave number land in the
// group with an empty name.
func (t *Table) Octaves() []Octave {
	var groups []Octave
	pos := make(map[string]int)

	for _, n := range t.notes {
		name := octaveOf(n.Label)
		i, ok := pos[name]
		if !ok {
			i = len(groups)
			pos[name] = i
			groups = append(groups, Octave{Name: name})
		}
		groups[i].Notes = append(groups[i].Notes, n)
	}

	return groups
}

func octaveOf(label string) string {
	end := len(label)
	start := end
	for start > 0 && label[start-1] >= '0' && label[start-1] <= '9' {
		start--
	}
	return label[start:end]
}

// OpenStrings returns the open strings used by the quiz: low E, A, D, G and B.
func OpenStrings() *Table {
	return mustTable(
		Note{"E", 82.41},
		Note{"A", 110.00},
		Note{"D", 146.83},
		Note{"G", 196.00},
		Note{"B", 246.94},
	)
}

// Chromatic returns every semitone a standard tuned guitar covers, E2 to E5.
func Chromatic() *Table {
	return mustTable(
		Note{"E2", 82.41},
		Note{"F2", 87.31},
		Note{"F#2", 92.50},
		Note{"G2", 98.00},
		Note{"G#2", 103.83},
		Note{"A2", 110.00},
		Note{"A#2", 116.54},
		Note{"B2", 123.47},

		Note{"C3", 130.81},
		Note{"C#3", 138.59},
		Note{"D3", 146.83},
		Note{"D#3", 155.56},
		Note{"E3", 164.81},
		Note{"F3", 174.61},
		Note{"F#3", 185.00},
		Note{"G3", 196.00},
		Note{"G#3", 207.65},
		Note{"A3", 220.00},
		Note{"A#3", 233.08},
		Note{"B3", 246.94},

		Note{"C4", 261.63},
		Note{"C#4", 277.18},
		Note{"D4", 293.66},
		Note{"D#4", 311.13},
		Note{"E4", 329.63},
		Note{"F4", 349.23},
		Note{"F#4", 369.99},
		Note{"G4", 392.00},
		Note{"G#4", 415.30},
		Note{"A4", 440.00},
		Note{"A#4", 466.16},
		Note{"B4", 493.88},

		Note{"C5", 523.25},
		Note{"C#5", 554.37},
		Note{"D5", 587.33},
		Note{"D#5", 622.25},
		Note{"E5", 659.25},
	)
}

// TableByName resolves "open" or "chromatic".
func TableByName(name string) (*Table, error) {
	switch strings.ToLower(name) {
	case "open":
		return OpenStrings(), nil
	case "chromatic":
		return Chromatic(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTable, name)
}
