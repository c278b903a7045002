// Package catalog allocates sequential session log names of the form
// t_<N>.csv. The scan over existing names happens once, at construction;
// after that allocation is a pure counter increment, with an operator-
// confirmed wrap back to 1 when the 999 ceiling is passed.
package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxRunNumber is the highest run number before the counter wraps. Names
// stay within legacy 8.3 filename limits up to this value.
const MaxRunNumber = 999

// Catalog hands out log file names. Construct one per process from the
// storage listing and pass it to the sequencer; it is not safe for
// concurrent use.
type Catalog struct {
	next int
}

// New builds a catalog from an existing file listing. Non-matching names
// are ignored; an empty or unreadable listing means numbering starts at 1.
func New(names []string) *Catalog {
	max := 0
	for _, name := range names {
		if n, ok := ParseRunNumber(name); ok && n > max {
			max = n
		}
	}
	return &Catalog{next: max + 1}
}

// ParseRunNumber extracts N from a name matching t_<N>.csv, N being 1 to 3
// decimal digits. Anything else reports false.
func ParseRunNumber(name string) (int, bool) {
	if !strings.HasPrefix(name, "t_") || !strings.HasSuffix(name, ".csv") {
		return 0, false
	}
	digits := name[2 : len(name)-4]
	if len(digits) < 1 || len(digits) > 3 {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FileName formats the log name for a run number.
func FileName(n int) string {
	return fmt.Sprintf("t_%d.csv", n)
}

// Next returns the next log file name and advances the counter. When the
// counter passes MaxRunNumber, confirm is called and must block until the
// operator acknowledges that numbering restarts at 1. Reusing t_1.csv is
// destructive, so it never happens silently.
func (c *Catalog) Next(confirm func()) string {
	if c.next > MaxRunNumber {
		if confirm != nil {
			confirm()
		}
		c.next = 1
	}
	name := FileName(c.next)
	c.next++
	return name
}
