// Package msgtab implements the message table: a sequence of
// null-terminated messages closed by an empty entry.
package msgtab

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// Table is a packed message table, e.g. "TCB\x00RNR\x00\x00".
type Table []byte

// Build packs messages into a table. Messages must be non-empty and must
// not contain a zero byte.
func Build(msgs ...[]byte) (Table, error) {
	var size int
	for i, msg := range msgs {
		if len(msg) == 0 {
			return nil, fmt.Errorf("message %d is empty", i)
		}
		if bytes.IndexByte(msg, 0) != -1 {
			return nil, fmt.Errorf("message %d contains a zero byte", i)
		}
		size += len(msg) + 1
	}

	t := make(Table, 0, size+1)
	for _, msg := range msgs {
		t = append(t, msg...)
		t = append(t, 0)
	}
	return append(t, 0), nil
}

// Encode converts a UTF-8 string to the code page the built-in font is laid
// out in (CP437).
func Encode(s string) ([]byte, error) {
	b, err := charmap.CodePage437.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot encode %q", s)
	}
	return b, nil
}

// Entries returns every message in the table. The returned slices alias
// the table and include no terminator.
func (t Table) Entries() [][]byte {
	var entries [][]byte
	for rest := t; len(rest) > 0 && rest[0] != 0; {
		n := bytes.IndexByte(rest, 0)
		if n == -1 {
			entries = append(entries, rest)
			break
		}
		entries = append(entries, rest[:n])
		rest = rest[n+1:]
	}
	return entries
}

// Cycle walks a table, wrapping back to the first entry after the last.
type Cycle struct {
	table Table
	pos   int
}

// NewCycle creates a cycle starting at the first entry.
func NewCycle(t Table) *Cycle {
	return &Cycle{table: t}
}

// Next returns the current entry, which is still null-terminated, and
// advances to the next one. It returns false if the table has no entries.
func (c *Cycle) Next() ([]byte, bool) {
	if len(c.table) == 0 || c.table[0] == 0 {
		return nil, false
	}

	entry := c.table[c.pos:]
	n := bytes.IndexByte(entry, 0)
	if n == -1 {
		// Unterminated table: the rest of it is the last entry.
		c.pos = 0
		return entry, true
	}

	c.pos += n + 1
	if c.pos >= len(c.table) || c.table[c.pos] == 0 {
		c.pos = 0
	}

	return entry[:n+1], true
}
