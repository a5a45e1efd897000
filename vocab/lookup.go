package vocab

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LookupHeader is the first line of every lookup artifact.
const LookupHeader = "# featvec-lookup v1"

// LookupError reports a malformed line in a lookup artifact.
type LookupError struct {
	Line int
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup line %d: %v", e.Line, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// WriteLookup writes the frozen vocabulary as one quoted key and its index
// per line, ordered by index.
func (m *Mapper) WriteLookup(w io.Writer) error {
	if m.phase != Frozen {
		return ErrNotFrozen
	}
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, LookupHeader); err != nil {
		return err
	}
	for _, e := range m.Entries() {
		if _, err := fmt.Fprintf(bw, "%s\t%d\n", strconv.Quote(e.Key), e.Index); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadLookup parses a lookup artifact into a frozen mapper.
func ReadLookup(r io.Reader) (*Mapper, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var entries []Entry
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if line == 1 {
			if text != LookupHeader {
				return nil, &LookupError{Line: line, Err: fmt.Errorf("unexpected header %q", text)}
			}
			continue
		}
		if text == "" {
			continue
		}
		tab := strings.LastIndexByte(text, '\t')
		if tab < 0 {
			return nil, &LookupError{Line: line, Err: fmt.Errorf("missing tab separator")}
		}
		key, err := strconv.Unquote(text[:tab])
		if err != nil {
			return nil, &LookupError{Line: line, Err: fmt.Errorf("key: %w", err)}
		}
		idx, err := strconv.Atoi(text[tab+1:])
		if err != nil {
			return nil, &LookupError{Line: line, Err: fmt.Errorf("index: %w", err)}
		}
		entries = append(entries, Entry{Key: key, Index: idx})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if line == 0 {
		return nil, &LookupError{Line: 1, Err: fmt.Errorf("empty lookup")}
	}
	m, err := NewFrozen(entries)
	if err != nil {
		return nil, &LookupError{Line: line, Err: err}
	}
	return m, nil
}
