package memtab

import (
	"bytes"

	memtaberrors "github.com/memtab/memtab/errors"
)

// structuralClass marks the bytes significant to object scanning:
// quote, colon, braces, comma. A table lookup keeps the inner skip loop
// branch-free; bytes.IndexByte covers the single-target skips.
var structuralClass = [256]bool{
	'"': true,
	':': true,
	'{': true,
	'}': true,
	',': true,
}

// nextStructural returns the index of the first structural byte at or
// after i, or -1 if the buffer ends first.
func nextStructural(buf []byte, i int) int {
	for ; i < len(buf); i++ {
		if structuralClass[buf[i]] {
			return i
		}
	}
	return -1
}

// stringEnd returns the index of the closing quote of the string whose
// opening quote sits just before start. A backslash escapes exactly the
// byte that follows it; no Unicode-escape decoding is attempted. Returns
// -1 when the buffer ends before the string closes.
//
// The scan jumps between quote candidates with bytes.IndexByte and
// rejects a candidate preceded by an odd run of backslashes, which is
// equivalent to the forward skip-two-on-backslash walk.
func stringEnd(buf []byte, start int) int {
	i := start
	for i < len(buf) {
		j := bytes.IndexByte(buf[i:], '"')
		if j < 0 {
			return -1
		}
		q := i + j
		escapes := 0
		for k := q - 1; k >= start && buf[k] == '\\'; k-- {
			escapes++
		}
		if escapes%2 == 0 {
			return q
		}
		i = q + 1
	}
	return -1
}

// fieldSet accumulates one object's field values as borrowed slices of
// the input buffer. Nothing is copied until the closing brace submits the
// set to Add.
type fieldSet struct {
	id      []byte
	taskID  []byte
	content []byte
	tags    []byte
}

// assign routes a value to its field by key length plus one marker
// character instead of a full comparison. This is a hard constraint of
// the wire format: any key sharing a reserved key's (length, marker)
// signature (length 2 starting 'i', length 7 with second char 'a' or
// 'o', length 4 starting 't') is treated as that reserved key.
// Everything else is ignored.
func (f *fieldSet) assign(key, val []byte) {
	switch {
	case len(key) == 2 && key[0] == 'i':
		f.id = val
	case len(key) == 7 && key[1] == 'a':
		f.taskID = val
	case len(key) == 7 && key[1] == 'o':
		f.content = val
	case len(key) == 4 && key[0] == 't':
		f.tags = val
	}
}

// ParseJSON ingests every object of the top-level JSON array in buf,
// appending records after any existing ones (ordinals continue from the
// current count). It returns the number of records this call added.
//
// The expected wire shape is an array of flat objects carrying any subset
// of the string keys id, task_id, content and tags:
//
//	[ {"id":"...","task_id":"...","content":"...","tags":"..."}, ... ]
//
// Parsing is permissive: unknown keys, absent fields (defaulting to ""),
// whitespace, and non-string values for recognized keys (the field keeps
// its default) are all tolerated. Value bytes are stored raw, escape
// sequences included. A buffer with no opening '[' yields (0, nil); only
// a buffer that ends inside an object is an error (ErrMalformedInput),
// and the cut-off object is not added.
func (s *MemoryStore) ParseJSON(buf []byte) (int, error) {
	if s.closed.Load() {
		return 0, memtaberrors.ErrStoreClosed
	}

	pos := bytes.IndexByte(buf, '[')
	if pos < 0 {
		return 0, nil
	}
	pos++

	added := 0
	for {
		gap := bytes.IndexByte(buf[pos:], '{')
		if gap < 0 {
			// Array never opens another object; a missing ']' past the
			// last object is tolerated.
			return added, nil
		}
		if bytes.IndexByte(buf[pos:pos+gap], ']') >= 0 {
			return added, nil
		}
		pos += gap + 1

		var f fieldSet
		next, err := scanObject(buf, pos, &f)
		if err != nil {
			return added, err
		}
		if _, err := s.Add(f.id, f.taskID, f.content, f.tags); err != nil {
			return added, err
		}
		added++
		pos = next
	}
}

// scanObject scans one object body starting just past its '{' and fills
// f with borrowed value slices. Returns the index just past the matching
// '}'. Running out of buffer anywhere inside the object is
// ErrMalformedInput.
func scanObject(buf []byte, i int, f *fieldSet) (int, error) {
	for {
		j := nextStructural(buf, i)
		if j < 0 {
			return 0, memtaberrors.ErrMalformedInput
		}
		switch buf[j] {
		case '}':
			return j + 1, nil
		case '"':
			keyEnd := stringEnd(buf, j+1)
			if keyEnd < 0 {
				return 0, memtaberrors.ErrMalformedInput
			}
			key := buf[j+1 : keyEnd]

			colon := bytes.IndexByte(buf[keyEnd+1:], ':')
			if colon < 0 {
				return 0, memtaberrors.ErrMalformedInput
			}
			i = keyEnd + 1 + colon + 1

			for i < len(buf) && isSpace(buf[i]) {
				i++
			}
			if i >= len(buf) {
				return 0, memtaberrors.ErrMalformedInput
			}

			if buf[i] == '"' {
				valEnd := stringEnd(buf, i+1)
				if valEnd < 0 {
					return 0, memtaberrors.ErrMalformedInput
				}
				f.assign(key, buf[i+1:valEnd])
				i = valEnd + 1
			} else {
				// Non-string value: the key is consumed and the field
				// keeps its empty default. Nested objects and arrays are
				// skipped at depth, with strings jumped over so their
				// bytes stay inert, and the scan resumes at the value's
				// own terminating ',' or '}'.
				depth := 0
			skip:
				for i < len(buf) {
					switch buf[i] {
					case '"':
						end := stringEnd(buf, i+1)
						if end < 0 {
							return 0, memtaberrors.ErrMalformedInput
						}
						i = end
					case '{', '[':
						depth++
					case '}':
						if depth == 0 {
							break skip
						}
						depth--
					case ']':
						if depth > 0 {
							depth--
						}
					case ',':
						if depth == 0 {
							break skip
						}
					}
					i++
				}
			}
		default:
			// ',' between pairs, or a stray ':' / '{'
			i = j + 1
		}
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
