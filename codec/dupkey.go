package codec

import (
	"bytes"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
)

// Duplicate reports one duplicated object key found while scanning a JSON
// document. Path is a JSON Pointer to the enclosing object.
type Duplicate struct {
	Path string
	Key  string
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type dupFrame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	curKey       string
	index        int
}

// DetectDuplicateKeys scans a JSON byte slice token-by-token and reports every
// duplicated object key. maxIssues < 0 means unlimited; 0 disables detection.
// The scan never fails on duplicates; malformed JSON ends the scan with an
// error.
func DetectDuplicateKeys(data []byte, maxIssues int) ([]Duplicate, error) {
	if maxIssues == 0 {
		return nil, nil
	}
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var dups []Duplicate
	var stack []dupFrame

	pointer := func() string {
		if len(stack) == 0 {
			return "/"
		}
		b := &strings.Builder{}
		// all frames except the innermost contribute the segment that led into it
		for i := 0; i < len(stack)-1; i++ {
			f := stack[i]
			b.WriteByte('/')
			if f.kind == kindArray {
				b.WriteString(strconv.Itoa(f.index))
			} else {
				b.WriteString(f.curKey)
			}
		}
		if b.Len() == 0 {
			return "/"
		}
		return b.String()
	}

	// a value finished at the top of the stack: advance the parent cursor
	valueDone := func() {
		if len(stack) == 0 {
			return
		}
		top := &stack[len(stack)-1]
		if top.kind == kindObject {
			top.expectingKey = true
		} else {
			top.index++
		}
	}

	for dec.More() || len(stack) > 0 {
		tok, err := dec.Token()
		if err != nil {
			return dups, err
		}
		switch v := tok.(type) {
		case gojson.Delim:
			switch v {
			case '{':
				stack = append(stack, dupFrame{kind: kindObject, keys: make(map[string]struct{}), expectingKey: true})
			case '[':
				stack = append(stack, dupFrame{kind: kindArray})
			case '}', ']':
				stack = stack[:len(stack)-1]
				valueDone()
			}
		case string:
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				if top.kind == kindObject && top.expectingKey {
					if _, seen := top.keys[v]; seen {
						dups = append(dups, Duplicate{Path: pointer(), Key: v})
						if maxIssues > 0 && len(dups) >= maxIssues {
							return dups, nil
						}
					}
					top.keys[v] = struct{}{}
					top.expectingKey = false
					top.curKey = v
					continue
				}
			}
			valueDone()
		default:
			valueDone()
		}
	}
	return dups, nil
}
