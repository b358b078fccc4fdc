package cfgfile

import (
	"bufio"
	"bytes"
	"strings"
)

// parseINI parses ConfigObj-style text:
//
//	[build]
//	compileOption = -sverilog, -timescale=1ns/1ps
//	  [[default]]
//	  simOption = "+uvm_set_verbosity=a,b",
//
// Section depth is the number of brackets. Comma separated values are lists,
// a trailing comma makes a one-element list and quotes protect commas.
func parseINI(file string, data []byte) (*Document, error) {
	doc := newDocument(file)
	stack := []*Section{doc.Root}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			name, depth, err := parseHeader(line)
			if err != nil {
				return nil, doc.Root.errorf(lineNo, "%s", err)
			}
			if depth > len(stack) {
				return nil, doc.Root.errorf(lineNo, "section [%s] is nested too deeply", name)
			}
			stack = stack[:depth]
			child, err := stack[depth-1].addChild(name, lineNo)
			if err != nil {
				return nil, err
			}
			stack = append(stack, child)
			continue
		}

		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return nil, doc.Root.errorf(lineNo, "invalid line %q", line)
		}
		key := unquote(strings.TrimSpace(line[:eq]))
		if key == "" {
			return nil, doc.Root.errorf(lineNo, "missing option name")
		}
		value, err := parseINIValue(line[eq+1:])
		if err != nil {
			return nil, doc.Root.errorf(lineNo, "option %q: %s", key, err)
		}
		if err := stack[len(stack)-1].set(key, value, lineNo); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

type iniError string

func (e iniError) Error() string { return string(e) }

func parseHeader(line string) (string, int, error) {
	if i := commentIndex(line); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	open := 0
	for open < len(line) && line[open] == '[' {
		open++
	}
	closing := 0
	for closing < len(line)-open && line[len(line)-1-closing] == ']' {
		closing++
	}
	if open != closing {
		return "", 0, iniError("unbalanced section marker in " + line)
	}
	name := unquote(strings.TrimSpace(line[open : len(line)-closing]))
	if name == "" {
		return "", 0, iniError("empty section name")
	}
	return name, open, nil
}

// parseINIValue splits a raw value on unquoted commas, dropping a trailing
// comment.
func parseINIValue(raw string) (Value, error) {
	var (
		items   []string
		cur     strings.Builder
		quote   byte
		isList  bool
		quoted  bool
		pending bool
	)
	flush := func() {
		item := cur.String()
		if !quoted {
			item = strings.TrimSpace(item)
		}
		items = append(items, item)
		cur.Reset()
		quoted = false
		pending = false
	}

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
				continue
			}
			cur.WriteByte(c)
		case c == '"' || c == '\'':
			if strings.TrimSpace(cur.String()) != "" {
				cur.WriteByte(c)
				continue
			}
			cur.Reset()
			quote = c
			quoted = true
			pending = true
		case c == ',':
			isList = true
			flush()
		case c == '#':
			i = len(raw)
		default:
			blank := c == ' ' || c == '\t'
			if blank && quoted {
				continue
			}
			if !blank {
				pending = true
			}
			cur.WriteByte(c)
		}
	}
	if quote != 0 {
		return Value{}, iniError("unterminated quote")
	}
	if pending || !isList {
		flush()
	}

	if !isList {
		return Scalar(items[0]), nil
	}
	// a lone comma is an empty list
	out := items[:0]
	for _, item := range items {
		if item != "" {
			out = append(out, item)
		}
	}
	return List(out...), nil
}

func commentIndex(s string) int {
	var quote byte
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '#':
			return i
		}
	}
	return -1
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
