package parser

import "strings"

// SplitArguments splits the raw text between the call parens into top-level
// comma-separated segments, in source order. A comma delimits only at brace
// depth 0 and bracket depth 0 outside strings; anywhere else it is part of
// the current segment. String state is tracked locally in this single pass
// with the same single-level escape rule as isInsideString. The final
// segment is appended only when non-blank, so a trailing comma is tolerated.
func SplitArguments(argsBlob string) ([]string, error) {
	if strings.TrimSpace(argsBlob) == "" {
		return nil, nil
	}

	var segments []string
	var current strings.Builder
	braces, brackets := 0, 0
	inString := false
	var quote byte

	for i := 0; i < len(argsBlob); i++ {
		ch := argsBlob[i]

		if ch == '\'' || ch == '"' {
			escaped := i > 0 && argsBlob[i-1] == '\\'
			if !escaped {
				if !inString {
					inString = true
					quote = ch
				} else if ch == quote {
					inString = false
				}
			}
			current.WriteByte(ch)
			continue
		}

		if !inString {
			switch ch {
			case '{':
				braces++
			case '}':
				braces--
			case '[':
				brackets++
			case ']':
				brackets--
			case ',':
				if braces == 0 && brackets == 0 {
					segments = append(segments, current.String())
					current.Reset()
					continue
				}
			}
		}

		current.WriteByte(ch)
	}

	if braces != 0 || brackets != 0 {
		return nil, &UnbalancedStructureError{Blob: argsBlob, Braces: braces, Brackets: brackets}
	}

	if strings.TrimSpace(current.String()) != "" {
		segments = append(segments, current.String())
	}

	return segments, nil
}
