// Package textrepair normalizes the raw text of chat export files before
// parsing. Exports arrive with backslash escape sequences in place of
// literal characters and with text that was double-encoded (UTF-8 bytes
// re-encoded as UTF-8 once more), so every file goes through an unescape
// pass followed by an encoding fold.
package textrepair

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Repair normalizes raw export file bytes into clean UTF-8 text.
// It validates the input encoding, decodes escape sequences, folds the
// double-encoding artifact and trims surrounding whitespace.
func Repair(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", errors.New("input is not valid UTF-8")
	}

	unescaped, err := Unescape(string(raw))
	if err != nil {
		return "", fmt.Errorf("failed to decode escapes: %w", err)
	}

	folded, err := FoldEncoding(unescaped)
	if err != nil {
		return "", fmt.Errorf("failed to fold encoding: %w", err)
	}

	return strings.TrimSpace(folded), nil
}

// Unescape decodes backslash escape sequences into literal characters.
//
// Recognized sequences: \n \t \r \f \a \e, control characters as \cX,
// octal \0NNN (up to octal 777), hex \xHH and \x{HHHH}, \uHHHH and
// \UHHHHHHHH. An unrecognized escape is kept as a literal backslash
// followed by the original character, \\ stays as two backslashes, and a
// trailing lone backslash is preserved. Malformed sequences are errors.
func Unescape(s string) (string, error) {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' {
			b.WriteRune(runes[i])
			continue
		}

		i++
		if i == len(runes) {
			b.WriteByte('\\')
			break
		}

		switch c := runes[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case 'r':
			b.WriteByte('\r')
		case 'n':
			b.WriteByte('\n')
		case 'f':
			b.WriteByte('\f')
		case 't':
			b.WriteByte('\t')
		case 'a':
			b.WriteByte('\a')
		case 'e':
			b.WriteByte(0x1b)
		case 'b':
			// kept literal, matching the export producer
			b.WriteString(`\b`)
		case 'c':
			i++
			if i == len(runes) {
				return "", errors.New(`trailing \c`)
			}
			if runes[i] > 0x7f {
				return "", errors.New(`expected ASCII after \c`)
			}
			b.WriteRune(runes[i] ^ 64)
		case '8', '9':
			return "", errors.New("illegal octal digit")
		case '0', '1', '2', '3', '4', '5', '6', '7':
			start := i
			if c == '0' {
				start = i + 1
			}
			digits := 0
			for digits < 3 && start+digits < len(runes) && isOctal(runes[start+digits]) {
				digits++
			}
			if digits == 0 {
				// bare \0
				b.WriteByte(0)
				break
			}
			v, err := strconv.ParseUint(string(runes[start:start+digits]), 8, 32)
			if err != nil {
				return "", fmt.Errorf(`invalid octal value for \0 escape: %w`, err)
			}
			b.WriteRune(rune(v))
			i = start + digits - 1
		case 'x':
			if i+1 >= len(runes) {
				return "", errors.New(`string too short for \x escape`)
			}
			i++
			sawBrace := false
			if runes[i] == '{' {
				sawBrace = true
				i++
			}
			j := 0
			for ; j < 8; j++ {
				if !sawBrace && j == 2 {
					break
				}
				if i+j >= len(runes) {
					return "", errors.New(`string too short for \x escape`)
				}
				ch := runes[i+j]
				if ch > 0x7f {
					return "", errors.New(`illegal non-ASCII hex digit in \x escape`)
				}
				if sawBrace && ch == '}' {
					break
				}
				if !isHex(ch) {
					return "", fmt.Errorf(`illegal hex digit %q in \x escape`, ch)
				}
			}
			if j == 0 {
				return "", errors.New(`empty braces in \x{} escape`)
			}
			v, err := strconv.ParseUint(string(runes[i:i+j]), 16, 32)
			if err != nil || v > utf8.MaxRune {
				return "", fmt.Errorf(`invalid hex value for \x escape: %s`, string(runes[i:i+j]))
			}
			b.WriteRune(rune(v))
			if sawBrace {
				j++
			}
			i += j - 1
		case 'u':
			v, err := parseHexEscape(runes, i, 4, 'u')
			if err != nil {
				return "", err
			}
			b.WriteRune(v)
			i += 4
		case 'U':
			v, err := parseHexEscape(runes, i, 8, 'U')
			if err != nil {
				return "", err
			}
			b.WriteRune(v)
			i += 8
		default:
			b.WriteByte('\\')
			b.WriteRune(c)
		}
	}

	return b.String(), nil
}

// FoldEncoding reverses the export's double-encoding artifact: every code
// point is truncated to its low 8 bits and the resulting byte stream is
// decoded as UTF-8 again. Text that was mangled by a UTF-8 to Latin-1 to
// UTF-8 round trip comes out with its original characters.
func FoldEncoding(s string) (string, error) {
	buf := make([]byte, 0, len(s))
	for _, r := range s {
		buf = append(buf, byte(r))
	}
	if !utf8.Valid(buf) {
		return "", errors.New("folded text is not valid UTF-8")
	}
	return string(buf), nil
}

// parseHexEscape reads exactly width hex digits following the escape
// letter at runes[pos].
func parseHexEscape(runes []rune, pos, width int, letter rune) (rune, error) {
	if pos+width >= len(runes) {
		return 0, fmt.Errorf(`string too short for \%c escape`, letter)
	}
	for j := 1; j <= width; j++ {
		if runes[pos+j] > 0x7f {
			return 0, fmt.Errorf(`illegal non-ASCII hex digit in \%c escape`, letter)
		}
	}
	v, err := strconv.ParseUint(string(runes[pos+1:pos+1+width]), 16, 32)
	if err != nil || v > utf8.MaxRune {
		return 0, fmt.Errorf(`invalid hex value for \%c escape: %s`, letter, string(runes[pos+1:pos+1+width]))
	}
	return rune(v), nil
}

func isOctal(r rune) bool {
	return r >= '0' && r <= '7'
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
