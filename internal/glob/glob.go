// Package glob matches keys against Redis-style glob patterns, the syntax
// SCAN and KEYS understand: '*' matches any run of bytes (including none),
// '?' exactly one byte, "[abc]" one byte from a set ("[^abc]" negates,
// "[a-z]" is a range) and a backslash quotes the next byte.
//
// Unlike path.Match, '/' has no special meaning.
package glob

// Match reports whether s matches pattern. Malformed classes are matched
// leniently, the same way Redis does.
func Match(pattern, s string) bool {
	p, k := 0, 0
	// backtrack point for the last '*'
	star, mark := -1, 0
	for k < len(s) {
		if p < len(pattern) {
			switch pattern[p] {
			case '*':
				for p < len(pattern) && pattern[p] == '*' {
					p++
				}
				if p == len(pattern) {
					return true
				}
				star, mark = p, k
				continue
			case '?':
				p++
				k++
				continue
			case '[':
				if ok, next := matchClass(pattern, p, s[k]); ok {
					p = next
					k++
					continue
				}
			case '\\':
				if p+1 < len(pattern) {
					if pattern[p+1] == s[k] {
						p += 2
						k++
						continue
					}
				} else if s[k] == '\\' {
					p++
					k++
					continue
				}
			default:
				if pattern[p] == s[k] {
					p++
					k++
					continue
				}
			}
		}
		if star < 0 {
			return false
		}
		mark++
		p, k = star, mark
	}
	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}

// matchClass matches c against the class starting at pattern[open] == '['.
// It returns whether c is in the class and the index just past the closing ']'.
func matchClass(pattern string, open int, c byte) (bool, int) {
	i := open + 1
	negate := false
	if i < len(pattern) && pattern[i] == '^' {
		negate = true
		i++
	}
	in := false
	for i < len(pattern) && pattern[i] != ']' {
		switch {
		case pattern[i] == '\\' && i+1 < len(pattern):
			i++
			if pattern[i] == c {
				in = true
			}
			i++
		case i+2 < len(pattern) && pattern[i+1] == '-' && pattern[i+2] != ']':
			lo, hi := pattern[i], pattern[i+2]
			if lo > hi {
				lo, hi = hi, lo
			}
			if c >= lo && c <= hi {
				in = true
			}
			i += 3
		default:
			if pattern[i] == c {
				in = true
			}
			i++
		}
	}
	if i < len(pattern) {
		i++ // ']'
	}
	return in != negate, i
}

// Escape quotes every glob metacharacter in s so it matches only itself.
func Escape(s string) string {
	var buf []byte
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			if buf == nil {
				buf = make([]byte, 0, len(s)+4)
				buf = append(buf, s[:i]...)
			}
			buf = append(buf, '\\')
		}
		if buf != nil {
			buf = append(buf, s[i])
		}
	}
	if buf == nil {
		return s
	}
	return string(buf)
}
