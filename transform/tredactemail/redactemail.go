package tredactemail

import (
	"strings"
)

const redactedText = "REDACTED"

type charClass uint8

const (
	classAlnum  charClass = 1 << iota // letters and digits, required at both sides of '@'
	classLocal                        // allowed in local parts
	classDomain                       // allowed in domain names
)

var charClasses [256]charClass

func init() {
	for c := 0; c < 256; c++ {
		b := byte(c)
		if (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') {
			charClasses[c] = classAlnum | classLocal | classDomain
		}
	}
	for _, b := range []byte{'.', '-', '_'} {
		charClasses[b] = classLocal | classDomain
	}
}

func isClass(b byte, class charClass) bool {
	return charClasses[b]&class != 0
}

// containsEmail tells whether src may contain any address, to skip allocation for the common case
func containsEmail(src string) bool {
	return len(src) >= 3 && strings.IndexByte(src, '@') != -1
}

// redactEmails replaces email addresses in src with "REDACTED" and returns the result and the number of replacements
//
// Local parts right after '/' are kept, e.g. "ftp://user@host". Domains must contain a dot followed by a letter or
// digit, unless cut at the end of src, and may not look like a number, e.g. "hello@123.456".
func redactEmails(src string) (string, int) {
	if !containsEmail(src) {
		return src, 0
	}
	var dst strings.Builder
	copied := 0 // src[:copied] has been written or replaced
	count := 0
	for at := strings.IndexByte(src, '@'); at != -1; {
		start, end, ok := matchEmailAt(src, at, copied, count > 0)
		next := at + 1
		if ok {
			if dst.Len() == 0 {
				dst.Grow(len(src))
			}
			dst.WriteString(src[copied:start])
			dst.WriteString(redactedText)
			copied = end
			count++
			next = end
		}
		if next >= len(src) {
			break
		}
		rel := strings.IndexByte(src[next:], '@')
		if rel == -1 {
			break
		}
		at = next + rel
	}
	if count == 0 {
		return src, 0
	}
	dst.WriteString(src[copied:])
	return dst.String(), count
}

// matchEmailAt checks the address around '@' at src[at] and returns its range
//
// The local part never reaches before lowerBound. An empty local part is only accepted when the address follows a
// replaced one without separator, e.g. the second '@' in "a@b.cd@e.fg".
func matchEmailAt(src string, at int, lowerBound int, afterMatch bool) (int, int, bool) {
	if at == 0 || at == len(src)-1 {
		return 0, 0, false
	}
	if !isClass(src[at-1], classAlnum) || !isClass(src[at+1], classAlnum) {
		return 0, 0, false
	}

	start := at
	for start > lowerBound && isClass(src[start-1], classLocal) {
		start--
	}
	switch {
	case start == at && !(afterMatch && start == lowerBound):
		return 0, 0, false
	case start > 0 && src[start-1] == '/':
		return 0, 0, false
	}

	end := at + 1
	for end < len(src) && isClass(src[end], classDomain) {
		end++
	}
	if !isDomain(src[at+1:end], end == len(src)) {
		return 0, 0, false
	}
	return start, end, true
}

// isDomain checks a domain candidate, which may be cut short if it's at the end of input
func isDomain(domain string, atEnd bool) bool {
	if looksNumeric(domain) {
		return false
	}
	dot := strings.IndexByte(domain, '.')
	switch {
	case dot == -1:
		return atEnd // e.g. "foo@googl" cut by truncation
	case dot == len(domain)-1:
		return atEnd // e.g. "foo@google."
	default:
		return isClass(domain[dot+1], classAlnum)
	}
}

func looksNumeric(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return first >= '0' && first <= '9' && last >= '0' && last <= '9'
}
