package form

import (
	"strconv"
	"strings"
)

// Kind tags how a raw form key was interpreted.
type Kind int

const (
	// KindScalar is a plain key, including any key whose bracket syntax did
	// not parse.
	KindScalar Kind = iota
	// KindIndexed is prefix[i] or prefix[i][subfield].
	KindIndexed
	// KindBare is a sequence prefix sent without brackets.
	KindBare
	// KindNamed is prefix[name] or prefix[name][child].
	KindNamed
)

// Key is a parsed multipart field name.
type Key struct {
	Raw      string
	Kind     Kind
	Prefix   string
	Index    int
	Subfield string
	Path     []string
}

// ParseKey never fails; malformed bracket keys come back as KindScalar.
func ParseKey(raw string) Key {
	open := strings.IndexByte(raw, '[')
	if open < 0 {
		if sequencePrefixes[raw] {
			return Key{Raw: raw, Kind: KindBare, Prefix: raw}
		}
		return scalarKey(raw)
	}
	if open == 0 {
		return scalarKey(raw)
	}

	prefix := raw[:open]
	segments, ok := parseSegments(raw[open:])
	if !ok {
		return scalarKey(raw)
	}

	if index, ok := parseIndex(segments[0]); ok {
		switch len(segments) {
		case 1:
			return Key{Raw: raw, Kind: KindIndexed, Prefix: prefix, Index: index}
		case 2:
			return Key{Raw: raw, Kind: KindIndexed, Prefix: prefix, Index: index, Subfield: segments[1]}
		default:
			return scalarKey(raw)
		}
	}

	return Key{Raw: raw, Kind: KindNamed, Prefix: prefix, Path: segments}
}

func scalarKey(raw string) Key {
	return Key{Raw: raw, Kind: KindScalar, Prefix: raw}
}

// parseSegments splits "[a][b]" into ["a", "b"].
func parseSegments(s string) ([]string, bool) {
	var segments []string
	for len(s) > 0 {
		if s[0] != '[' {
			return nil, false
		}
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return nil, false
		}
		segment := s[1:end]
		if segment == "" || strings.IndexByte(segment, '[') >= 0 {
			return nil, false
		}
		segments = append(segments, segment)
		s = s[end+1:]
	}
	return segments, len(segments) > 0
}

func parseIndex(segment string) (int, bool) {
	for _, r := range segment {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	index, err := strconv.Atoi(segment)
	if err != nil || index > maxIndex {
		return 0, false
	}
	return index, true
}
