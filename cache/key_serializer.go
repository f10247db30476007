package cache

import (
	"fmt"
	"strconv"
	"strings"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// defaultKeySerializer joins segments with KeySeparator. Segments are
// namespaces, kinds, owner ids and generations.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

func (s *defaultKeySerializer) SerializeKey(method string, args ...any) string {
	if len(args) == 0 {
		return method
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, method)
	for _, arg := range args {
		parts = append(parts, s.serializeValue(arg))
	}

	return strings.Join(parts, KeySeparator)
}

func (s *defaultKeySerializer) serializeValue(v any) string {
	switch tv := v.(type) {
	case nil:
		return "nil"
	case string:
		return tv
	case uint64:
		return strconv.FormatUint(tv, 10)
	case int64:
		return strconv.FormatInt(tv, 10)
	case int:
		return strconv.Itoa(tv)
	case fmt.Stringer:
		return tv.String()
	}
	return fmt.Sprintf("%v", v)
}

// KeyPrefix returns the prefix shared by every key that starts with the
// given segments, suitable for CacheService.DeleteByPrefix.
func KeyPrefix(segments ...string) string {
	return strings.Join(segments, KeySeparator) + KeySeparator
}
