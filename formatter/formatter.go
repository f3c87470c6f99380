// Package formatter renders stamped record lines and converts arbitrary
// values into record payload text.
package formatter

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/davecgh/go-spew/spew"
	"github.com/lixenwraith/blocklog/sanitizer"
)

// Line layout: "<elapsed> ms ; <payload> \n"
const (
	stampSuffix = " ms "
	separator   = "; "
	lineEnd     = " \n"
)

// LineOverhead is the number of bytes a stamped line adds besides the digits of
// the elapsed stamp and the payload itself
const LineOverhead = len(stampSuffix) + len(separator) + len(lineEnd)

// dumper renders composite values on a single line
var dumper = &spew.ConfigState{
	Indent:                  "",
	MaxDepth:                4,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          false,
	SortKeys:                true,
}

// Formatter manages the buffered formatting of record lines
type Formatter struct {
	sanitizer *sanitizer.Sanitizer
	buf       []byte
}

// New creates a formatter with the provided sanitizer
func New(s ...*sanitizer.Sanitizer) *Formatter {
	var san *sanitizer.Sanitizer
	if len(s) > 0 && s[0] != nil {
		san = s[0]
	} else {
		san = sanitizer.New() // Default passthrough sanitizer
	}
	return &Formatter{
		sanitizer: san,
		buf:       make([]byte, 0, 64),
	}
}

// Format stamps the payload with the elapsed time in milliseconds.
// The returned slice is only valid until the next call.
func (f *Formatter) Format(elapsed time.Duration, payload string) []byte {
	f.Reset()
	f.buf = strconv.AppendInt(f.buf, elapsed.Milliseconds(), 10)
	f.buf = append(f.buf, stampSuffix...)
	f.buf = append(f.buf, separator...)
	f.buf = append(f.buf, f.sanitizer.Sanitize(payload)...)
	f.buf = append(f.buf, lineEnd...)
	return f.buf
}

// FormatArgs formats multiple arguments as a space-separated payload
func (f *Formatter) FormatArgs(args ...any) string {
	var buf []byte
	for i, arg := range args {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = appendValue(buf, arg)
	}
	return string(buf)
}

// Reset clears the formatter buffer for reuse
func (f *Formatter) Reset() {
	f.buf = f.buf[:0]
}

// appendValue converts a single value to its payload representation
func appendValue(buf []byte, v any) []byte {
	switch val := v.(type) {
	case string:
		return append(buf, val...)
	case []byte:
		return append(buf, val...)
	case rune:
		return utf8.AppendRune(buf, val)
	case int:
		return strconv.AppendInt(buf, int64(val), 10)
	case int64:
		return strconv.AppendInt(buf, val, 10)
	case uint:
		return strconv.AppendUint(buf, uint64(val), 10)
	case uint64:
		return strconv.AppendUint(buf, val, 10)
	case float32:
		return strconv.AppendFloat(buf, float64(val), 'f', -1, 32)
	case float64:
		return strconv.AppendFloat(buf, val, 'f', -1, 64)
	case bool:
		return strconv.AppendBool(buf, val)
	case nil:
		return append(buf, "nil"...)
	case time.Duration:
		return append(buf, val.String()...)
	case error:
		return append(buf, val.Error()...)
	case fmt.Stringer:
		return append(buf, val.String()...)
	default:
		var b bytes.Buffer
		dumper.Fprint(&b, val)
		return append(buf, bytes.TrimSpace(b.Bytes())...)
	}
}
