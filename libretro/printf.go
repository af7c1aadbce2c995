package libretro

import (
	"strconv"
	"strings"
	"unsafe"
)

// Sprintf renders a C printf format using integer-class variadic arguments.
//
// The log interface is variadic and the host only receives the arguments
// that travel in general purpose registers, so floating point conversions
// cannot be recovered and render as "?". Running out of arguments renders
// the remaining conversions as "?" too.
func Sprintf(format string, args []uintptr) string {
	var b strings.Builder
	next := func() (uintptr, bool) {
		if len(args) == 0 {
			return 0, false
		}
		a := args[0]
		args = args[1:]
		return a, true
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(format) {
			b.WriteByte('%')
			break
		}
		if format[i] == '%' {
			b.WriteByte('%')
			continue
		}

		var spec printfSpec
		for ; i < len(format) && strings.IndexByte("-+ 0#", format[i]) >= 0; i++ {
			switch format[i] {
			case '-':
				spec.left = true
			case '0':
				spec.zero = true
			case '+':
				spec.plus = true
			case '#':
				spec.alt = true
			}
		}
		if i < len(format) && format[i] == '*' {
			a, _ := next()
			spec.width = int(int32(a))
			i++
		}
		for ; i < len(format) && format[i] >= '0' && format[i] <= '9'; i++ {
			spec.width = spec.width*10 + int(format[i]-'0')
		}
		spec.prec = -1
		if i < len(format) && format[i] == '.' {
			i++
			spec.prec = 0
			if i < len(format) && format[i] == '*' {
				a, _ := next()
				spec.prec = int(int32(a))
				i++
			}
			for ; i < len(format) && format[i] >= '0' && format[i] <= '9'; i++ {
				spec.prec = spec.prec*10 + int(format[i]-'0')
			}
		}
		size := 32
		for ; i < len(format) && strings.IndexByte("hlLqjzt", format[i]) >= 0; i++ {
			switch format[i] {
			case 'h':
				if size == 16 {
					size = 8
				} else {
					size = 16
				}
			default:
				size = 64
			}
		}
		if i >= len(format) {
			break
		}

		verb := format[i]
		var s string
		switch verb {
		case 'd', 'i':
			a, ok := next()
			if !ok {
				s = "?"
				break
			}
			v := signExtend(a, size)
			s = strconv.FormatInt(v, 10)
			if spec.plus && v >= 0 {
				s = "+" + s
			}
		case 'u', 'x', 'X', 'o':
			a, ok := next()
			if !ok {
				s = "?"
				break
			}
			v := zeroExtend(a, size)
			base := 10
			switch verb {
			case 'x', 'X':
				base = 16
			case 'o':
				base = 8
			}
			s = strconv.FormatUint(v, base)
			if verb == 'X' {
				s = strings.ToUpper(s)
			}
			if spec.alt && v != 0 {
				switch verb {
				case 'x':
					s = "0x" + s
				case 'X':
					s = "0X" + s
				case 'o':
					s = "0" + s
				}
			}
		case 'c':
			a, ok := next()
			if !ok {
				s = "?"
				break
			}
			s = string(rune(byte(a)))
		case 's':
			a, ok := next()
			if !ok {
				s = "?"
				break
			}
			if a == 0 {
				s = "(null)"
			} else {
				s = GoString((*byte)(unsafe.Pointer(a)))
			}
			if spec.prec >= 0 && spec.prec < len(s) {
				s = s[:spec.prec]
			}
		case 'p':
			a, ok := next()
			if !ok {
				s = "?"
				break
			}
			s = "0x" + strconv.FormatUint(uint64(a), 16)
		case 'f', 'F', 'e', 'E', 'g', 'G', 'a', 'A':
			s = "?"
		default:
			s = "%" + string(verb)
		}
		b.WriteString(spec.pad(s))
	}
	return b.String()
}

type printfSpec struct {
	left  bool
	zero  bool
	plus  bool
	alt   bool
	width int
	prec  int
}

func (p printfSpec) pad(s string) string {
	if p.width <= len(s) {
		return s
	}
	n := p.width - len(s)
	if p.left {
		return s + strings.Repeat(" ", n)
	}
	if p.zero {
		if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
			return s[:1] + strings.Repeat("0", n) + s[1:]
		}
		return strings.Repeat("0", n) + s
	}
	return strings.Repeat(" ", n) + s
}

func signExtend(a uintptr, size int) int64 {
	switch size {
	case 8:
		return int64(int8(a))
	case 16:
		return int64(int16(a))
	case 32:
		return int64(int32(a))
	}
	return int64(a)
}

func zeroExtend(a uintptr, size int) uint64 {
	switch size {
	case 8:
		return uint64(uint8(a))
	case 16:
		return uint64(uint16(a))
	case 32:
		return uint64(uint32(a))
	}
	return uint64(a)
}
