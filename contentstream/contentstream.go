package contentstream

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/wudi/reportkit/ir/semantic"
)

// Encode serialises operations into content stream bytes, one operator per line.
func Encode(ops []semantic.Operation) []byte {
	var buf bytes.Buffer
	for _, op := range ops {
		for i, operand := range op.Operands {
			if i > 0 {
				buf.WriteByte(' ')
			}
			buf.Write(encodeOperand(operand))
		}
		if len(op.Operands) > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(op.Operator)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func encodeOperand(op semantic.Operand) []byte {
	switch v := op.(type) {
	case semantic.NumberOperand:
		return []byte(FormatNumber(v.Value))
	case semantic.NameOperand:
		return []byte("/" + v.Value)
	case semantic.StringOperand:
		return EscapeLiteralString(v.Value)
	case semantic.ArrayOperand:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, it := range v.Values {
			if i > 0 {
				buf.WriteByte(' ')
			}
			buf.Write(encodeOperand(it))
		}
		buf.WriteByte(']')
		return buf.Bytes()
	default:
		return []byte("null")
	}
}

// FormatNumber renders v with at most four decimals and never in exponent
// form, which PDF does not allow.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	r := math.Round(v*10000) / 10000
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// EscapeLiteralString wraps raw bytes in a PDF literal string.
func EscapeLiteralString(rawBytes []byte) []byte {
	var b bytes.Buffer
	b.WriteByte('(')
	for _, ch := range rawBytes {
		switch ch {
		case '\\', '(', ')':
			b.WriteByte('\\')
			b.WriteByte(ch)
		case '\n':
			b.WriteString("\\n")
		case '\r':
			b.WriteString("\\r")
		case '\t':
			b.WriteString("\\t")
		default:
			if ch < 0x20 || ch >= 0x80 {
				fmt.Fprintf(&b, "\\%03o", ch)
			} else {
				b.WriteByte(ch)
			}
		}
	}
	b.WriteByte(')')
	return b.Bytes()
}

// Operators returns the operator of each operation in order.
func Operators(ops []semantic.Operation) []string {
	out := make([]string, 0, len(ops))
	for _, op := range ops {
		out = append(out, op.Operator)
	}
	return out
}
