package pdfsrc

import (
	"bytes"
	"io"
)

// Stack is the small LIFO operand stack a content-stream or CMap program
// pushes values onto between operators.
type Stack struct {
	stk []Value
}

func (s *Stack) Push(v Value) { s.stk = append(s.stk, v) }

func (s *Stack) Pop() Value {
	if len(s.stk) == 0 {
		return Value{}
	}
	v := s.stk[len(s.stk)-1]
	s.stk = s.stk[:len(s.stk)-1]
	return v
}

func (s *Stack) Len() int { return len(s.stk) }

// Interpret runs the PostScript-like operand/operator program found in v (a
// stream, or an array of streams concatenated per the PDF content-stream
// rules) calling fn once per operator with the stack of operands collected
// since the previous operator.
func Interpret(v Value, fn func(stk *Stack, op string)) {
	var body bytes.Buffer
	switch v.Kind() {
	case Stream:
		io.Copy(&body, v.Reader())
	case Array:
		for i := 0; i < v.Len(); i++ {
			io.Copy(&body, v.Index(i).Reader())
			body.WriteByte('\n')
		}
	default:
		return
	}

	r, ptr := v.r, v.ptr
	tb := newBuffer(bytes.NewReader(body.Bytes()), 0)
	var stk Stack
	for {
		tok := tb.readToken()
		if tok == nil {
			return
		}
		kw, isKeyword := tok.(keyword)
		if !isKeyword {
			stk.Push(Value{r, ptr, tok})
			continue
		}
		switch string(kw) {
		case "true":
			stk.Push(Value{r, ptr, true})
		case "false":
			stk.Push(Value{r, ptr, false})
		case "null":
			stk.Push(Value{r, ptr, nil})
		case "[":
			stk.Push(Value{r, ptr, tb.readArray()})
		case "<<":
			stk.Push(Value{r, ptr, tb.readDictOrStream()})
		case "BI":
			tb.skipInlineImage()
		default:
			fn(&stk, string(kw))
			stk.stk = stk.stk[:0]
		}
	}
}

// skipInlineImage discards an inline image's binary data (BI ... ID ... EI),
// which the tokenizer can't otherwise distinguish from content operators.
func (b *buffer) skipInlineImage() {
	for {
		tok := b.readToken()
		if tok == nil {
			return
		}
		if tok == keyword("ID") {
			break
		}
	}
	if c, ok := b.peekByte(); ok && isWhite(c) {
		b.readByte()
	}
	marker := []byte("EI")
	idx := bytes.Index(b.buf[b.i:], marker)
	if idx < 0 {
		b.i = len(b.buf)
	} else {
		b.i += idx + len(marker)
	}
	b.sync()
}
