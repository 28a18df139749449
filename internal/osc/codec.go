// Package osc speaks OSC 1.0 over UDP: a codec, a receiving server that
// routes messages by address and a client for the dolly commands.
package osc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrTruncated is returned when a packet ends before its declared content.
var ErrTruncated = errors.New("osc: truncated")

const bundleTag = "#bundle"

// Message is a decoded OSC message.
type Message struct {
	Address string
	Args    []any
}

func pad(n int) int {
	return (4 - n%4) % 4
}

func appendString(buf []byte, s string) []byte {
	buf = append(buf, s...)
	buf = append(buf, 0)
	for range pad(len(s) + 1) {
		buf = append(buf, 0)
	}
	return buf
}

// Encode builds a message. Supported argument types are int32, float32,
// string, []byte, int64, float64, bool and nil.
func Encode(addr string, args ...any) ([]byte, error) {
	if len(addr) == 0 || addr[0] != '/' {
		return nil, fmt.Errorf("osc: invalid address %q", addr)
	}
	var buf []byte
	buf = appendString(buf, addr)

	typetag := []byte{','}
	for _, arg := range args {
		switch v := arg.(type) {
		case int32:
			typetag = append(typetag, 'i')
		case float32:
			typetag = append(typetag, 'f')
		case string:
			typetag = append(typetag, 's')
		case []byte:
			typetag = append(typetag, 'b')
		case int64:
			typetag = append(typetag, 'h')
		case float64:
			typetag = append(typetag, 'd')
		case bool:
			if v {
				typetag = append(typetag, 'T')
			} else {
				typetag = append(typetag, 'F')
			}
		case nil:
			typetag = append(typetag, 'N')
		default:
			return nil, fmt.Errorf("osc: unsupported argument type %T", arg)
		}
	}
	buf = appendString(buf, string(typetag))

	for _, arg := range args {
		switch v := arg.(type) {
		case int32:
			buf = binary.BigEndian.AppendUint32(buf, uint32(v))
		case float32:
			buf = binary.BigEndian.AppendUint32(buf, math.Float32bits(v))
		case string:
			buf = appendString(buf, v)
		case []byte:
			buf = binary.BigEndian.AppendUint32(buf, uint32(len(v)))
			buf = append(buf, v...)
			for range pad(len(v)) {
				buf = append(buf, 0)
			}
		case int64:
			buf = binary.BigEndian.AppendUint64(buf, uint64(v))
		case float64:
			buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(v))
		}
	}
	return buf, nil
}

// readString returns the NUL-terminated string at pos and the padded
// position after it.
func readString(data []byte, pos int) (string, int, error) {
	if pos >= len(data) {
		return "", pos, fmt.Errorf("%w string", ErrTruncated)
	}
	end := bytes.IndexByte(data[pos:], 0)
	if end < 0 {
		return "", pos, fmt.Errorf("%w string", ErrTruncated)
	}
	s := string(data[pos : pos+end])
	return s, pos + end + 1 + pad(end+1), nil
}

// Decode parses a single message.
func Decode(data []byte) (Message, error) {
	if len(data) < 4 {
		return Message{}, fmt.Errorf("%w message", ErrTruncated)
	}
	addr, pos, err := readString(data, 0)
	if err != nil {
		return Message{}, err
	}
	msg := Message{Address: addr}
	if pos >= len(data) || data[pos] != ',' {
		return msg, nil
	}
	typetag, pos, err := readString(data, pos)
	if err != nil {
		return msg, err
	}

	for _, t := range typetag[1:] {
		switch t {
		case 'i':
			if pos+4 > len(data) {
				return msg, fmt.Errorf("%w int32", ErrTruncated)
			}
			msg.Args = append(msg.Args, int32(binary.BigEndian.Uint32(data[pos:])))
			pos += 4
		case 'f':
			if pos+4 > len(data) {
				return msg, fmt.Errorf("%w float32", ErrTruncated)
			}
			msg.Args = append(msg.Args, math.Float32frombits(binary.BigEndian.Uint32(data[pos:])))
			pos += 4
		case 's':
			var s string
			if s, pos, err = readString(data, pos); err != nil {
				return msg, err
			}
			msg.Args = append(msg.Args, s)
		case 'b':
			if pos+4 > len(data) {
				return msg, fmt.Errorf("%w blob size", ErrTruncated)
			}
			size := int(binary.BigEndian.Uint32(data[pos:]))
			pos += 4
			if size < 0 || pos+size > len(data) {
				return msg, fmt.Errorf("%w blob", ErrTruncated)
			}
			b := make([]byte, size)
			copy(b, data[pos:pos+size])
			msg.Args = append(msg.Args, b)
			pos += size + pad(size)
		case 'h':
			if pos+8 > len(data) {
				return msg, fmt.Errorf("%w int64", ErrTruncated)
			}
			msg.Args = append(msg.Args, int64(binary.BigEndian.Uint64(data[pos:])))
			pos += 8
		case 'd':
			if pos+8 > len(data) {
				return msg, fmt.Errorf("%w float64", ErrTruncated)
			}
			msg.Args = append(msg.Args, math.Float64frombits(binary.BigEndian.Uint64(data[pos:])))
			pos += 8
		case 'T':
			msg.Args = append(msg.Args, true)
		case 'F':
			msg.Args = append(msg.Args, false)
		case 'N':
			msg.Args = append(msg.Args, nil)
		default:
			return msg, fmt.Errorf("osc: unknown type tag %q", t)
		}
	}
	return msg, nil
}

// DecodePacket parses a message or a bundle, flattening nested bundles in
// order.
func DecodePacket(data []byte) ([]Message, error) {
	if !bytes.HasPrefix(data, []byte(bundleTag+"\x00")) {
		m, err := Decode(data)
		if err != nil {
			return nil, err
		}
		return []Message{m}, nil
	}

	// tag (8) + time tag (8)
	pos := 16
	if len(data) < pos {
		return nil, fmt.Errorf("%w bundle", ErrTruncated)
	}
	var out []Message
	for pos < len(data) {
		if pos+4 > len(data) {
			return out, fmt.Errorf("%w bundle element size", ErrTruncated)
		}
		size := int(binary.BigEndian.Uint32(data[pos:]))
		pos += 4
		if size < 0 || pos+size > len(data) {
			return out, fmt.Errorf("%w bundle element", ErrTruncated)
		}
		msgs, err := DecodePacket(data[pos : pos+size])
		if err != nil {
			return out, err
		}
		out = append(out, msgs...)
		pos += size
	}
	return out, nil
}
