package replay

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"
	"google.golang.org/protobuf/encoding/protowire"
)

// ErrInvalidHeader is returned when a file does not start with a known demo header.
var ErrInvalidHeader = errors.New("invalid demo header")

// Demo file stamps.
const (
	StampSource1 = "HL2DEMO"
	StampSource2 = "PBDEMS2"
)

// Source 1 header layout: stamp, two int32 protocols, four 260 byte strings,
// then playback time, ticks, frames and signon length.
const (
	source1NameLen      = 260
	source1ServerOffset = 16
	source1TicksOffset  = 1060
	source1HeaderLen    = 1072
)

// Source 2 demo commands.
const (
	demFileHeader   = 1
	demFileInfo     = 2
	demIsCompressed = 64
)

// CDemoFileHeader and CDemoFileInfo field numbers.
const (
	fieldServerName    protowire.Number = 3
	fieldClientName    protowire.Number = 4
	fieldMapName       protowire.Number = 5
	fieldPlaybackTicks protowire.Number = 2
)

// Header is the demo metadata available without running the parser.
type Header struct {
	Stamp         string
	ServerName    string
	ClientName    string
	MapName       string
	PlaybackTicks int // 0 when not recorded
}

// ReadHeader reads a whole demo from r and decodes its header.
func ReadHeader(r io.Reader) (Header, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Header{}, fmt.Errorf("reading demo: %w", err)
	}
	return ParseHeader(data)
}

// ParseHeader decodes the header of a demo held in memory.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < 8 {
		return Header{}, fmt.Errorf("%w: file too small", ErrInvalidHeader)
	}

	switch stamp := cString(data[:8]); stamp {
	case StampSource1:
		return parseSource1(data)
	case StampSource2:
		return parseSource2(data)
	default:
		return Header{}, fmt.Errorf("%w: unknown stamp %q", ErrInvalidHeader, stamp)
	}
}

func parseSource1(data []byte) (Header, error) {
	if len(data) < source1TicksOffset {
		return Header{}, fmt.Errorf("%w: truncated %s header", ErrInvalidHeader, StampSource1)
	}

	name := func(i int) string {
		start := source1ServerOffset + i*source1NameLen
		return cString(data[start : start+source1NameLen])
	}
	h := Header{
		Stamp:      StampSource1,
		ServerName: name(0),
		ClientName: name(1),
		MapName:    name(2),
	}
	if len(data) >= source1HeaderLen {
		h.PlaybackTicks = int(int32(binary.LittleEndian.Uint32(data[source1TicksOffset:])))
	}
	return h, nil
}

func parseSource2(data []byte) (Header, error) {
	if len(data) < 16 {
		return Header{}, fmt.Errorf("%w: truncated %s header", ErrInvalidHeader, StampSource2)
	}
	fileInfoOffset := int(binary.LittleEndian.Uint32(data[8:12]))

	cmd, msg, err := readMessage(data[16:])
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	if cmd != demFileHeader {
		return Header{}, fmt.Errorf("%w: first message is %d, want file header", ErrInvalidHeader, cmd)
	}

	fields, err := stringFields(msg)
	if err != nil {
		return Header{}, fmt.Errorf("%w: file header: %v", ErrInvalidHeader, err)
	}
	h := Header{
		Stamp:      StampSource2,
		ServerName: fields[fieldServerName],
		ClientName: fields[fieldClientName],
		MapName:    fields[fieldMapName],
	}

	// the file info trailer is missing from demos that were cut short
	if fileInfoOffset > 16 && fileInfoOffset < len(data) {
		if cmd, msg, err := readMessage(data[fileInfoOffset:]); err == nil && cmd == demFileInfo {
			h.PlaybackTicks = varintField(msg, fieldPlaybackTicks)
		}
	}
	return h, nil
}

// readMessage decodes one framed demo message: command, tick and size varints
// followed by the payload, snappy compressed when the command carries the flag.
func readMessage(b []byte) (cmd uint64, payload []byte, err error) {
	cmd, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, nil, fmt.Errorf("command: %w", protowire.ParseError(n))
	}
	b = b[n:]

	if _, n = protowire.ConsumeVarint(b); n < 0 {
		return 0, nil, fmt.Errorf("tick: %w", protowire.ParseError(n))
	}
	b = b[n:]

	size, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, nil, fmt.Errorf("size: %w", protowire.ParseError(n))
	}
	b = b[n:]
	if size > uint64(len(b)) {
		return 0, nil, fmt.Errorf("message size %d exceeds %d remaining bytes", size, len(b))
	}
	payload = b[:size]

	if cmd&demIsCompressed != 0 {
		cmd &^= demIsCompressed
		if payload, err = snappy.Decode(nil, payload); err != nil {
			return 0, nil, fmt.Errorf("decompressing message: %w", err)
		}
	}
	return cmd, payload, nil
}

// stringFields returns the length-delimited fields of a protobuf message.
func stringFields(b []byte) (map[protowire.Number]string, error) {
	out := make(map[protowire.Number]string)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]

		if typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			out[num] = strings.ToValidUTF8(string(v), "")
			b = b[n:]
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]
	}
	return out, nil
}

// varintField returns the first varint field num of a message, or 0.
func varintField(b []byte, num protowire.Number) int {
	for len(b) > 0 {
		n, typ, tagLen := protowire.ConsumeTag(b)
		if tagLen < 0 {
			return 0
		}
		b = b[tagLen:]
		if n == num && typ == protowire.VarintType {
			v, _ := protowire.ConsumeVarint(b)
			return int(int32(v))
		}
		l := protowire.ConsumeFieldValue(n, typ, b)
		if l < 0 {
			return 0
		}
		b = b[l:]
	}
	return 0
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return strings.ToValidUTF8(string(b), "")
}
