// SPDX-License-Identifier: MIT
package udp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

/*
UDP Packet Structure (BigEndian)

	|<---- 4 Bytes ---->|<------ 8 Bytes ------>|<-- 2 Bytes -->|<----- N * 4 Bytes ----->|
	+-------------------+-----------------------+---------------+-------------------------+
	|  Sequence Number  |       Timestamp       |  Value Count  |         Heights         |
	|      (uint32)     |  (int64, unix nanos)  |   (uint16)    |      (N * float32)      |
	+-------------------+-----------------------+---------------+-------------------------+
*/

const (
	headerSize = 4 + 8 + 2

	// MaxValues is the largest number of heights a packet can carry.
	MaxValues = math.MaxUint16
)

// AppendPacket appends one encoded packet to dst. Values beyond MaxValues
// are dropped.
func AppendPacket(dst []byte, seq uint32, timestamp int64, values []float64) []byte {
	if len(values) > MaxValues {
		values = values[:MaxValues]
	}
	dst = binary.BigEndian.AppendUint32(dst, seq)
	dst = binary.BigEndian.AppendUint64(dst, uint64(timestamp))
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(values)))
	for _, v := range values {
		dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(float32(v)))
	}
	return dst
}

// Packet is a decoded datagram.
type Packet struct {
	Seq       uint32
	Timestamp int64
	Values    []float32
}

var errShortPacket = errors.New("short packet")

// DecodePacket parses a datagram produced by AppendPacket.
func DecodePacket(b []byte) (Packet, error) {
	if len(b) < headerSize {
		return Packet{}, errShortPacket
	}
	p := Packet{
		Seq:       binary.BigEndian.Uint32(b[0:4]),
		Timestamp: int64(binary.BigEndian.Uint64(b[4:12])),
	}
	n := int(binary.BigEndian.Uint16(b[12:14]))
	body := b[headerSize:]
	if len(body) != n*4 {
		return Packet{}, fmt.Errorf("packet declares %d values but carries %d bytes", n, len(body))
	}
	p.Values = make([]float32, n)
	for i := range p.Values {
		p.Values[i] = math.Float32frombits(binary.BigEndian.Uint32(body[i*4:]))
	}
	return p, nil
}
