// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the merkleized-metadata library.

package scaleutils

import (
	"fmt"
	"io"
	"math"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// StreamEncoder encodes into an io.Writer, typically a bytes.Buffer or a running hash.
type StreamEncoder struct {
	writer   io.Writer
	encoder  *scale.Encoder
	position int
	writeErr error
}

var _ Encoder = (*StreamEncoder)(nil)

func NewStreamEncoder(writer io.Writer) *StreamEncoder {
	e := &StreamEncoder{
		writer: writer,
	}
	e.encoder = scale.NewEncoder(&countingWriter{enc: e})
	return e
}

type countingWriter struct {
	enc *StreamEncoder
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.enc.writer.Write(p)
	w.enc.position += n
	if err == nil && n != len(p) {
		err = fmt.Errorf("expected to write %d bytes, wrote %d", len(p), n)
	}
	return n, err
}

func (e *StreamEncoder) GetPosition() int {
	return e.position
}

func (e *StreamEncoder) Err() error {
	return e.writeErr
}

func (e *StreamEncoder) setErr(err error) {
	if err != nil && e.writeErr == nil {
		e.writeErr = err
	}
}

func (e *StreamEncoder) EncodeBool(v bool) {
	if e.writeErr != nil {
		return
	}
	e.setErr(e.encoder.Encode(v))
}

func (e *StreamEncoder) EncodeUint8(v uint8) {
	if e.writeErr != nil {
		return
	}
	e.setErr(e.encoder.PushByte(v))
}

func (e *StreamEncoder) EncodeUint16(v uint16) {
	if e.writeErr != nil {
		return
	}
	e.setErr(e.encoder.Encode(v))
}

func (e *StreamEncoder) EncodeUint32(v uint32) {
	if e.writeErr != nil {
		return
	}
	e.setErr(e.encoder.Encode(v))
}

// EncodeCompact writes v as a SCALE Compact<u32>.
func (e *StreamEncoder) EncodeCompact(v uint32) {
	if e.writeErr != nil {
		return
	}
	e.setErr(e.encoder.EncodeUintCompact(*new(big.Int).SetUint64(uint64(v))))
}

// EncodeLength writes a collection length prefix. Lengths are Compact<u32> on the wire,
// anything larger fails with ErrEncodingOverflow.
func (e *StreamEncoder) EncodeLength(n int) {
	if e.writeErr != nil {
		return
	}
	if n < 0 || uint64(n) > math.MaxUint32 {
		e.setErr(fmt.Errorf("%w: length %d exceeds compact u32 range", ErrEncodingOverflow, n))
		return
	}
	e.EncodeCompact(uint32(n))
}

func (e *StreamEncoder) EncodeBytes(v []byte) {
	if e.writeErr != nil || len(v) == 0 {
		return
	}
	e.setErr(e.encoder.Write(v))
}

func (e *StreamEncoder) EncodeString(v string) {
	e.EncodeLength(len(v))
	e.EncodeBytes([]byte(v))
}

func (e *StreamEncoder) EncodeOptionString(v *string) {
	if v == nil {
		e.EncodeUint8(0x00)
		return
	}
	e.EncodeUint8(0x01)
	e.EncodeString(*v)
}
