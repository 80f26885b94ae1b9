// SPDX-FileCopyrightText:  Copyright 2024 Roland Csaszar
// SPDX-License-Identifier: MIT
//
// Project:  go-coded-buffer
// File:     codedstring.go
//
// =============================================================================

// CodedString layers a rune-addressed view over a ByteBuffer. It keeps a
// run-length index of "bytes per rune" so that rune<->byte mapping stays
// cheap even for long stretches of fixed-width encoding (plain ASCII, or a
// long run of 3-byte UTF-8 CJK text), without ever materializing the whole
// decoded string to answer a single index query.
package gapbuffer

import (
	"fmt"
	"iter"
)

// run describes a maximal stretch of count consecutive runes that each
// take bpr bytes to encode. Adjacent runs in a CodedString's index always
// have different bpr (runs are maximally coalesced, except for the
// documented limitation of Delete — see deleteOne).
type run struct {
	bpr   int
	count int
}

// CodedString is a mutable sequence of single-character strings (runes)
// backed by a ByteBuffer and a chosen byte encoding.
//
// The zero value is not usable; construct one with NewCodedString.
type CodedString struct {
	buf    *ByteBuffer
	codec  Codec
	runs   []run
	length int
}

// NewCodedString wraps buf (or a fresh, empty ByteBuffer if buf is nil) as
// a CodedString under the named encoding ("" means "utf-8"). The initial
// rune index is built by fully, incrementally decoding buf's current
// contents.
//
// For as long as cs is in use, buf must not be mutated by anyone other
// than cs; otherwise the rune index silently falls out of step with buf's
// contents (spec.md §5).
func NewCodedString(buf *ByteBuffer, encodingName string) (*CodedString, error) {
	if buf == nil {
		buf = New()
	}

	codec, err := LookupCodec(encodingName)
	if err != nil {
		return nil, err
	}

	cs := &CodedString{buf: buf, codec: codec}
	cs.reindex()

	return cs, nil
}

func (cs *CodedString) reindex() {
	data, _ := cs.buf.Slice(nil, nil, 1)
	cs.runs, cs.length = decodeRuns(data, cs.codec)
}

// decodeRuns implements spec.md §4.2.1: feed the incremental decoder one
// byte at a time, and whenever it emits k >= 1 runes, attribute
// bpr = bytesSincePreviousEmission / k to each of those k runes, coalescing
// into the run-length index as we go.
func decodeRuns(data []byte, codec Codec) ([]run, int) {
	dec := codec.NewDecoder()

	var runs []run

	var cur *run

	length := 0
	nBytes := 0

	for i := 0; i < len(data); i++ {
		final := i == len(data)-1
		nBytes++

		emitted := dec.Decode(data[i:i+1], final)
		if len(emitted) == 0 {
			continue
		}

		bpr := nBytes / len(emitted)
		nBytes = 0
		length += len(emitted)

		for range emitted {
			switch {
			case cur == nil:
				cur = &run{bpr: bpr, count: 1}
			case cur.bpr != bpr:
				runs = append(runs, *cur)
				cur = &run{bpr: bpr, count: 1}
			default:
				cur.count++
			}
		}
	}

	if cur != nil {
		runs = append(runs, *cur)
	}

	return runs, length
}

// Length returns the number of runes in the string.
func (cs *CodedString) Length() int { return cs.length }

// Encoding returns the canonical name of the encoding this CodedString
// decodes and encodes under.
func (cs *CodedString) Encoding() string { return cs.codec.Name() }

// Buffer returns a read-only view of the underlying ByteBuffer.
func (cs *CodedString) Buffer() ByteReader { return cs.buf }

// findRun locates the run covering rune index i (which must already be
// non-negative), returning the byte and rune offset at which that run
// begins, the run's index in cs.runs, and a copy of the run itself.
func (cs *CodedString) findRun(i int) (byteOffset, runeOffset, runIdx int, r run, err error) {
	if i < 0 {
		return 0, 0, 0, run{}, fmt.Errorf("%w: %d", ErrOutOfRange, i)
	}

	bo, ro := 0, 0

	for idx, rr := range cs.runs {
		if ro <= i && i < ro+rr.count {
			return bo, ro, idx, rr, nil
		}

		bo += rr.bpr * rr.count
		ro += rr.count
	}

	return 0, 0, 0, run{}, fmt.Errorf("%w: %d", ErrOutOfRange, i)
}

// ByteSlice returns the half-open byte range in the underlying buffer that
// encodes rune i. Negative i counts from the end.
func (cs *CodedString) ByteSlice(i int) (start, stop int, err error) {
	idx := i
	if idx < 0 {
		idx += cs.length
	}

	bo, ro, _, r, err := cs.findRun(idx)
	if err != nil {
		return 0, 0, err
	}

	start = bo + r.bpr*(idx-ro)

	return start, start + r.bpr, nil
}

// MapByteToRune returns the index of the rune whose encoding covers byte b.
func (cs *CodedString) MapByteToRune(b int) (int, error) {
	if b < 0 || b >= cs.buf.Len() {
		return 0, fmt.Errorf("%w: %d", ErrOutOfRange, b)
	}

	byteIdx, runeIdx := 0, 0

	for _, r := range cs.runs {
		span := r.bpr * r.count
		if byteIdx <= b && b < byteIdx+span {
			return runeIdx + (b-byteIdx)/r.bpr, nil
		}

		byteIdx += span
		runeIdx += r.count
	}

	return 0, fmt.Errorf("%w: %d", ErrOutOfRange, b)
}

func (cs *CodedString) decodeFully(bs []byte) string {
	dec := cs.codec.NewDecoder()

	return string(dec.Decode(bs, true))
}

// Read returns the decoded rune at index i, as a single-character string
// (a malformed byte range decodes to the replacement character). Negative
// i counts from the end.
func (cs *CodedString) Read(i int) (string, error) {
	start, stop, err := cs.ByteSlice(i)
	if err != nil {
		return "", err
	}

	bs, err := cs.buf.Slice(&start, &stop, 1)
	if err != nil {
		return "", err
	}

	return cs.decodeFully(bs), nil
}

// ReadSlice returns the decoded substring [start:stop:step]. For
// step == 1 this is the contiguous decoded range; for any other non-zero
// step, the contiguous range [start, stop) is decoded first and then
// stepped over from its first rune (or, for a negative step, from its last
// rune), so ReadSlice(0, n, -1) is the whole range reversed.
func (cs *CodedString) ReadSlice(start, stop, step int) (string, error) {
	if step == 0 {
		return "", ErrInvalidStep
	}

	n := cs.length
	if n == 0 {
		return "", nil
	}

	start = clampIndex(start, n)
	stop = clampIndex(stop, n)

	byteStart, err := cs.runeBoundaryByte(start)
	if err != nil {
		return "", err
	}

	byteStop, err := cs.runeBoundaryByte(stop)
	if err != nil {
		return "", err
	}

	if byteStop < byteStart {
		byteStop = byteStart
	}

	raw, err := cs.buf.Slice(&byteStart, &byteStop, 1)
	if err != nil {
		return "", err
	}

	s := cs.decodeFully(raw)
	if step == 1 {
		return s, nil
	}

	runes := []rune(s)
	lo, hi := sliceBounds(len(runes), nil, nil, step)
	idxs := stepWalk(lo, hi, step)
	out := make([]rune, len(idxs))

	for i, idx := range idxs {
		out[i] = runes[idx]
	}

	return string(out), nil
}

// runeBoundaryByte returns the byte offset at which rune index i begins,
// or the byte length of the buffer if i is (or is clamped to) cs.length.
func (cs *CodedString) runeBoundaryByte(i int) (int, error) {
	if i >= cs.length {
		return cs.buf.Len(), nil
	}

	start, _, err := cs.ByteSlice(i)

	return start, err
}

// deleteOne removes the rune at index i (which must be valid), updating
// the run index and decrementing length.
//
// Per spec.md §9, a run whose count drops to zero is simply removed: its
// now-adjacent neighbors are not re-coalesced even if they happen to share
// a bpr. This mirrors the Python original's behavior exactly (see
// DESIGN.md for the decision to preserve rather than fix this).
func (cs *CodedString) deleteOne(i int) {
	bo, ro, idx, r, err := cs.findRun(i)
	if err != nil {
		return
	}

	start := bo + r.bpr*(i-ro)
	cs.buf.Delete(start, start+r.bpr)

	if r.count > 1 {
		cs.runs[idx].count--
	} else {
		cs.runs = append(cs.runs[:idx], cs.runs[idx+1:]...)
	}

	cs.length--
}

// Delete removes the rune range [start, stop), clamped per standard slice
// rules.
func (cs *CodedString) Delete(start, stop int) {
	n := cs.length
	start = clampIndex(start, n)
	stop = clampIndex(stop, n)

	for stop > start {
		cs.deleteOne(start)
		stop--
	}
}

// Assign replaces the single rune at index i with s (which may itself
// decode to any number of runes). Equivalent to AssignSlice(i, i+1, s).
func (cs *CodedString) Assign(i int, s string) {
	cs.AssignSlice(i, i+1, s)
}

// Insert inserts the runes of s before rune index i. Equivalent to
// AssignSlice(i, i, s).
func (cs *CodedString) Insert(i int, s string) {
	cs.AssignSlice(i, i, s)
}

// AssignSlice replaces the rune range [start, stop) with the runes decoded
// from s, implementing spec.md §4.2.3's delete-then-splice algorithm.
func (cs *CodedString) AssignSlice(start, stop int, s string) {
	n := cs.length
	start = clampIndex(start, n)
	stop = clampIndex(stop, n)

	cs.Delete(start, stop)

	encoded := cs.codec.NewEncoder().Encode(s)
	vRuns, vLen := decodeRuns(encoded, cs.codec)

	switch {
	case len(cs.runs) == 0:
		cs.buf.AssignSlice(0, cs.buf.Len(), encoded)
		cs.runs = vRuns
		cs.length = vLen

	case len(vRuns) == 0:
		return

	case start < cs.length:
		cs.spliceMid(start, encoded, vRuns, vLen)

	default:
		cs.spliceAppend(encoded, vRuns, vLen)
	}
}

// spliceMid handles the "start < length" branch of AssignSlice: the target
// run is split into a head and tail around start, vRuns is dropped in
// between (coalescing with head/tail where the bpr matches), and the
// result replaces the target run in cs.runs.
func (cs *CodedString) spliceMid(start int, encoded []byte, vRuns []run, vLen int) {
	bo, ro, idx, r, err := cs.findRun(start)
	if err != nil {
		return
	}

	delta := start - ro
	head := run{bpr: r.bpr, count: delta}
	tail := run{bpr: r.bpr, count: r.count - delta}

	spliced := make([]run, 0, len(vRuns)+2)

	switch {
	case head.count == 0:
		spliced = append(spliced, vRuns...)
	case vRuns[0].bpr == head.bpr:
		spliced = append(spliced, run{bpr: head.bpr, count: head.count + vRuns[0].count})
		spliced = append(spliced, vRuns[1:]...)
	default:
		spliced = append(spliced, head)
		spliced = append(spliced, vRuns...)
	}

	if tail.count > 0 {
		last := len(spliced) - 1
		if last >= 0 && spliced[last].bpr == tail.bpr {
			spliced[last].count += tail.count
		} else {
			spliced = append(spliced, tail)
		}
	}

	byteOffset := bo + r.bpr*delta
	cs.buf.InsertSlice(byteOffset, encoded)

	newRuns := make([]run, 0, len(cs.runs)-1+len(spliced))
	newRuns = append(newRuns, cs.runs[:idx]...)

	if head.count == 0 && idx > 0 && newRuns[idx-1].bpr == spliced[0].bpr {
		newRuns[idx-1].count += spliced[0].count
		spliced = spliced[1:]
	}

	newRuns = append(newRuns, spliced...)
	newRuns = append(newRuns, cs.runs[idx+1:]...)
	cs.runs = newRuns
	cs.length += vLen
}

// spliceAppend handles the "start >= length" branch of AssignSlice: vRuns
// is appended to the end of cs.runs, coalescing with the current last run
// where the bpr matches.
func (cs *CodedString) spliceAppend(encoded []byte, vRuns []run, vLen int) {
	if len(cs.runs) > 0 && cs.runs[len(cs.runs)-1].bpr == vRuns[0].bpr {
		cs.runs[len(cs.runs)-1].count += vRuns[0].count
		cs.runs = append(cs.runs, vRuns[1:]...)
	} else {
		cs.runs = append(cs.runs, vRuns...)
	}

	cs.buf.InsertSlice(cs.buf.Len(), encoded)
	cs.length += vLen
}

// All returns a restartable iterator over the string's runes, each
// produced as a single-character string. Runes are produced run-by-run,
// bulk-decoding each run's bytes rather than decoding one rune at a time.
func (cs *CodedString) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		byteIdx := 0

		for _, r := range cs.runs {
			span := r.bpr * r.count
			from, to := byteIdx, byteIdx+span

			bs, err := cs.buf.Slice(&from, &to, 1)
			if err != nil {
				return
			}

			for _, rn := range cs.decodeFully(bs) {
				if !yield(string(rn)) {
					return
				}
			}

			byteIdx += span
		}
	}
}
