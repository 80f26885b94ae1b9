// SPDX-FileCopyrightText:  Copyright 2024 Roland Csaszar
// SPDX-License-Identifier: MIT
//
// Project:  go-coded-buffer
// File:     bytebuffer.go
// Date:     07.Feb.2024
//
// =============================================================================

// This library implements a gap buffer, a mutable byte sequence with a
// movable "gap" at the point of the last edit, suited to the locally
// clustered inserts and deletes a text editor's document representation
// sees. A ByteBuffer is an array with a gap at the edit position, where
// bytes are inserted and deleted:
//
// The string "Hello world!" with the gap just after "Hello" looks like
// this in a ByteBuffer:
//
//	Hello|<  gap  >| world!
//
//	['H','e','l','l','o', 0xFF,0xFF,0xFF,0xFF,0xFF, ' ','w','o','r','l','d','!']
//	  0    1   2   3   4  |        gap         |   5   6   7   8   9  10  11
//
// Insertion happens at the gap boundary by writing into the gap's start and
// advancing it; any other index first moves the gap there. Deletion works
// the same way, by widening the gap over the deleted bytes. A CodedString
// (see codedstring.go) layers a rune-addressed view on top of a ByteBuffer
// using this package's encoding support.
package gapbuffer

import (
	"bytes"
	"fmt"
	"iter"
)

const (
	// gapFillByte is written into unused gap storage. It is purely a
	// debugging aid: no public read path ever exposes it.
	gapFillByte byte = 0xFF

	// gapBlock is the granularity by which an exhausted gap grows.
	gapBlock = 4096

	// minInitialGap is the lower bound (gapBlock is the upper bound) of the
	// heuristic initial gap size chosen for a seeded buffer:
	// max(8, min(gapBlock, len(seed)/2)).
	minInitialGap = 8
)

// ByteBuffer is a mutable sequence of bytes backed by a gap buffer.
//
// The zero value is not usable; construct one with New, NewSeed or
// NewSeedGap.
type ByteBuffer struct {
	data     []byte
	gapStart int
	gapEnd   int
}

// New returns a new, empty ByteBuffer.
func New() *ByteBuffer {
	return NewSeed(nil)
}

// NewSeed returns a new ByteBuffer containing a copy of seed, with a gap of
// a heuristic size appended after it: max(8, min(gapBlock, len(seed)/2)).
func NewSeed(seed []byte) *ByteBuffer {
	return NewSeedGap(seed, heuristicGapSize(len(seed)))
}

// NewSeedGap returns a new ByteBuffer containing a copy of seed, with a gap
// of exactly gapSize bytes appended after it. A negative gapSize is
// treated as zero.
func NewSeedGap(seed []byte, gapSize int) *ByteBuffer {
	if gapSize < 0 {
		gapSize = 0
	}

	data := make([]byte, len(seed)+gapSize)
	copy(data, seed)

	for i := len(seed); i < len(data); i++ {
		data[i] = gapFillByte
	}

	return &ByteBuffer{data: data, gapStart: len(seed), gapEnd: len(seed) + gapSize}
}

func heuristicGapSize(seedLen int) int {
	g := seedLen / 2
	if g > gapBlock {
		g = gapBlock
	}

	if g < minInitialGap {
		g = minInitialGap
	}

	return g
}

// Len returns the current logical length of the buffer in bytes.
func (b *ByteBuffer) Len() int {
	return len(b.data) - b.gapSize()
}

func (b *ByteBuffer) gapSize() int {
	return b.gapEnd - b.gapStart
}

// toStorage converts a logical index (already known valid) into an index
// into the underlying storage array.
func (b *ByteBuffer) toStorage(i int) int {
	if i < b.gapStart {
		return i
	}

	return i + b.gapSize()
}

// At returns the byte at logical index i. Negative i counts from the end.
// At returns ErrOutOfRange if i is not within [-Len(), Len()).
func (b *ByteBuffer) At(i int) (byte, error) {
	n := b.Len()
	idx := i
	if idx < 0 {
		idx += n
	}

	if idx < 0 || idx >= n {
		return 0, fmt.Errorf("%w: %d", ErrOutOfRange, i)
	}

	return b.data[b.toStorage(idx)], nil
}

// rawSlice returns a freshly allocated copy of the logical bytes in
// [a, c), where 0 <= a <= c <= Len() is assumed to already hold.
func (b *ByteBuffer) rawSlice(a, c int) []byte {
	out := make([]byte, c-a)
	for i := a; i < c; i++ {
		out[i-a] = b.data[b.toStorage(i)]
	}

	return out
}

// Slice returns a freshly allocated copy of the logical slice
// [start:stop:step]. start and stop may be nil, meaning "the default for
// this step's direction", exactly like Python's a[start:stop:step]. step
// must not be zero.
func (b *ByteBuffer) Slice(start, stop *int, step int) ([]byte, error) {
	if step == 0 {
		return nil, ErrInvalidStep
	}

	n := b.Len()
	lo, hi := sliceBounds(n, start, stop, step)

	if step == 1 {
		if lo >= hi {
			return []byte{}, nil
		}

		return b.rawSlice(lo, hi), nil
	}

	idxs := stepWalk(lo, hi, step)
	out := make([]byte, len(idxs))

	for i, idx := range idxs {
		out[i] = b.data[b.toStorage(idx)]
	}

	return out, nil
}

// moveGap repositions the gap so that it starts at logical index n.
// copy() is memmove-safe for overlapping slices in Go, so no manual
// direction-dependent loop is needed: the two branches below simply state
// which half of storage has to slide to make room for the other.
func (b *ByteBuffer) moveGap(n int) {
	if n == b.gapStart {
		return
	}

	size := b.gapSize()

	if n < b.gapStart {
		copy(b.data[n+size:b.gapStart+size], b.data[n:b.gapStart])
	} else {
		copy(b.data[b.gapStart:n], b.data[b.gapEnd:n+size])
	}

	b.gapStart, b.gapEnd = n, n+size
}

// ensureGap grows the gap until it holds at least min bytes, adding
// gapBlock bytes, or the whole shortfall when that is larger than gapBlock.
func (b *ByteBuffer) ensureGap(min int) {
	for b.gapSize() < min {
		grow := gapBlock
		if need := min - b.gapSize(); need > grow {
			grow = need
		}

		fill := make([]byte, grow)
		for i := range fill {
			fill[i] = gapFillByte
		}

		grown := make([]byte, 0, len(b.data)+grow)
		grown = append(grown, b.data[:b.gapStart]...)
		grown = append(grown, fill...)
		grown = append(grown, b.data[b.gapStart:]...)
		b.data = grown
		b.gapEnd += grow
	}
}

// Insert inserts byte v before logical index i. A negative i counts from
// the end; an out-of-range i is clamped into [0, Len()]. Insert never
// fails.
func (b *ByteBuffer) Insert(i int, v byte) {
	b.InsertSlice(i, []byte{v})
}

// InsertSlice inserts bytes before logical index i, following the same
// clamping rules as Insert. InsertSlice never fails.
func (b *ByteBuffer) InsertSlice(i int, bs []byte) {
	if len(bs) == 0 {
		return
	}

	i = clampIndex(i, b.Len())

	b.ensureGap(len(bs))

	if i != b.gapStart {
		b.moveGap(i)
	}

	copy(b.data[b.gapStart:], bs)
	b.gapStart += len(bs)
}

// Assign replaces the byte at logical index i. Negative i counts from the
// end. Assign returns ErrOutOfRange if i is not within [-Len(), Len()).
func (b *ByteBuffer) Assign(i int, v byte) error {
	n := b.Len()
	idx := i
	if idx < 0 {
		idx += n
	}

	if idx < 0 || idx >= n {
		return fmt.Errorf("%w: %d", ErrOutOfRange, i)
	}

	b.data[b.toStorage(idx)] = v

	return nil
}

// Delete removes logical bytes [start, stop). Bounds follow standard slice
// clamping; Delete is a no-op if start >= stop after clamping.
func (b *ByteBuffer) Delete(start, stop int) {
	n := b.Len()
	start = clampIndex(start, n)
	stop = clampIndex(stop, n)

	if start >= stop {
		return
	}

	count := stop - start

	switch {
	case stop == b.gapStart:
		b.gapStart -= count
	case start == b.gapStart:
		b.gapEnd += count
	default:
		b.moveGap(start)
		b.gapEnd += count
	}
}

// AssignSlice replaces logical bytes [start, stop) with bs: semantically
// Delete(start, stop) followed by inserting bs at start.
func (b *ByteBuffer) AssignSlice(start, stop int, bs []byte) {
	n := b.Len()
	start = clampIndex(start, n)
	stop = clampIndex(stop, n)

	if start < stop {
		b.Delete(start, stop)
	}

	b.InsertSlice(start, bs)
}

// Find returns the smallest logical index >= *start (or 0) at which sub
// matches, searching within [start, stop) (default the whole buffer), or
// -1 if there is no match. An empty sub matches at start, unless the
// clamped window [start, stop) is empty, in which case Find returns -1.
func (b *ByteBuffer) Find(sub []byte, start, stop *int) int {
	n := b.Len()
	lo, hi := clampFindBounds(n, start, stop)

	if lo >= hi {
		return -1
	}

	gs, ge := b.gapStart, b.gapEnd

	if lo < gs {
		end := min(gs, hi)
		if f := bytes.Index(b.data[lo:end], sub); f != -1 {
			return lo + f
		}
	}

	if lo < gs && hi >= gs && len(sub) > 0 {
		subLen := len(sub)
		searchStart := max(lo, gs-subLen)

		for idx := searchStart; idx < searchStart+subLen; idx++ {
			end := min(hi, idx+subLen)
			if end <= idx {
				continue
			}

			if bytes.Equal(b.rawSlice(idx, end), sub) {
				return idx
			}
		}
	}

	gapSize := ge - gs
	if hi >= gs {
		from := max(ge, lo+gapSize)
		to := hi + gapSize

		if from < to && from <= len(b.data) {
			if to > len(b.data) {
				to = len(b.data)
			}

			if f := bytes.Index(b.data[from:to], sub); f != -1 {
				return from + f - gapSize
			}
		}
	}

	return -1
}

func clampFindBounds(n int, start, stop *int) (int, int) {
	lo, hi := 0, n
	if start != nil {
		lo = clampIndex(*start, n)
	}

	if stop != nil {
		hi = clampIndex(*stop, n)
	}

	return lo, hi
}

// Index is like Find but returns ErrNotFound instead of -1.
func (b *ByteBuffer) Index(sub []byte, start, stop *int) (int, error) {
	f := b.Find(sub, start, stop)
	if f == -1 {
		return -1, fmt.Errorf("%w: %q", ErrNotFound, sub)
	}

	return f, nil
}

// Contains reports whether sub occurs anywhere in the buffer.
func (b *ByteBuffer) Contains(sub []byte) bool {
	return b.Find(sub, nil, nil) != -1
}

// Clone returns a deep copy of b, preserving the current gap position.
func (b *ByteBuffer) Clone() *ByteBuffer {
	data := make([]byte, len(b.data))
	copy(data, b.data)

	return &ByteBuffer{data: data, gapStart: b.gapStart, gapEnd: b.gapEnd}
}

// Equal reports whether b's logical contents equal the sequence produced
// by other, element for element, including length.
func (b *ByteBuffer) Equal(other iter.Seq[byte]) bool {
	next, stop := iter.Pull(other)
	defer stop()

	n := b.Len()
	for i := 0; i < n; i++ {
		ov, ok := next()
		if !ok {
			return false
		}

		bv, _ := b.At(i)
		if bv != ov {
			return false
		}
	}

	_, ok := next()

	return !ok
}

// All returns a restartable iterator over the buffer's logical bytes in
// order. Each call to All returns a fresh iterator starting at index 0.
func (b *ByteBuffer) All() iter.Seq[byte] {
	return func(yield func(byte) bool) {
		n := b.Len()
		for i := 0; i < n; i++ {
			v, _ := b.At(i)
			if !yield(v) {
				return
			}
		}
	}
}

// ByteReader is the read-only view of a ByteBuffer: every accessor method,
// none of the mutators. CodedString.Buffer returns this interface so a
// caller cannot mutate the buffer out from under the CodedString's run
// index (see NewCodedString).
type ByteReader interface {
	Len() int
	At(i int) (byte, error)
	Slice(start, stop *int, step int) ([]byte, error)
	Find(sub []byte, start, stop *int) int
	Index(sub []byte, start, stop *int) (int, error)
	Contains(sub []byte) bool
	All() iter.Seq[byte]
}

var _ ByteReader = (*ByteBuffer)(nil)
