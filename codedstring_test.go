// SPDX-FileCopyrightText:  Copyright 2024 Roland Csaszar
// SPDX-License-Identifier: MIT
//
// Project:  go-coded-buffer
// File:     codedstring_test.go
//
// =============================================================================

package gapbuffer_test

import (
	"errors"
	"testing"

	gapbuffer "github.com/Release-Candidate/go-coded-buffer"
	"github.com/stretchr/testify/assert"
)

func TestCodedStringASCII(t *testing.T) {
	t.Parallel()

	buf := gapbuffer.NewSeed([]byte("Hello World!"))
	cs, err := gapbuffer.NewCodedString(buf, "utf-8")
	assert.NoError(t, err)

	assert.Equal(t, 12, cs.Length())
	assert.Equal(t, "utf-8", cs.Encoding())

	s, err := cs.Read(0)
	assert.NoError(t, err)
	assert.Equal(t, "H", s)

	whole, err := cs.ReadSlice(0, 12, 1)
	assert.NoError(t, err)
	assert.Equal(t, "Hello World!", whole)
}

func TestCodedStringDefaultsToUTF8(t *testing.T) {
	t.Parallel()

	cs, err := gapbuffer.NewCodedString(nil, "")
	assert.NoError(t, err)
	assert.Equal(t, 0, cs.Length())
	assert.Equal(t, "utf-8", cs.Encoding())
}

// TestCodedStringMixedWidthRuns exercises the run-length index's core case:
// appending a 3-byte-per-rune CJK character after a run of 1-byte-per-rune
// ASCII text produces the two-run index [(1,9),(3,1)].
func TestCodedStringMixedWidthRuns(t *testing.T) {
	t.Parallel()

	cs, err := gapbuffer.NewCodedString(nil, "utf-8")
	assert.NoError(t, err)

	cs.Insert(0, "Hello Wor")
	cs.Insert(9, "阿")

	assert.Equal(t, 10, cs.Length())

	s, err := cs.Read(9)
	assert.NoError(t, err)
	assert.Equal(t, "阿", s)

	start, stop, err := cs.ByteSlice(9)
	assert.NoError(t, err)
	assert.Equal(t, 9, start)
	assert.Equal(t, 12, stop)

	cs.Delete(9, 10)
	assert.Equal(t, 9, cs.Length())

	rest, err := cs.ReadSlice(0, 9, 1)
	assert.NoError(t, err)
	assert.Equal(t, "Hello Wor", rest)
}

// TestCodedStringInsertMidRun splits an existing run in two around the
// insertion point, per spec.md's split-with-coalescing algorithm.
func TestCodedStringInsertMidRun(t *testing.T) {
	t.Parallel()

	buf := gapbuffer.NewSeed([]byte("Hello World!"))
	cs, err := gapbuffer.NewCodedString(buf, "utf-8")
	assert.NoError(t, err)

	cs.Insert(5, "阿")
	assert.Equal(t, 13, cs.Length())

	head, err := cs.ReadSlice(0, 5, 1)
	assert.NoError(t, err)
	assert.Equal(t, "Hello", head)

	mid, err := cs.Read(5)
	assert.NoError(t, err)
	assert.Equal(t, "阿", mid)

	tail, err := cs.ReadSlice(6, 13, 1)
	assert.NoError(t, err)
	assert.Equal(t, " World!", tail)

	whole, err := cs.ReadSlice(0, 13, 1)
	assert.NoError(t, err)
	assert.Equal(t, "Hello阿 World!", whole)
}

func TestCodedStringAssign(t *testing.T) {
	t.Parallel()

	buf := gapbuffer.NewSeed([]byte("Hello"))
	cs, err := gapbuffer.NewCodedString(buf, "utf-8")
	assert.NoError(t, err)

	cs.Assign(0, "J")

	s, err := cs.ReadSlice(0, 5, 1)
	assert.NoError(t, err)
	assert.Equal(t, "Jello", s)
}

func TestCodedStringReadSliceStep(t *testing.T) {
	t.Parallel()

	buf := gapbuffer.NewSeed([]byte("0123456789"))
	cs, err := gapbuffer.NewCodedString(buf, "utf-8")
	assert.NoError(t, err)

	s, err := cs.ReadSlice(0, 10, 2)
	assert.NoError(t, err)
	assert.Equal(t, "02468", s)

	s, err = cs.ReadSlice(0, 10, -1)
	assert.NoError(t, err)
	assert.Equal(t, "9876543210", s)
}

func TestCodedStringReadOutOfRange(t *testing.T) {
	t.Parallel()

	buf := gapbuffer.NewSeed([]byte("hi"))
	cs, err := gapbuffer.NewCodedString(buf, "utf-8")
	assert.NoError(t, err)

	_, err = cs.Read(5)
	assert.Error(t, err)
}

// TestCodedStringReadNegativeDoublyOutOfRange guards against rebasing a
// negative index twice (once in Read, once in ByteSlice): -10 on a
// length-5 string is out of [-5, 5) and must raise, not wrap around to
// rune 0.
func TestCodedStringReadNegativeDoublyOutOfRange(t *testing.T) {
	t.Parallel()

	buf := gapbuffer.NewSeed([]byte("hello"))
	cs, err := gapbuffer.NewCodedString(buf, "utf-8")
	assert.NoError(t, err)

	_, err = cs.Read(-10)
	assert.True(t, errors.Is(err, gapbuffer.ErrOutOfRange))
}

// TestCodedStringMalformedReplacement feeds the buffer a byte that is not a
// valid UTF-8 lead byte anywhere, and checks it decodes to the replacement
// character rather than erroring.
func TestCodedStringMalformedReplacement(t *testing.T) {
	t.Parallel()

	buf := gapbuffer.NewSeed([]byte{'a', 'b', 0xFF})
	cs, err := gapbuffer.NewCodedString(buf, "utf-8")
	assert.NoError(t, err)

	assert.Equal(t, 3, cs.Length())

	s, err := cs.Read(2)
	assert.NoError(t, err)
	assert.Equal(t, "�", s)
}

// TestCodedStringMalformedBeforeValidMultiByte guards against an invalid
// lead byte being batched together with a following valid multi-byte
// sequence into a single decoder emission: 0xFF is not a valid UTF-8 lead
// byte under any continuation, and the 2-byte sequence for '©' that
// follows it must still attribute bpr=2 to '©', with the run index
// summing to the full 3-byte buffer length.
func TestCodedStringMalformedBeforeValidMultiByte(t *testing.T) {
	t.Parallel()

	buf := gapbuffer.NewSeed([]byte{0xFF, 0xC2, 0xA9})
	cs, err := gapbuffer.NewCodedString(buf, "utf-8")
	assert.NoError(t, err)

	assert.Equal(t, 2, cs.Length())

	r0, err := cs.Read(0)
	assert.NoError(t, err)
	assert.Equal(t, "�", r0)

	r1, err := cs.Read(1)
	assert.NoError(t, err)
	assert.Equal(t, "©", r1)

	start, stop, err := cs.ByteSlice(1)
	assert.NoError(t, err)
	assert.Equal(t, 1, start)
	assert.Equal(t, 3, stop)
}

func TestCodedStringAll(t *testing.T) {
	t.Parallel()

	buf := gapbuffer.NewSeed([]byte("Hi!"))
	cs, err := gapbuffer.NewCodedString(buf, "utf-8")
	assert.NoError(t, err)

	var got []string
	for r := range cs.All() {
		got = append(got, r)
	}

	assert.Equal(t, []string{"H", "i", "!"}, got)
}

func TestCodedStringBufferIsReadOnly(t *testing.T) {
	t.Parallel()

	buf := gapbuffer.NewSeed([]byte("abc"))
	cs, err := gapbuffer.NewCodedString(buf, "utf-8")
	assert.NoError(t, err)

	ro := cs.Buffer()
	assert.Equal(t, 3, ro.Len())

	v, err := ro.At(0)
	assert.NoError(t, err)
	assert.Equal(t, byte('a'), v)
}

func TestCodedStringOtherEncoding(t *testing.T) {
	t.Parallel()

	buf := gapbuffer.NewSeed([]byte("Caf\xe9"))
	cs, err := gapbuffer.NewCodedString(buf, "ISO-8859-1")
	assert.NoError(t, err)

	assert.Equal(t, 4, cs.Length())

	s, err := cs.Read(3)
	assert.NoError(t, err)
	assert.Equal(t, "é", s)
}

// TestCodedStringEncodeUnsupportedRuneDoesNotTruncate feeds a rune that
// ISO-8859-1 cannot represent in the middle of a string; the encoder must
// substitute it rather than silently dropping the rest of the string.
func TestCodedStringEncodeUnsupportedRuneDoesNotTruncate(t *testing.T) {
	t.Parallel()

	cs, err := gapbuffer.NewCodedString(nil, "ISO-8859-1")
	assert.NoError(t, err)

	cs.Insert(0, "A阿B")

	assert.Equal(t, 3, cs.Length())

	first, err := cs.Read(0)
	assert.NoError(t, err)
	assert.Equal(t, "A", first)

	last, err := cs.Read(2)
	assert.NoError(t, err)
	assert.Equal(t, "B", last)
}

func TestLookupCodecUnknownEncoding(t *testing.T) {
	t.Parallel()

	_, err := gapbuffer.LookupCodec("not-a-real-encoding")
	assert.Error(t, err)
}
