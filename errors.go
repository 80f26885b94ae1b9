// SPDX-FileCopyrightText:  Copyright 2024 Roland Csaszar
// SPDX-License-Identifier: MIT
//
// Project:  go-coded-buffer
// File:     errors.go
//
// =============================================================================

package gapbuffer

import "errors"

// ErrOutOfRange is returned when an integer index falls outside
// [-length, length) for ByteBuffer.At, ByteBuffer.Assign, CodedString.Read
// and CodedString.ByteSlice, and by CodedString.MapByteToRune for a byte
// index outside [0, Len()). CodedString.Assign and the range operations
// (Delete, Insert, AssignSlice) clamp their indices and never return it.
//
// Naming and style follow the sibling gapbuffer package in github.com/prodhe/poe,
// which exports the same sentinel for the same reason.
var ErrOutOfRange = errors.New("gapbuffer: index out of range")

// ErrNotFound is returned by Index when the sought subsequence
// is absent from the searched range.
var ErrNotFound = errors.New("gapbuffer: not found")

// ErrBadKey is reserved for callers that forward a dynamic key (neither an
// integer index nor a slice) into this package from a more dynamically
// typed layer of their own. ByteBuffer and CodedString never produce it
// themselves: Go's static typing already rules out an int/slice mixup at
// the method-signature level.
var ErrBadKey = errors.New("gapbuffer: unsupported key type")

// ErrInvalidStep is returned by Slice and ReadSlice when given a zero
// step. spec.md does not name an error kind for this case; it is treated
// the same as Python's ValueError for slice(..., 0).
var ErrInvalidStep = errors.New("gapbuffer: slice step must not be zero")
