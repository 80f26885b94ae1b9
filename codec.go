// SPDX-FileCopyrightText:  Copyright 2024 Roland Csaszar
// SPDX-License-Identifier: MIT
//
// Project:  go-coded-buffer
// File:     codec.go
//
// =============================================================================

package gapbuffer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// Codec names a byte encoding and can produce fresh incremental
// decoder/encoder instances for it, both using a "replace malformed"
// policy, per spec.md §3.2 and §6.
type Codec interface {
	// Name returns the canonical name of this encoding.
	Name() string
	// NewDecoder returns a new, independent incremental decoder.
	NewDecoder() IncrementalDecoder
	// NewEncoder returns a new, independent incremental encoder.
	NewEncoder() IncrementalEncoder
}

// IncrementalDecoder decodes bytes fed to it in arbitrary chunks (as small
// as one byte at a time), emitting decoded runes as soon as enough bytes
// have been consumed to do so. Malformed input is replaced with U+FFFD
// rather than erroring. final must be set on the call carrying the last
// byte of input, to flush any residual decoder state.
type IncrementalDecoder interface {
	Decode(p []byte, final bool) []rune
}

// IncrementalEncoder encodes a complete string to bytes under a "replace
// malformed" policy (relevant for runes the target encoding cannot
// represent).
type IncrementalEncoder interface {
	Encode(s string) []byte
}

// LookupCodec resolves name to a Codec. An empty name, or any of "utf-8",
// "utf8", "UTF-8" (case-insensitively), resolves to the built-in UTF-8
// codec. Any other name is resolved through the IANA charset registry.
func LookupCodec(name string) (Codec, error) {
	if name == "" || strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return utf8Codec{}, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("gapbuffer: unknown encoding %q: %w", name, err)
	}

	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = name
	}

	return &xtextCodec{name: canonical, enc: enc}, nil
}

// utf8Codec implements Codec directly on unicode/utf8. Go's standard
// library decoder already replaces malformed bytes with RuneError and
// advances by one byte on failure, which is exactly the "replace" policy
// spec.md asks for — there is no ecosystem UTF-8 decoder that improves on
// this, so no third-party dependency is used here (see DESIGN.md).
type utf8Codec struct{}

func (utf8Codec) Name() string { return "utf-8" }

func (utf8Codec) NewDecoder() IncrementalDecoder { return &utf8Decoder{} }

func (utf8Codec) NewEncoder() IncrementalEncoder { return utf8Encoder{} }

// utf8Decoder buffers bytes until it can decode a complete rune (or
// until told this is the final push, at which point any residual bytes
// decode to a single replacement character).
type utf8Decoder struct {
	pending []byte
}

func (d *utf8Decoder) Decode(p []byte, final bool) []rune {
	d.pending = append(d.pending, p...)

	var out []rune

	for len(d.pending) > 0 {
		if !utf8.FullRune(d.pending) {
			if !final {
				// A genuinely invalid lead byte is always "full" per FullRune's
				// contract; only a valid-so-far prefix waits for more bytes.
				break
			}

			out = append(out, utf8.RuneError)
			d.pending = nil

			break
		}

		r, size := utf8.DecodeRune(d.pending)
		out = append(out, r)
		d.pending = d.pending[size:]
	}

	return out
}

type utf8Encoder struct{}

func (utf8Encoder) Encode(s string) []byte {
	return []byte(s)
}

// xtextCodec adapts a golang.org/x/text/encoding.Encoding — resolved via
// the IANA registry — to this package's incremental Codec interface.
type xtextCodec struct {
	name string
	enc  encoding.Encoding
}

func (c *xtextCodec) Name() string { return c.name }

func (c *xtextCodec) NewDecoder() IncrementalDecoder {
	return &xtextDecoder{t: c.enc.NewDecoder()}
}

func (c *xtextCodec) NewEncoder() IncrementalEncoder {
	return &xtextEncoder{t: encoding.ReplaceUnsupported(c.enc.NewEncoder())}
}

// xtextDecoder drives a transform.Transformer byte by byte, implementing
// the "replace" policy by hand: on a decode error it emits U+FFFD, drops
// one source byte, and resets the transformer to resynchronize, the same
// strategy codecs.getincrementaldecoder(name)('replace') uses in the
// Python original this package is ported from.
type xtextDecoder struct {
	t       transform.Transformer
	pending []byte
}

func (d *xtextDecoder) Decode(p []byte, final bool) []rune {
	var out []rune

	src := append(d.pending, p...)
	d.pending = nil
	dst := make([]byte, 64)

	for {
		nDst, nSrc, err := d.t.Transform(dst, src, final)
		if nDst > 0 {
			out = append(out, []rune(string(dst[:nDst]))...)
		}

		src = src[nSrc:]

		switch {
		case err == transform.ErrShortDst:
			dst = make([]byte, len(dst)*2)

			continue
		case err == transform.ErrShortSrc:
			d.pending = append(d.pending, src...)

			return out
		case err != nil:
			out = append(out, utf8.RuneError)

			if len(src) == 0 {
				return out
			}

			src = src[1:]
			d.t.Reset()

			continue
		default:
			if len(src) == 0 {
				return out
			}
		}
	}
}

// xtextEncoder wraps its Transformer in encoding.ReplaceUnsupported (applied
// once, in NewEncoder), which substitutes the target encoding's replacement
// byte(s) for any rune the charset can't represent — the encode-side
// counterpart of xtextDecoder's replace policy.
type xtextEncoder struct {
	t transform.Transformer
}

func (e *xtextEncoder) Encode(s string) []byte {
	out, _, err := transform.Bytes(e.t, []byte(s))
	if err != nil {
		return out
	}

	return out
}
