// SPDX-FileCopyrightText:  Copyright 2024 Roland Csaszar
// SPDX-License-Identifier: MIT
//
// Project:  go-coded-buffer
// File:     main.go
//
// =============================================================================

// example is a tiny interactive demo of CodedString: it redraws a single
// line of text as you type, using the arrow keys to move the insertion
// point and backspace/delete to remove runes. It is not a text editor —
// there is no line handling or file I/O, just a live view of one
// CodedString being mutated in place.
package main

import (
	"fmt"
	"os"

	"atomicgo.dev/cursor"
	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"

	gapbuffer "github.com/Release-Candidate/go-coded-buffer"
)

func main() {
	cs, err := gapbuffer.NewCodedString(nil, "utf-8")
	if err != nil {
		fmt.Fprintln(os.Stderr, "gapbuffer: failed to create codec:", err)
		os.Exit(1)
	}

	pos := 0

	redraw := func() {
		cursor.ClearLine()
		cursor.StartOfLine()

		s, _ := cs.ReadSlice(0, cs.Length(), 1)
		fmt.Print(s)
	}

	fmt.Println("Type to insert, arrows to move, Esc to quit.")
	cursor.Hide()

	defer cursor.Show()

	err = keyboard.Listen(func(key keys.Key) (stop bool, err error) {
		switch key.Code {
		case keys.Esc, keys.CtrlC:
			return true, nil
		case keys.Left:
			if pos > 0 {
				pos--
			}
		case keys.Right:
			if pos < cs.Length() {
				pos++
			}
		case keys.Backspace:
			if pos > 0 {
				cs.Delete(pos-1, pos)
				pos--
			}
		case keys.Delete:
			if pos < cs.Length() {
				cs.Delete(pos, pos+1)
			}
		case keys.RuneKey:
			cs.Insert(pos, key.String())
			pos++
		case keys.Space:
			cs.Insert(pos, " ")
			pos++
		}

		redraw()

		return false, nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "gapbuffer:", err)
		os.Exit(1)
	}
}
