// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package scan

import (
	"errors"
	"fmt"
)

// FatalError is returned when the recovery session cannot continue: the
// source cannot be opened, sized or mapped, or the output cannot be written.
// Candidates rejected by the scanner are never reported as errors.
type FatalError struct {
	Op   string // "open", "mkdir", "write", "report", ...
	Path string
	Err  error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func fatal(op, path string, err error) error {
	return &FatalError{Op: op, Path: path, Err: err}
}

// IsFatal reports whether err aborts a recovery session.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
