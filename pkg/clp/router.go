// Copyright 2016 The goclp Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package clp

// This file implements logical-name I/O routing.  Every read, unread, and
// print in the core goes through a logical name; routers claim logical
// names and service them.  The standard output channels are WERROR,
// WWARNING, WDISPLAY, and WTRACE.

import (
	"io"
	"sort"
)

// Standard logical names for diagnostic output.
const (
	WERROR   = "werror"
	WWARNING = "wwarning"
	WDISPLAY = "wdisplay"
	WTRACE   = "wtrace"
)

// EOF is returned by GetcRouter when a stream is exhausted.
const EOF = -1

// A Router services one or more logical names.  Read and Unread may be nil
// for output-only routers; Write may be nil for input-only routers.
type Router struct {
	Name     string
	Priority int
	Query    func(logicalName string) bool
	Write    func(logicalName, str string)
	Read     func(logicalName string) int
	Unread   func(logicalName string, ch int)
}

// AddRouter registers r.  Higher priority routers are consulted first.
func (e *Environment) AddRouter(r *Router) {
	e.routers = append(e.routers, r)
	sort.SliceStable(e.routers, func(i, j int) bool {
		return e.routers[i].Priority > e.routers[j].Priority
	})
}

// DeleteRouter removes the router registered under name.
func (e *Environment) DeleteRouter(name string) bool {
	for i, r := range e.routers {
		if r.Name == name {
			e.routers = append(e.routers[:i], e.routers[i+1:]...)
			return true
		}
	}
	return false
}

// PrintRouter writes str to the first router recognising logicalName.
// Routing errors are non-fatal; an unrecognised logical name is ignored so
// diagnostics can never cancel a parse, except that WERROR and WWARNING
// text no router claims is written to the error writer.
func (e *Environment) PrintRouter(logicalName, str string) {
	for _, r := range e.routers {
		if r.Query != nil && r.Query(logicalName) && r.Write != nil {
			r.Write(logicalName, str)
			return
		}
	}
	if logicalName == WERROR || logicalName == WWARNING {
		io.WriteString(e.errout, str)
	}
}

// GetcRouter reads one character from logicalName, honouring any character
// pushed back by UngetcRouter.  EOF is returned when the stream ends or no
// router recognises the name.
func (e *Environment) GetcRouter(logicalName string) int {
	if buf := e.ungetBuffers[logicalName]; len(buf) > 0 {
		ch := buf[len(buf)-1]
		e.ungetBuffers[logicalName] = buf[:len(buf)-1]
		if ch == '\n' {
			e.lineCount++
		}
		return ch
	}
	for _, r := range e.routers {
		if r.Query != nil && r.Query(logicalName) && r.Read != nil {
			ch := r.Read(logicalName)
			if ch == '\n' {
				e.lineCount++
			}
			return ch
		}
	}
	return EOF
}

// UngetcRouter pushes ch back onto logicalName; the next GetcRouter call
// returns it.
func (e *Environment) UngetcRouter(logicalName string, ch int) {
	if ch == EOF {
		return
	}
	if ch == '\n' {
		e.lineCount--
	}
	e.ungetBuffers[logicalName] = append(e.ungetBuffers[logicalName], ch)
}

// ResetLineCount zeroes the scanner's line counter.
func (e *Environment) ResetLineCount() { e.lineCount = 0 }

// GetLineCount returns the number of newlines read since the last reset.
func (e *Environment) GetLineCount() int64 { return e.lineCount }

// SetLineCount sets the line counter and returns its previous value.
func (e *Environment) SetLineCount(n int64) int64 {
	old := e.lineCount
	e.lineCount = n
	return old
}

// IncrementLineCount adds one to the line counter.
func (e *Environment) IncrementLineCount() { e.lineCount++ }

// DecrementLineCount subtracts one from the line counter.
func (e *Environment) DecrementLineCount() { e.lineCount-- }

// A stringSource is an in-memory input stream registered under a logical
// name.
type stringSource struct {
	contents string
	pos      int
}

// OpenStringSource registers contents as an input stream readable under
// logicalName.  An existing source under the same name is replaced.
func (e *Environment) OpenStringSource(logicalName, contents string) {
	e.stringSources[logicalName] = &stringSource{contents: contents}
	delete(e.ungetBuffers, logicalName)
}

// CloseStringSource removes the string source registered under
// logicalName.
func (e *Environment) CloseStringSource(logicalName string) bool {
	if _, ok := e.stringSources[logicalName]; !ok {
		return false
	}
	delete(e.stringSources, logicalName)
	delete(e.ungetBuffers, logicalName)
	return true
}

func (e *Environment) addDefaultRouters() {
	e.AddRouter(&Router{
		Name:     "string-sources",
		Priority: 10,
		Query: func(logicalName string) bool {
			_, ok := e.stringSources[logicalName]
			return ok
		},
		Read: func(logicalName string) int {
			src := e.stringSources[logicalName]
			if src == nil || src.pos >= len(src.contents) {
				return EOF
			}
			ch := int(src.contents[src.pos])
			src.pos++
			return ch
		},
	})
	e.AddRouter(&Router{
		Name:     "default-output",
		Priority: -10,
		Query: func(logicalName string) bool {
			switch logicalName {
			case WERROR, WWARNING, WDISPLAY, WTRACE:
				return true
			}
			return false
		},
		Write: func(logicalName, str string) {
			io.WriteString(e.errout, str)
		},
	})
}

// SetErrorWriter redirects the default diagnostic routers to w.  Tests use
// this to capture error output.
func (e *Environment) SetErrorWriter(w io.Writer) { e.errout = w }
