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

// This file implements the pretty print buffer.  The scanner appends each
// token's print form as it is read so construct parsers can recover the
// source text verbatim.  Backing up undoes the most recent append, which
// parsers use to patch up spacing around closing parentheses.

import "strings"

// SetPPBufferStatus enables or disables appends to the pretty print
// buffer, returning the previous setting.
func (e *Environment) SetPPBufferStatus(on bool) bool {
	old := e.ppBufferEnabled
	e.ppBufferEnabled = on
	return old
}

// GetPPBufferStatus reports whether the pretty print buffer is enabled.
func (e *Environment) GetPPBufferStatus() bool { return e.ppBufferEnabled }

// FlushPPBuffer empties the pretty print buffer.
func (e *Environment) FlushPPBuffer() {
	e.ppBuffer.Reset()
	e.ppBackupOnce = 0
	e.ppBackupTwice = 0
}

// SavePPBuffer appends str to the pretty print buffer.
func (e *Environment) SavePPBuffer(str string) {
	if !e.ppBufferEnabled || str == "" {
		return
	}
	e.ppBackupTwice = e.ppBackupOnce
	e.ppBackupOnce = e.ppBuffer.Len()
	e.ppBuffer.WriteString(str)
}

// PPBackup removes the last string appended to the pretty print buffer.
// Only two levels of backup are retained.
func (e *Environment) PPBackup() {
	if !e.ppBufferEnabled {
		return
	}
	s := e.ppBuffer.String()[:e.ppBackupOnce]
	e.ppBuffer.Reset()
	e.ppBuffer.WriteString(s)
	e.ppBackupOnce = e.ppBackupTwice
}

// SetIndentDepth sets the column to which PPCRAndIndent indents.
func (e *Environment) SetIndentDepth(depth int) { e.ppIndentDepth = depth }

// PPCRAndIndent appends a newline followed by the current indent.
func (e *Environment) PPCRAndIndent() {
	if !e.ppBufferEnabled {
		return
	}
	e.SavePPBuffer("\n" + strings.Repeat(" ", e.ppIndentDepth))
}

// CopyPPBuffer returns the current contents of the pretty print buffer.
func (e *Environment) CopyPPBuffer() string { return e.ppBuffer.String() }

// GetPPBuffer returns the current contents of the pretty print buffer.
func (e *Environment) GetPPBuffer() string { return e.ppBuffer.String() }
