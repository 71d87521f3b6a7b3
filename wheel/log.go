// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wheel

import "log"

func nolog(string, ...interface{}) {}

// Logf is used for verbose per-sample debug output.
// It is muted by default, and enabled with SetDebug or replaced with SetLogger.
var Logf func(format string, v ...interface{}) = nolog

// SetDebug enables or mutes the verbose debug output.
func SetDebug(on bool) {
	if on {
		Logf = log.Printf
	} else {
		Logf = nolog
	}
}

// SetLogger replaces the debug logger. Passing nil mutes it.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		f = nolog
	}
	Logf = f
}
