/*
 * Copyright 2022 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package debuglog is a trivial env-gated trace shim. It plays the role
// the teacher fills with bare println calls in pass_regalloc_linearscan.go,
// wrapped just enough to be switched off by default.
package debuglog

import (
	"fmt"
	"os"
)

var (
	traceCoalesce = os.Getenv("OUTSSA_TRACE_COALESCE") != ""
	traceLiveness = os.Getenv("OUTSSA_TRACE_LIVENESS") != ""
)

// Coalesce logs a coalesce-loop decision when OUTSSA_TRACE_COALESCE is set.
func Coalesce(format string, args ...interface{}) {
	if traceCoalesce {
		fmt.Fprintf(os.Stderr, "outssa: coalesce: "+format+"\n", args...)
	}
}

// Liveness logs a liveness-phase decision when OUTSSA_TRACE_LIVENESS is set.
func Liveness(format string, args ...interface{}) {
	if traceLiveness {
		fmt.Fprintf(os.Stderr, "outssa: liveness: "+format+"\n", args...)
	}
}
