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

package outssa

import "os"

// DebugChecks gates the debug-build-only IR-invariant self-checks
// described in the error handling design: the Phi-argument live-in
// check, the virtual/real operand aliasing check and the
// no-definition-in-terminator check. Off by default, the way
// ENABLE_CHECKING gates the equivalent GCC checks.
var DebugChecks = os.Getenv("OUTSSA_DEBUG_CHECKS") != ""

func parseBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v != "0" && v != "false"
}

func init() {
	DebugChecks = parseBoolEnv("OUTSSA_DEBUG_CHECKS", false)
}
