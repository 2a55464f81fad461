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

// NoPartition marks "not a valid partition" — an all-ones bit pattern on
// a signed int is exactly -1, matching the spec's "typical
// implementation: all-ones integer".
const NoPartition = -1

// TPANone marks "no enclosing TPA group" / "end of group list".
const TPANone = -1

// CoalesceCandidate is one entry popped off a CoalesceList.
type CoalesceCandidate struct {
	P1, P2 int
	Cost   int
	Ok     bool
}

// NoBestCoalesce is returned by CoalesceList.PopBest when the list is
// exhausted.
var NoBestCoalesce = CoalesceCandidate{Ok: false}
