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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoalesceListAccumulatesCost(t *testing.T) {
	list := NewCoalesceList()
	list.Add(1, 2, 1)
	list.Add(2, 1, 1) // same unordered pair, normalized
	list.Add(3, 4, 5)

	list.Sort()

	first := list.PopBest()
	require.True(t, first.Ok)
	require.Equal(t, 5, first.Cost)
	require.ElementsMatch(t, []int{3, 4}, []int{first.P1, first.P2})

	second := list.PopBest()
	require.True(t, second.Ok)
	require.Equal(t, 2, second.Cost)
	require.ElementsMatch(t, []int{1, 2}, []int{second.P1, second.P2})

	third := list.PopBest()
	require.False(t, third.Ok)
}

func TestCoalesceListEmptyPop(t *testing.T) {
	list := NewCoalesceList()
	list.Sort()
	require.True(t, list.Empty())
	require.False(t, list.PopBest().Ok)
}

func TestCoalesceListPopBeforeSortPanics(t *testing.T) {
	list := NewCoalesceList()
	require.Panics(t, func() { list.PopBest() })
}

func TestCoalesceListAddAfterSortPanics(t *testing.T) {
	list := NewCoalesceList()
	list.Add(1, 2, 1)
	list.Sort()
	require.Panics(t, func() { list.Add(3, 4, 1) })
}

func TestCoalesceListIgnoresSelfPairs(t *testing.T) {
	list := NewCoalesceList()
	list.Add(1, 1, 5)
	list.Sort()
	require.True(t, list.Empty())
}
