// Copyright 2024 reelrec Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logics

import (
	"sort"

	"github.com/samber/lo"
)

// Neighbor is another user ranked by cosine similarity to a target user.
type Neighbor struct {
	UserId     int
	Similarity float64
}

// RankAllNeighbors ranks every other user by cosine similarity to the
// target, highest first, ties broken by ascending user id. Zero-similarity
// neighbors are kept, which makes this mode suitable for reporting and
// diagnostics.
func (m *Matrix) RankAllNeighbors(targetId int) []Neighbor {
	target, ok := m.vectors[targetId]
	if !ok {
		return nil
	}
	neighbors := make([]Neighbor, 0, len(m.userIds)-1)
	for _, userId := range m.userIds {
		if userId == targetId {
			continue
		}
		neighbors = append(neighbors, Neighbor{
			UserId:     userId,
			Similarity: Cosine(target, m.vectors[userId]),
		})
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].UserId < neighbors[j].UserId
	})
	return neighbors
}

// RankSignificantNeighbors ranks neighbors like RankAllNeighbors but keeps
// only those with similarity strictly greater than minSimilarity. This is
// the mode predictions run on, so that near-zero neighbors never steer a
// predicted rating.
func (m *Matrix) RankSignificantNeighbors(targetId int, minSimilarity float64) []Neighbor {
	return lo.Filter(m.RankAllNeighbors(targetId), func(neighbor Neighbor, _ int) bool {
		return neighbor.Similarity > minSimilarity
	})
}
