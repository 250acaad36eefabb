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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reelrec-io/reelrec/storage/data"
)

func TestRankAllNeighbors(t *testing.T) {
	m := BuildMatrix(testUsers, testItems, testRatings)
	neighbors := m.RankAllNeighbors(1)
	// every other user appears exactly once, the target never does
	assert.Len(t, neighbors, len(testUsers)-1)
	for _, neighbor := range neighbors {
		assert.NotEqual(t, 1, neighbor.UserId)
	}
	// bob shares high ratings on the same items as alice, carol diverges
	assert.Equal(t, 2, neighbors[0].UserId)
	assert.Equal(t, 3, neighbors[1].UserId)
	assert.Greater(t, neighbors[0].Similarity, neighbors[1].Similarity)
	// sorted non-increasing
	for i := 1; i < len(neighbors); i++ {
		assert.GreaterOrEqual(t, neighbors[i-1].Similarity, neighbors[i].Similarity)
	}
}

func TestRankAllNeighborsTieBreak(t *testing.T) {
	// two identical users tie; the lower id comes first
	users := []data.User{{UserId: 1}, {UserId: 5}, {UserId: 2}}
	ratings := []data.Rating{
		{UserId: 1, ItemId: 1, Rating: 4},
		{UserId: 5, ItemId: 1, Rating: 2},
		{UserId: 2, ItemId: 1, Rating: 2},
	}
	m := BuildMatrix(users, testItems, ratings)
	neighbors := m.RankAllNeighbors(1)
	assert.Equal(t, []Neighbor{
		{UserId: 2, Similarity: 1},
		{UserId: 5, Similarity: 1},
	}, neighbors)
}

func TestRankSignificantNeighbors(t *testing.T) {
	m := BuildMatrix(testUsers, testItems, testRatings)
	all := m.RankAllNeighbors(1)
	significant := m.RankSignificantNeighbors(1, 0.1)
	assert.LessOrEqual(t, len(significant), len(all))
	for _, neighbor := range significant {
		assert.Greater(t, neighbor.Similarity, 0.1)
	}
	// a threshold above every similarity filters everyone out
	assert.Empty(t, m.RankSignificantNeighbors(1, 1))
}

func TestRankNeighborsOfRatinglessUser(t *testing.T) {
	users := append([]data.User{{UserId: 9, Username: "mute"}}, testUsers...)
	m := BuildMatrix(users, testItems, testRatings)
	// zero vector: similarity to everyone is exactly zero
	neighbors := m.RankAllNeighbors(9)
	assert.Len(t, neighbors, len(users)-1)
	for _, neighbor := range neighbors {
		assert.Equal(t, 0.0, neighbor.Similarity)
	}
	// and nobody passes a positive significance threshold
	assert.Empty(t, m.RankSignificantNeighbors(9, 0.1))
}

func TestPredictRating(t *testing.T) {
	m := BuildMatrix(testUsers, testItems, testRatings)
	neighbors := m.RankSignificantNeighbors(1, 0.1)

	// both bob and carol rated item 3
	prediction, ok := m.PredictRating(3, neighbors, 5)
	assert.True(t, ok)
	assert.Equal(t, 2, prediction.Sources)
	simBob := Cosine(Vector{5, 4, 0}, Vector{5, 5, 3})
	simCarol := Cosine(Vector{5, 4, 0}, Vector{1, 0, 5})
	expected := (3*simBob + 5*simCarol) / (simBob + simCarol)
	assert.InDelta(t, expected, prediction.Rating, 1e-12)
	assert.InDelta(t, simBob+simCarol, prediction.Confidence, 1e-12)

	// with K=1 only the closest neighbor contributes
	prediction, ok = m.PredictRating(3, neighbors, 1)
	assert.True(t, ok)
	assert.Equal(t, 1, prediction.Sources)
	assert.InDelta(t, 3, prediction.Rating, 1e-12)

	// nobody rated an item: no prediction at all
	_, ok = m.PredictRating(3, nil, 5)
	assert.False(t, ok)
}
