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
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/reelrec-io/reelrec/storage/data"
)

type ratingKey struct {
	userId int
	itemId int
}

// Matrix is the user-item rating matrix for one recommendation request. It
// holds one dense rating vector per user, all aligned to the same item
// catalog order, plus an indexed rating lookup so that prediction never
// scans the rating list per (user, item) pair.
//
// A rating value of zero or below is treated as "unrated" everywhere: the
// vector slot stays 0, the item remains a recommendation candidate and the
// rating is never a prediction source. Under this policy a sparse rating
// list and a dense cross-join with zeros for absent pairs build identical
// matrices.
type Matrix struct {
	itemIds   []int
	itemIndex map[int]int
	userIds   []int
	vectors   map[int]Vector
	rated     map[int]mapset.Set[int]
	ratings   map[ratingKey]float64
}

// BuildMatrix builds a rating matrix from the item catalog, the user list
// and a single bulk fetch of all ratings. Items and users are expected in
// id order from the data store; every user gets a vector, all-zero when the
// user has no ratings. Ratings referencing unknown users or items are
// skipped.
func BuildMatrix(users []data.User, items []data.Item, ratings []data.Rating) *Matrix {
	m := &Matrix{
		itemIds:   make([]int, len(items)),
		itemIndex: make(map[int]int, len(items)),
		userIds:   make([]int, len(users)),
		vectors:   make(map[int]Vector, len(users)),
		rated:     make(map[int]mapset.Set[int], len(users)),
		ratings:   make(map[ratingKey]float64, len(ratings)),
	}
	for i, item := range items {
		m.itemIds[i] = item.ItemId
		m.itemIndex[item.ItemId] = i
	}
	for i, user := range users {
		m.userIds[i] = user.UserId
		m.vectors[user.UserId] = make(Vector, len(items))
		m.rated[user.UserId] = mapset.NewThreadUnsafeSet[int]()
	}
	for _, rating := range ratings {
		if rating.Rating <= 0 {
			continue
		}
		vector, ok := m.vectors[rating.UserId]
		if !ok {
			continue
		}
		position, ok := m.itemIndex[rating.ItemId]
		if !ok {
			continue
		}
		vector[position] = rating.Rating
		m.rated[rating.UserId].Add(rating.ItemId)
		m.ratings[ratingKey{rating.UserId, rating.ItemId}] = rating.Rating
	}
	return m
}

// ItemIds returns the item catalog order shared by all vectors.
func (m *Matrix) ItemIds() []int {
	return m.itemIds
}

// Vector returns the rating vector of a user. The second return value is
// false for unknown users.
func (m *Matrix) Vector(userId int) (Vector, bool) {
	vector, ok := m.vectors[userId]
	return vector, ok
}

// Rated reports whether a user has rated an item.
func (m *Matrix) Rated(userId, itemId int) bool {
	set, ok := m.rated[userId]
	return ok && set.Contains(itemId)
}

// Rating returns the rating a user gave to an item. The second return value
// is false when no rating exists.
func (m *Matrix) Rating(userId, itemId int) (float64, bool) {
	rating, ok := m.ratings[ratingKey{userId, itemId}]
	return rating, ok
}
