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

// Prediction is a predicted rating for one item. Confidence is the sum of
// the similarity weights that contributed, not a statistical interval;
// Sources counts the contributing neighbors.
type Prediction struct {
	ItemId     int
	Rating     float64
	Confidence float64
	Sources    int
}

// PredictRating predicts the target user's rating for an item by weighted
// k-nearest-neighbor regression over the top-K entries of an already ranked,
// already filtered neighbor list: each neighbor who rated the item
// contributes its rating weighted by its similarity to the target. The
// second return value is false when no neighbor among the top K rated the
// item; such items yield no prediction at all rather than a default one.
func (m *Matrix) PredictRating(itemId int, neighbors []Neighbor, topK int) (Prediction, bool) {
	if topK < len(neighbors) {
		neighbors = neighbors[:topK]
	}
	weightedSum := 0.0
	similaritySum := 0.0
	sources := 0
	for _, neighbor := range neighbors {
		if rating, ok := m.Rating(neighbor.UserId, itemId); ok {
			weightedSum += rating * neighbor.Similarity
			similaritySum += neighbor.Similarity
			sources++
		}
	}
	if sources == 0 || similaritySum <= 0 {
		return Prediction{}, false
	}
	return Prediction{
		ItemId:     itemId,
		Rating:     weightedSum / similaritySum,
		Confidence: similaritySum,
		Sources:    sources,
	}, true
}
