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
	"context"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"

	"github.com/reelrec-io/reelrec/config"
	"github.com/reelrec-io/reelrec/storage/data"
)

// mockDatabase serves fixed slices, standing in for the SQL data store.
type mockDatabase struct {
	data.NoDatabase
	users   []data.User
	items   []data.Item
	ratings []data.Rating
}

func (m *mockDatabase) ListUsers(_ context.Context) ([]data.User, error) {
	return m.users, nil
}

func (m *mockDatabase) ListItems(_ context.Context) ([]data.Item, error) {
	return m.items, nil
}

func (m *mockDatabase) ListRatings(_ context.Context) ([]data.Rating, error) {
	return m.ratings, nil
}

func newTestRecommender() *Recommender {
	return NewRecommender(&mockDatabase{
		users:   testUsers,
		items:   testItems,
		ratings: testRatings,
	}, config.GetDefaultConfig().Recommend)
}

func TestRecommend(t *testing.T) {
	ctx := context.Background()
	recommender := newTestRecommender()

	recommendations, err := recommender.Recommend(ctx, 1, 1)
	assert.NoError(t, err)
	assert.Len(t, recommendations, 1)
	// item 3 is alice's only unrated item; bob and carol both rated it
	assert.Equal(t, 3, recommendations[0].Item.ItemId)
	assert.Equal(t, 2, recommendations[0].Sources)
	simBob := Cosine(Vector{5, 4, 0}, Vector{5, 5, 3})
	simCarol := Cosine(Vector{5, 4, 0}, Vector{1, 0, 5})
	assert.InDelta(t, (3*simBob+5*simCarol)/(simBob+simCarol), recommendations[0].PredictedRating, 1e-12)
	assert.InDelta(t, simBob+simCarol, recommendations[0].Confidence, 1e-12)
}

func TestRecommendNeverIncludesRatedItems(t *testing.T) {
	ctx := context.Background()
	recommender := newTestRecommender()
	for _, user := range testUsers {
		recommendations, err := recommender.Recommend(ctx, user.UserId, 10)
		assert.NoError(t, err)
		for _, recommendation := range recommendations {
			for _, rating := range testRatings {
				if rating.UserId == user.UserId {
					assert.NotEqual(t, rating.ItemId, recommendation.Item.ItemId)
				}
			}
		}
	}
}

func TestRecommendDefaultLimit(t *testing.T) {
	ctx := context.Background()
	recommender := newTestRecommender()
	// a non-positive limit means the default, not an empty result
	recommendations, err := recommender.Recommend(ctx, 1, 0)
	assert.NoError(t, err)
	assert.NotEmpty(t, recommendations)
	recommendations, err = recommender.Recommend(ctx, 1, -3)
	assert.NoError(t, err)
	assert.NotEmpty(t, recommendations)
}

func TestRecommendUserNotFound(t *testing.T) {
	ctx := context.Background()
	recommender := newTestRecommender()
	_, err := recommender.Recommend(ctx, 404, 5)
	assert.True(t, errors.Is(err, errors.NotFound), "expected not found, got %v", err)
	_, err = recommender.Similarities(ctx, 404)
	assert.True(t, errors.Is(err, errors.NotFound), "expected not found, got %v", err)
	_, _, err = recommender.Calculations(ctx, 404)
	assert.True(t, errors.Is(err, errors.NotFound), "expected not found, got %v", err)
}

func TestRecommendIdempotent(t *testing.T) {
	ctx := context.Background()
	recommender := newTestRecommender()
	first, err := recommender.Recommend(ctx, 1, 5)
	assert.NoError(t, err)
	second, err := recommender.Recommend(ctx, 1, 5)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRecommendUserWithoutRatings(t *testing.T) {
	ctx := context.Background()
	recommender := NewRecommender(&mockDatabase{
		users:   append([]data.User{{UserId: 9, Username: "mute"}}, testUsers...),
		items:   testItems,
		ratings: testRatings,
	}, config.GetDefaultConfig().Recommend)

	// every similarity is zero
	similarities, err := recommender.Similarities(ctx, 9)
	assert.NoError(t, err)
	assert.Len(t, similarities, len(testUsers))
	for _, similarity := range similarities {
		assert.Equal(t, 0.0, similarity.Similarity)
	}
	// no neighbor passes the significance threshold, so nothing is predicted
	recommendations, err := recommender.Recommend(ctx, 9, 5)
	assert.NoError(t, err)
	assert.Empty(t, recommendations)
}

func TestSimilarities(t *testing.T) {
	ctx := context.Background()
	recommender := newTestRecommender()
	similarities, err := recommender.Similarities(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, similarities, len(testUsers)-1)
	assert.Equal(t, "bob", similarities[0].Username)
	assert.Equal(t, "carol", similarities[1].Username)
	assert.Greater(t, similarities[0].Similarity, similarities[1].Similarity)
}

func TestVectors(t *testing.T) {
	ctx := context.Background()
	recommender := newTestRecommender()
	items, vectors, err := recommender.Vectors(ctx)
	assert.NoError(t, err)
	assert.Len(t, items, len(testItems))
	assert.Len(t, vectors, len(testUsers))
	assert.Equal(t, Vector{5, 4, 0}, vectors[0].Ratings)
	assert.InDelta(t, Magnitude(Vector{5, 4, 0}), vectors[0].Magnitude, 1e-12)
}

func TestCalculations(t *testing.T) {
	ctx := context.Background()
	recommender := newTestRecommender()
	target, calculations, err := recommender.Calculations(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, Vector{5, 4, 0}, target.Ratings)
	assert.Len(t, calculations, len(testUsers)-1)
	assert.Equal(t, 2, calculations[0].UserId)
	assert.InDelta(t, Dot(Vector{5, 4, 0}, Vector{5, 5, 3}), calculations[0].DotProduct, 1e-12)
	assert.InDelta(t,
		calculations[0].DotProduct/(calculations[0].TargetMagnitude*calculations[0].UserMagnitude),
		calculations[0].CosineSimilarity, 1e-12)
}
