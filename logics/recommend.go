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
	"sort"
	"strconv"
	"time"

	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/reelrec-io/reelrec/base/log"
	"github.com/reelrec-io/reelrec/config"
	"github.com/reelrec-io/reelrec/storage/data"
)

// Recommendation is one entry of a ranked recommendation list.
type Recommendation struct {
	Item            data.Item
	PredictedRating float64
	Confidence      float64
	Sources         int
}

// UserSimilarity is the similarity between the target user and one other
// user, with the other user's name attached for presentation.
type UserSimilarity struct {
	UserId     int
	Username   string
	Similarity float64
}

// UserVector is one user's rating vector with its magnitude, for the vector
// diagnostics endpoint.
type UserVector struct {
	UserId    int
	Username  string
	Ratings   Vector
	Magnitude float64
}

// Calculation is the cosine similarity between the target user and one
// other user, broken into its parts for the calculation diagnostics
// endpoint.
type Calculation struct {
	UserId           int
	Username         string
	DotProduct       float64
	TargetMagnitude  float64
	UserMagnitude    float64
	CosineSimilarity float64
}

// Recommender computes personalized recommendations with user-based
// collaborative filtering. It keeps no state between requests: every call
// re-fetches users, items and ratings through the injected data store and
// rebuilds the rating matrix, so any number of calls may run concurrently.
type Recommender struct {
	dataClient data.Database
	config     config.RecommendConfig
}

// NewRecommender creates a Recommender on top of a data store.
func NewRecommender(dataClient data.Database, cfg config.RecommendConfig) *Recommender {
	return &Recommender{
		dataClient: dataClient,
		config:     cfg,
	}
}

// load fetches users, items and ratings and builds the rating matrix.
func (r *Recommender) load(ctx context.Context) ([]data.User, []data.Item, *Matrix, error) {
	users, err := r.dataClient.ListUsers(ctx)
	if err != nil {
		return nil, nil, nil, errors.Trace(err)
	}
	items, err := r.dataClient.ListItems(ctx)
	if err != nil {
		return nil, nil, nil, errors.Trace(err)
	}
	ratings, err := r.dataClient.ListRatings(ctx)
	if err != nil {
		return nil, nil, nil, errors.Trace(err)
	}
	return users, items, BuildMatrix(users, items, ratings), nil
}

// Recommend returns up to limit recommendations for a user, best first. A
// limit of zero or below means the configured default. The list contains
// only items the user has not rated and only items at least one significant
// top-K neighbor has rated; it is ordered by predicted rating, then
// confidence, then ascending item id.
func (r *Recommender) Recommend(ctx context.Context, userId, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		limit = r.config.DefaultLimit
	}
	start := time.Now()
	_, items, matrix, err := r.load(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if _, ok := matrix.Vector(userId); !ok {
		return nil, errors.Annotate(data.ErrUserNotExist, strconv.Itoa(userId))
	}
	neighbors := matrix.RankSignificantNeighbors(userId, r.config.MinSimilarity)
	recommendations := make([]Recommendation, 0, len(items))
	for _, item := range items {
		if matrix.Rated(userId, item.ItemId) {
			continue
		}
		if prediction, ok := matrix.PredictRating(item.ItemId, neighbors, r.config.TopK); ok {
			recommendations = append(recommendations, Recommendation{
				Item:            item,
				PredictedRating: prediction.Rating,
				Confidence:      prediction.Confidence,
				Sources:         prediction.Sources,
			})
		}
	}
	sort.Slice(recommendations, func(i, j int) bool {
		if recommendations[i].PredictedRating != recommendations[j].PredictedRating {
			return recommendations[i].PredictedRating > recommendations[j].PredictedRating
		}
		if recommendations[i].Confidence != recommendations[j].Confidence {
			return recommendations[i].Confidence > recommendations[j].Confidence
		}
		return recommendations[i].Item.ItemId < recommendations[j].Item.ItemId
	})
	if len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}
	log.Logger().Debug("generated recommendations",
		zap.Int("user_id", userId),
		zap.Int("num_neighbors", len(neighbors)),
		zap.Int("num_recommendations", len(recommendations)),
		zap.Duration("elapsed", time.Since(start)))
	return recommendations, nil
}

// Similarities returns the full similarity ranking between a user and every
// other user, highest first, including zero-similarity entries.
func (r *Recommender) Similarities(ctx context.Context, userId int) ([]UserSimilarity, error) {
	users, _, matrix, err := r.load(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if _, ok := matrix.Vector(userId); !ok {
		return nil, errors.Annotate(data.ErrUserNotExist, strconv.Itoa(userId))
	}
	usernames := usernameIndex(users)
	neighbors := matrix.RankAllNeighbors(userId)
	similarities := make([]UserSimilarity, len(neighbors))
	for i, neighbor := range neighbors {
		similarities[i] = UserSimilarity{
			UserId:     neighbor.UserId,
			Username:   usernames[neighbor.UserId],
			Similarity: neighbor.Similarity,
		}
	}
	return similarities, nil
}

// Vectors returns every user's rating vector against the item catalog,
// together with the catalog itself.
func (r *Recommender) Vectors(ctx context.Context) ([]data.Item, []UserVector, error) {
	users, items, matrix, err := r.load(ctx)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	vectors := make([]UserVector, len(users))
	for i, user := range users {
		vector, _ := matrix.Vector(user.UserId)
		vectors[i] = UserVector{
			UserId:    user.UserId,
			Username:  user.Username,
			Ratings:   vector,
			Magnitude: Magnitude(vector),
		}
	}
	return items, vectors, nil
}

// Calculations returns the target user's vector and the cosine similarity
// between the target and every other user broken into dot product and
// magnitudes, ordered by similarity.
func (r *Recommender) Calculations(ctx context.Context, userId int) (UserVector, []Calculation, error) {
	users, _, matrix, err := r.load(ctx)
	if err != nil {
		return UserVector{}, nil, errors.Trace(err)
	}
	target, ok := matrix.Vector(userId)
	if !ok {
		return UserVector{}, nil, errors.Annotate(data.ErrUserNotExist, strconv.Itoa(userId))
	}
	usernames := usernameIndex(users)
	targetVector := UserVector{
		UserId:    userId,
		Username:  usernames[userId],
		Ratings:   target,
		Magnitude: Magnitude(target),
	}
	calculations := make([]Calculation, 0, len(users)-1)
	for _, user := range users {
		if user.UserId == userId {
			continue
		}
		vector, _ := matrix.Vector(user.UserId)
		calculations = append(calculations, Calculation{
			UserId:           user.UserId,
			Username:         user.Username,
			DotProduct:       Dot(target, vector),
			TargetMagnitude:  targetVector.Magnitude,
			UserMagnitude:    Magnitude(vector),
			CosineSimilarity: Cosine(target, vector),
		})
	}
	sort.Slice(calculations, func(i, j int) bool {
		if calculations[i].CosineSimilarity != calculations[j].CosineSimilarity {
			return calculations[i].CosineSimilarity > calculations[j].CosineSimilarity
		}
		return calculations[i].UserId < calculations[j].UserId
	})
	return targetVector, calculations, nil
}

func usernameIndex(users []data.User) map[int]string {
	usernames := make(map[int]string, len(users))
	for _, user := range users {
		usernames[user.UserId] = user.Username
	}
	return usernames
}
