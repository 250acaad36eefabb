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

package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/reelrec-io/reelrec/base/log"
	"github.com/reelrec-io/reelrec/config"
	"github.com/reelrec-io/reelrec/logics"
	"github.com/reelrec-io/reelrec/storage/data"
)

// RestServer implements the REST-ful API server.
type RestServer struct {
	DataClient  data.Database
	Config      *config.Config
	Recommender *logics.Recommender
	HttpHost    string
	HttpPort    int
	WebService  *restful.WebService
}

// NewRestServer creates a REST server on top of a data store.
func NewRestServer(dataClient data.Database, conf *config.Config) *RestServer {
	return &RestServer{
		DataClient:  dataClient,
		Config:      conf,
		Recommender: logics.NewRecommender(dataClient, conf.Recommend),
		HttpHost:    conf.Server.HttpHost,
		HttpPort:    conf.Server.HttpPort,
		WebService:  new(restful.WebService),
	}
}

// StartHttpServer starts the REST-ful API server.
func (s *RestServer) StartHttpServer() {
	// register restful APIs
	s.CreateWebService()
	restful.DefaultContainer.Add(s.WebService)
	// register swagger documents
	specConfig := restfulspec.Config{
		WebServices: restful.RegisteredWebServices(),
		APIPath:     "/apidocs.json",
	}
	restful.DefaultContainer.Add(restfulspec.NewOpenAPIService(specConfig))
	// register prometheus
	http.Handle("/metrics", promhttp.Handler())
	// register health check
	http.HandleFunc("/health", s.checkHealth)

	log.Logger().Info("start http server",
		zap.String("url", fmt.Sprintf("http://%s:%d", s.HttpHost, s.HttpPort)))
	log.Logger().Fatal("failed to start http server",
		zap.Error(http.ListenAndServe(fmt.Sprintf("%s:%d", s.HttpHost, s.HttpPort), nil)))
}

func LogFilter(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	start := time.Now()
	chain.ProcessFilter(req, resp)
	log.Logger().Info(fmt.Sprintf("%s %s", req.Request.Method, req.Request.URL),
		zap.Int("status_code", resp.StatusCode()),
		zap.Duration("elapsed", time.Since(start)))
}

// CreateWebService creates the web service.
func (s *RestServer) CreateWebService() {
	ws := s.WebService
	ws.Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	ws.Path("/api/")
	ws.Filter(LogFilter)

	// Get recommendations for a user
	ws.Route(ws.GET("/recommend/{user-id}").To(s.getRecommend).
		Doc("Get recommendations for a user.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommendation"}).
		Param(ws.PathParameter("user-id", "identifier of the user").DataType("integer")).
		Param(ws.QueryParameter("limit", "number of returned recommendations").DataType("integer")).
		Writes(RecommendResponse{}))
	// Get similarities between a user and all other users
	ws.Route(ws.GET("/similarity/{user-id}").To(s.getSimilarity).
		Doc("Get the similarity ranking between a user and all other users.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommendation"}).
		Param(ws.PathParameter("user-id", "identifier of the user").DataType("integer")).
		Writes(SimilarityResponse{}))
	// Get database info
	ws.Route(ws.GET("/database-info").To(s.getDatabaseInfo).
		Doc("Get counts and summaries of users, items and ratings.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"diagnostics"}).
		Writes(DatabaseInfoResponse{}))
	// Get rating vectors
	ws.Route(ws.GET("/vectors/{user-id}").To(s.getVectors).
		Doc("Get every user's rating vector against the item catalog.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"diagnostics"}).
		Param(ws.PathParameter("user-id", "identifier of the target user").DataType("integer")).
		Writes(VectorsResponse{}))
	// Get similarity calculation breakdown
	ws.Route(ws.GET("/calculation/{user-id}").To(s.getCalculation).
		Doc("Get the cosine similarity calculation between a user and all other users.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"diagnostics"}).
		Param(ws.PathParameter("user-id", "identifier of the target user").DataType("integer")).
		Writes(CalculationResponse{}))
}

// RecommendedItem is one entry of the recommendation list returned by the
// API. PredictedRating and Confidence are rounded here, at the presentation
// boundary only.
type RecommendedItem struct {
	ItemId          int     `json:"item_id"`
	Title           string  `json:"title"`
	Genre           string  `json:"genre"`
	PredictedRating float64 `json:"predicted_rating"`
	Confidence      float64 `json:"confidence"`
	Sources         int     `json:"sources"`
}

type RecommendResponse struct {
	UserId               int               `json:"user_id"`
	Recommendations      []RecommendedItem `json:"recommendations"`
	TotalRecommendations int               `json:"total_recommendations"`
	GeneratedAt          time.Time         `json:"generated_at"`
}

type SimilarUser struct {
	UserId               int     `json:"user_id"`
	Username             string  `json:"username"`
	Similarity           float64 `json:"similarity"`
	SimilarityPercentage string  `json:"similarity_percentage"`
}

type SimilarityResponse struct {
	TargetUser        int           `json:"target_user"`
	Similarities      []SimilarUser `json:"similarities"`
	TotalSimilarUsers int           `json:"total_similar_users"`
	GeneratedAt       time.Time     `json:"generated_at"`
}

type DatabaseInfoResponse struct {
	TotalUsers   int         `json:"total_users"`
	TotalItems   int         `json:"total_items"`
	TotalRatings int         `json:"total_ratings"`
	Users        []data.User `json:"users"`
	Items        []data.Item `json:"items"`
}

type UserVectorView struct {
	UserId          int       `json:"user_id"`
	Username        string    `json:"username"`
	Ratings         []float64 `json:"ratings"`
	VectorMagnitude float64   `json:"vector_magnitude"`
}

type VectorsResponse struct {
	TargetUser  int              `json:"target_user"`
	Items       []string         `json:"items"`
	UserVectors []UserVectorView `json:"user_vectors"`
	TotalItems  int              `json:"total_items"`
	TotalUsers  int              `json:"total_users"`
}

type CalculationEntry struct {
	UserId           int     `json:"user_id"`
	Username         string  `json:"username"`
	DotProduct       float64 `json:"dot_product"`
	TargetMagnitude  float64 `json:"target_magnitude"`
	UserMagnitude    float64 `json:"user_magnitude"`
	CosineSimilarity float64 `json:"cosine_similarity"`
	Calculation      string  `json:"calculation"`
}

type TargetVector struct {
	Ratings   []float64 `json:"ratings"`
	Magnitude float64   `json:"magnitude"`
}

type Formula struct {
	DotProduct       string `json:"dot_product"`
	CosineSimilarity string `json:"cosine_similarity"`
}

type CalculationResponse struct {
	TargetUser   int                `json:"target_user"`
	TargetVector TargetVector       `json:"target_vector"`
	Calculations []CalculationEntry `json:"calculations"`
	Formula      Formula            `json:"formula"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *RestServer) getRecommend(request *restful.Request, response *restful.Response) {
	start := time.Now()
	userId, err := parseUserId(request)
	if err != nil {
		BadRequest(response, err)
		return
	}
	limit := 0
	if rawLimit := request.QueryParameter("limit"); rawLimit != "" {
		if limit, err = strconv.Atoi(rawLimit); err != nil {
			BadRequest(response, errors.BadRequestf("invalid limit: %s", rawLimit))
			return
		}
	}
	recommendations, err := s.Recommender.Recommend(request.Request.Context(), userId, limit)
	if err != nil {
		if errors.Is(err, errors.NotFound) {
			NotFound(response, err)
		} else {
			InternalServerError(response, err)
		}
		return
	}
	RecommendSeconds.Observe(time.Since(start).Seconds())
	Ok(response, RecommendResponse{
		UserId: userId,
		Recommendations: lo.Map(recommendations, func(r logics.Recommendation, _ int) RecommendedItem {
			return RecommendedItem{
				ItemId:          r.Item.ItemId,
				Title:           r.Item.Title,
				Genre:           r.Item.Genre,
				PredictedRating: round(r.PredictedRating, 2),
				Confidence:      round(r.Confidence, 3),
				Sources:         r.Sources,
			}
		}),
		TotalRecommendations: len(recommendations),
		GeneratedAt:          time.Now().UTC(),
	})
}

func (s *RestServer) getSimilarity(request *restful.Request, response *restful.Response) {
	start := time.Now()
	userId, err := parseUserId(request)
	if err != nil {
		BadRequest(response, err)
		return
	}
	similarities, err := s.Recommender.Similarities(request.Request.Context(), userId)
	if err != nil {
		if errors.Is(err, errors.NotFound) {
			NotFound(response, err)
		} else {
			InternalServerError(response, err)
		}
		return
	}
	SimilaritySeconds.Observe(time.Since(start).Seconds())
	Ok(response, SimilarityResponse{
		TargetUser: userId,
		Similarities: lo.Map(similarities, func(similarity logics.UserSimilarity, _ int) SimilarUser {
			return SimilarUser{
				UserId:               similarity.UserId,
				Username:             similarity.Username,
				Similarity:           round(similarity.Similarity, 4),
				SimilarityPercentage: fmt.Sprintf("%.2f%%", similarity.Similarity*100),
			}
		}),
		TotalSimilarUsers: len(similarities),
		GeneratedAt:       time.Now().UTC(),
	})
}

func (s *RestServer) getDatabaseInfo(request *restful.Request, response *restful.Response) {
	ctx := request.Request.Context()
	users, err := s.DataClient.ListUsers(ctx)
	if err != nil {
		InternalServerError(response, err)
		return
	}
	items, err := s.DataClient.ListItems(ctx)
	if err != nil {
		InternalServerError(response, err)
		return
	}
	ratings, err := s.DataClient.ListRatings(ctx)
	if err != nil {
		InternalServerError(response, err)
		return
	}
	Ok(response, DatabaseInfoResponse{
		TotalUsers: len(users),
		TotalItems: len(items),
		TotalRatings: len(lo.Filter(ratings, func(rating data.Rating, _ int) bool {
			return rating.Rating > 0
		})),
		Users: users,
		Items: items,
	})
}

func (s *RestServer) getVectors(request *restful.Request, response *restful.Response) {
	userId, err := parseUserId(request)
	if err != nil {
		BadRequest(response, err)
		return
	}
	items, vectors, err := s.Recommender.Vectors(request.Request.Context())
	if err != nil {
		InternalServerError(response, err)
		return
	}
	Ok(response, VectorsResponse{
		TargetUser: userId,
		Items: lo.Map(items, func(item data.Item, _ int) string {
			return item.Title
		}),
		UserVectors: lo.Map(vectors, func(vector logics.UserVector, _ int) UserVectorView {
			return UserVectorView{
				UserId:          vector.UserId,
				Username:        vector.Username,
				Ratings:         vector.Ratings,
				VectorMagnitude: round(vector.Magnitude, 3),
			}
		}),
		TotalItems: len(items),
		TotalUsers: len(vectors),
	})
}

func (s *RestServer) getCalculation(request *restful.Request, response *restful.Response) {
	userId, err := parseUserId(request)
	if err != nil {
		BadRequest(response, err)
		return
	}
	target, calculations, err := s.Recommender.Calculations(request.Request.Context(), userId)
	if err != nil {
		if errors.Is(err, errors.NotFound) {
			NotFound(response, err)
		} else {
			InternalServerError(response, err)
		}
		return
	}
	Ok(response, CalculationResponse{
		TargetUser: userId,
		TargetVector: TargetVector{
			Ratings:   target.Ratings,
			Magnitude: round(target.Magnitude, 3),
		},
		Calculations: lo.Map(calculations, func(calculation logics.Calculation, _ int) CalculationEntry {
			return CalculationEntry{
				UserId:           calculation.UserId,
				Username:         calculation.Username,
				DotProduct:       round(calculation.DotProduct, 3),
				TargetMagnitude:  round(calculation.TargetMagnitude, 3),
				UserMagnitude:    round(calculation.UserMagnitude, 3),
				CosineSimilarity: round(calculation.CosineSimilarity, 4),
				Calculation: fmt.Sprintf("(%.2f) / (%.2f × %.2f)",
					calculation.DotProduct, calculation.TargetMagnitude, calculation.UserMagnitude),
			}
		}),
		Formula: Formula{
			DotProduct:       "A·B = Σ(Aᵢ × Bᵢ)",
			CosineSimilarity: "cos(θ) = (A·B) / (||A|| × ||B||)",
		},
	})
}

func (s *RestServer) checkHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.DataClient.Ping(); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fmt.Sprintf(`{"status":"ERROR","error":%q}`, err.Error())))
		return
	}
	_, _ = w.Write([]byte(`{"status":"OK"}`))
}

func parseUserId(request *restful.Request) (int, error) {
	raw := request.PathParameter("user-id")
	userId, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.BadRequestf("invalid user id: %s", raw)
	}
	return userId, nil
}

// round keeps n decimal places. Used only when values cross the API
// boundary; internal computation never rounds.
func round(value float64, n int) float64 {
	shift := math.Pow(10, float64(n))
	return math.Round(value*shift) / shift
}

func BadRequest(response *restful.Response, err error) {
	log.Logger().Error("bad request", zap.Error(err))
	if err = response.WriteError(http.StatusBadRequest, err); err != nil {
		log.Logger().Error("failed to write error", zap.Error(err))
	}
}

func NotFound(response *restful.Response, err error) {
	log.Logger().Error("not found", zap.Error(err))
	if err = response.WriteError(http.StatusNotFound, err); err != nil {
		log.Logger().Error("failed to write error", zap.Error(err))
	}
}

func InternalServerError(response *restful.Response, err error) {
	log.Logger().Error("internal server error", zap.Error(err))
	if err = response.WriteError(http.StatusInternalServerError, err); err != nil {
		log.Logger().Error("failed to write error", zap.Error(err))
	}
}

func Ok(response *restful.Response, content interface{}) {
	if err := response.WriteAsJson(content); err != nil {
		log.Logger().Error("failed to write json", zap.Error(err))
	}
}
