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

import "math"

// Vector is a dense rating vector aligned to the item catalog order of the
// Matrix that produced it.
type Vector []float64

// Dot computes the dot product of two vectors. Vectors of different lengths
// were not produced by the same Matrix and indicate a bug in the caller.
func Dot(a, b Vector) float64 {
	if len(a) != len(b) {
		panic("mismatched vector lengths")
	}
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Magnitude computes the Euclidean norm of a vector.
func Magnitude(v Vector) float64 {
	sum := 0.0
	for _, value := range v {
		sum += value * value
	}
	return math.Sqrt(sum)
}

// Cosine computes the cosine similarity between two vectors. If either
// vector has zero magnitude the similarity is exactly 0, so a user without
// ratings has zero similarity to everyone instead of an undefined one.
func Cosine(a, b Vector) float64 {
	magA := Magnitude(a)
	magB := Magnitude(b)
	if magA == 0 || magB == 0 {
		return 0
	}
	return Dot(a, b) / (magA * magB)
}
