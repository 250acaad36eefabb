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

package data

import (
	"context"
	"fmt"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/suite"
)

type SQLiteTestSuite struct {
	suite.Suite
	Database
}

func (suite *SQLiteTestSuite) SetupTest() {
	var err error
	suite.Database, err = Open(fmt.Sprintf("sqlite://%s/data.db", suite.T().TempDir()), "reelrec_")
	suite.NoError(err)
	suite.NoError(suite.Database.Init())
}

func (suite *SQLiteTestSuite) TearDownTest() {
	suite.NoError(suite.Database.Close())
}

func (suite *SQLiteTestSuite) TestPing() {
	suite.NoError(suite.Database.Ping())
}

func (suite *SQLiteTestSuite) TestUsers() {
	ctx := context.Background()
	err := suite.Database.BatchInsertUsers(ctx, []User{
		{UserId: 3, Username: "carol"},
		{UserId: 1, Username: "alice"},
		{UserId: 2, Username: "bob"},
	})
	suite.NoError(err)

	// list users ordered by id
	users, err := suite.Database.ListUsers(ctx)
	suite.NoError(err)
	suite.Equal([]User{
		{UserId: 1, Username: "alice"},
		{UserId: 2, Username: "bob"},
		{UserId: 3, Username: "carol"},
	}, users)

	// get a user
	user, err := suite.Database.GetUser(ctx, 2)
	suite.NoError(err)
	suite.Equal(User{UserId: 2, Username: "bob"}, user)

	// get a missing user
	_, err = suite.Database.GetUser(ctx, 404)
	suite.True(errors.Is(err, ErrUserNotExist), "expected not found, got %v", err)

	// overwrite a user
	err = suite.Database.BatchInsertUsers(ctx, []User{{UserId: 2, Username: "bobby"}})
	suite.NoError(err)
	user, err = suite.Database.GetUser(ctx, 2)
	suite.NoError(err)
	suite.Equal("bobby", user.Username)
}

func (suite *SQLiteTestSuite) TestItems() {
	ctx := context.Background()
	err := suite.Database.BatchInsertItems(ctx, []Item{
		{ItemId: 2, Title: "Interstellar", Genre: "Sci-Fi", Description: "Space and time."},
		{ItemId: 1, Title: "Inception", Genre: "Sci-Fi", Description: "Dreams within dreams."},
	})
	suite.NoError(err)

	items, err := suite.Database.ListItems(ctx)
	suite.NoError(err)
	suite.Len(items, 2)
	suite.Equal(1, items[0].ItemId)
	suite.Equal(2, items[1].ItemId)
}

func (suite *SQLiteTestSuite) TestRatings() {
	ctx := context.Background()
	err := suite.Database.BatchInsertRatings(ctx, []Rating{
		{UserId: 2, ItemId: 1, Rating: 3},
		{UserId: 1, ItemId: 2, Rating: 4.5},
		{UserId: 1, ItemId: 1, Rating: 5},
	})
	suite.NoError(err)

	ratings, err := suite.Database.ListRatings(ctx)
	suite.NoError(err)
	suite.Equal([]Rating{
		{UserId: 1, ItemId: 1, Rating: 5},
		{UserId: 1, ItemId: 2, Rating: 4.5},
		{UserId: 2, ItemId: 1, Rating: 3},
	}, ratings)

	// a second insert for the same pair overwrites the rating
	err = suite.Database.BatchInsertRatings(ctx, []Rating{{UserId: 2, ItemId: 1, Rating: 4}})
	suite.NoError(err)
	ratings, err = suite.Database.ListRatings(ctx)
	suite.NoError(err)
	suite.Len(ratings, 3)
	suite.Equal(4.0, ratings[2].Rating)
}

func TestSQLite(t *testing.T) {
	suite.Run(t, new(SQLiteTestSuite))
}

func TestNoDatabase(t *testing.T) {
	ctx := context.Background()
	var database NoDatabase
	if err := database.Ping(); !errors.Is(err, ErrNoDatabase) {
		t.Fatalf("expected ErrNoDatabase, got %v", err)
	}
	if _, err := database.ListRatings(ctx); !errors.Is(err, ErrNoDatabase) {
		t.Fatalf("expected ErrNoDatabase, got %v", err)
	}
}

func TestOpenUnknown(t *testing.T) {
	_, err := Open("unknown://somewhere", "")
	if err == nil {
		t.Fatal("expected error for unknown database")
	}
}
