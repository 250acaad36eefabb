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
	"strings"

	"github.com/juju/errors"
	"github.com/samber/lo"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/reelrec-io/reelrec/storage"
)

var (
	ErrUserNotExist = errors.NotFoundf("user")
	ErrItemNotExist = errors.NotFoundf("item")
	ErrNoDatabase   = errors.NotAssignedf("database")
)

// User stores meta data about a user.
type User struct {
	UserId   int    `gorm:"column:user_id;primaryKey" json:"user_id"`
	Username string `gorm:"column:username" json:"username"`
}

// Item stores meta data about an item.
type Item struct {
	ItemId      int    `gorm:"column:item_id;primaryKey" json:"item_id"`
	Title       string `gorm:"column:title" json:"title"`
	Genre       string `gorm:"column:genre" json:"genre"`
	Description string `gorm:"column:description" json:"description"`
}

// Rating stores the rating a user gave to an item. At most one rating exists
// per (user, item) pair.
type Rating struct {
	UserId int     `gorm:"column:user_id;primaryKey" json:"user_id"`
	ItemId int     `gorm:"column:item_id;primaryKey" json:"item_id"`
	Rating float64 `gorm:"column:rating" json:"rating"`
}

// Database is the data store for users, items and ratings. List queries
// return rows ordered by id so that every caller observes the same item
// catalog order.
type Database interface {
	Init() error
	Ping() error
	Close() error
	BatchInsertUsers(ctx context.Context, users []User) error
	BatchInsertItems(ctx context.Context, items []Item) error
	BatchInsertRatings(ctx context.Context, ratings []Rating) error
	GetUser(ctx context.Context, userId int) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	ListItems(ctx context.Context) ([]Item, error)
	ListRatings(ctx context.Context) ([]Rating, error)
}

// Open a connection to a database. The scheme of the URL decides the driver:
// postgres://, mysql:// and sqlite:// are supported.
func Open(path, tablePrefix string) (Database, error) {
	var err error
	database := new(SQLDatabase)
	database.TablePrefix = storage.TablePrefix(tablePrefix)
	switch {
	case strings.HasPrefix(path, storage.PostgresPrefix), strings.HasPrefix(path, storage.PostgreSQLPrefix):
		database.driver = Postgres
		database.gormDB, err = gorm.Open(postgres.Open(path), storage.NewGORMConfig(tablePrefix))
		if err != nil {
			return nil, errors.Trace(err)
		}
		return database, nil
	case strings.HasPrefix(path, storage.MySQLPrefix):
		database.driver = MySQL
		dsn := path[len(storage.MySQLPrefix):]
		database.gormDB, err = gorm.Open(mysql.Open(dsn), storage.NewGORMConfig(tablePrefix))
		if err != nil {
			return nil, errors.Trace(err)
		}
		return database, nil
	case strings.HasPrefix(path, storage.SQLitePrefix):
		database.driver = SQLite
		name := path[len(storage.SQLitePrefix):]
		// shared cache keeps the temporary databases in tests visible across
		// connections of the same process
		if name, err = storage.AppendURLParams(name, []lo.Tuple2[string, string]{
			{A: "cache", B: "shared"},
		}); err != nil {
			return nil, errors.Trace(err)
		}
		database.gormDB, err = gorm.Open(sqlite.Open(name), storage.NewGORMConfig(tablePrefix))
		if err != nil {
			return nil, errors.Trace(err)
		}
		return database, nil
	}
	return nil, errors.Errorf("unknown database: %s", path)
}
