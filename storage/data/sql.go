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
	"strconv"

	"github.com/juju/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/reelrec-io/reelrec/storage"
)

// SQLDriver is the type of SQL database.
type SQLDriver int

const (
	MySQL SQLDriver = iota
	Postgres
	SQLite
)

// SQLUser is the data model for users in SQL databases.
type SQLUser struct {
	UserId   int    `gorm:"column:user_id;primaryKey"`
	Username string `gorm:"column:username;type:varchar(256) not null"`
}

// SQLItem is the data model for items in SQL databases.
type SQLItem struct {
	ItemId      int    `gorm:"column:item_id;primaryKey"`
	Title       string `gorm:"column:title;type:varchar(256) not null"`
	Genre       string `gorm:"column:genre;type:varchar(256) not null"`
	Description string `gorm:"column:description;type:text not null"`
}

// SQLRating is the data model for ratings in SQL databases.
type SQLRating struct {
	UserId int     `gorm:"column:user_id;primaryKey"`
	ItemId int     `gorm:"column:item_id;primaryKey"`
	Rating float64 `gorm:"column:rating;not null"`
}

// SQLDatabase use a SQL database as the data store.
type SQLDatabase struct {
	gormDB      *gorm.DB
	driver      SQLDriver
	TablePrefix storage.TablePrefix
}

// Init tables in the SQL database.
func (d *SQLDatabase) Init() error {
	err := d.gormDB.AutoMigrate(SQLUser{}, SQLItem{}, SQLRating{})
	return errors.Trace(err)
}

// Ping the SQL database.
func (d *SQLDatabase) Ping() error {
	db, err := d.gormDB.DB()
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(db.Ping())
}

// Close the connection to the SQL database.
func (d *SQLDatabase) Close() error {
	db, err := d.gormDB.DB()
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(db.Close())
}

// BatchInsertUsers inserts users into the SQL database. Existing users with
// the same id are overwritten.
func (d *SQLDatabase) BatchInsertUsers(ctx context.Context, users []User) error {
	if len(users) == 0 {
		return nil
	}
	rows := make([]SQLUser, len(users))
	for i, user := range users {
		rows[i] = SQLUser(user)
	}
	err := d.gormDB.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows).Error
	return errors.Trace(err)
}

// BatchInsertItems inserts items into the SQL database. Existing items with
// the same id are overwritten.
func (d *SQLDatabase) BatchInsertItems(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]SQLItem, len(items))
	for i, item := range items {
		rows[i] = SQLItem(item)
	}
	err := d.gormDB.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows).Error
	return errors.Trace(err)
}

// BatchInsertRatings inserts ratings into the SQL database. An existing
// rating for the same (user, item) pair is overwritten.
func (d *SQLDatabase) BatchInsertRatings(ctx context.Context, ratings []Rating) error {
	if len(ratings) == 0 {
		return nil
	}
	rows := make([]SQLRating, len(ratings))
	for i, rating := range ratings {
		rows[i] = SQLRating(rating)
	}
	err := d.gormDB.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows).Error
	return errors.Trace(err)
}

// GetUser returns a user from the SQL database.
func (d *SQLDatabase) GetUser(ctx context.Context, userId int) (User, error) {
	var row SQLUser
	result := d.gormDB.WithContext(ctx).
		Where("user_id = ?", userId).
		First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, errors.Annotate(ErrUserNotExist, strconv.Itoa(userId))
		}
		return User{}, errors.Trace(result.Error)
	}
	return User(row), nil
}

// ListUsers returns all users ordered by user id.
func (d *SQLDatabase) ListUsers(ctx context.Context) ([]User, error) {
	var rows []SQLUser
	if err := d.gormDB.WithContext(ctx).Order("user_id").Find(&rows).Error; err != nil {
		return nil, errors.Trace(err)
	}
	users := make([]User, len(rows))
	for i, row := range rows {
		users[i] = User(row)
	}
	return users, nil
}

// ListItems returns all items ordered by item id.
func (d *SQLDatabase) ListItems(ctx context.Context) ([]Item, error) {
	var rows []SQLItem
	if err := d.gormDB.WithContext(ctx).Order("item_id").Find(&rows).Error; err != nil {
		return nil, errors.Trace(err)
	}
	items := make([]Item, len(rows))
	for i, row := range rows {
		items[i] = Item(row)
	}
	return items, nil
}

// ListRatings returns all ratings ordered by user id, then item id.
func (d *SQLDatabase) ListRatings(ctx context.Context) ([]Rating, error) {
	var rows []SQLRating
	if err := d.gormDB.WithContext(ctx).Order("user_id, item_id").Find(&rows).Error; err != nil {
		return nil, errors.Trace(err)
	}
	ratings := make([]Rating, len(rows))
	for i, row := range rows {
		ratings[i] = Rating(row)
	}
	return ratings, nil
}
