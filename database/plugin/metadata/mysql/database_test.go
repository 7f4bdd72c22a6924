// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mysql_test

import (
	"testing"

	"github.com/blinklabs-io/gatekeeper/database/plugin/metadata/mysql"
	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	store := mysql.New(
		mysql.WithHost("db.example"),
		mysql.WithUser("gk"),
		mysql.WithPassword("secret"),
	)
	assert.Equal(
		t,
		"gk:secret@tcp(db.example:3306)/gatekeeper?charset=utf8mb4&parseTime=True&loc=UTC",
		store.DSN(),
	)
	assert.Equal(t, "custom", mysql.New(mysql.WithDSN("custom")).DSN())
}
