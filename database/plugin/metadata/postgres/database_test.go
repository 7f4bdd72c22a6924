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

package postgres_test

import (
	"testing"

	"github.com/blinklabs-io/gatekeeper/database/plugin/metadata/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	store := postgres.New(
		postgres.WithHost("db.example"),
		postgres.WithPort(6543),
		postgres.WithUser("gk"),
		postgres.WithPassword("secret"),
		postgres.WithDatabase("gatekeeper"),
	)
	assert.Equal(
		t,
		"host=db.example user=gk password=secret dbname=gatekeeper port=6543 sslmode=disable TimeZone=UTC",
		store.DSN(),
	)

	store = postgres.New(postgres.WithDSN("  postgres://u@h/db  "))
	assert.Equal(t, "postgres://u@h/db", store.DSN())
}

func TestCloseWithoutStart(t *testing.T) {
	store := postgres.New()
	require.NoError(t, store.Close())
}
