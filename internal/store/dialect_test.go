package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDialectStatements(t *testing.T) {
	columns := []string{"subscription_id", "plan"}
	kinds := []kind{kindInteger, kindText}
	key := []string{"subscription_id", "plan"}

	require.Equal(t,
		`CREATE TABLE "dim_product" ("subscription_id" BIGINT, "plan" TEXT)`,
		Postgres.createTable("dim_product", columns, kinds, key))
	require.Equal(t,
		`ALTER TABLE "dim_product" ADD PRIMARY KEY ("subscription_id", "plan")`,
		Postgres.addPrimaryKey("dim_product", key))
	require.Equal(t,
		`INSERT INTO "dim_product" ("subscription_id", "plan") VALUES ($1, $2), ($3, $4)`,
		Postgres.insert("dim_product", columns, 2))

	require.Equal(t,
		`CREATE TABLE "dim_product" ("subscription_id" BIGINT NOT NULL, "plan" TEXT NOT NULL, PRIMARY KEY ("subscription_id", "plan"))`,
		SQLite.createTable("dim_product", columns, kinds, key))
	require.Equal(t,
		`INSERT INTO "dim_product" ("subscription_id", "plan") VALUES (?, ?)`,
		SQLite.insert("dim_product", columns, 1))
}

func TestQuote(t *testing.T) {
	require.Equal(t, `"a""b"`, quote(`a"b`))
}

func TestWiden(t *testing.T) {
	tests := []struct {
		a, b, want kind
	}{
		{kindEmpty, kindInteger, kindInteger},
		{kindInteger, kindEmpty, kindInteger},
		{kindInteger, kindNumeric, kindNumeric},
		{kindNumeric, kindInteger, kindNumeric},
		{kindTimestamp, kindTimestamp, kindTimestamp},
		{kindInteger, kindText, kindMixed},
		{kindMixed, kindInteger, kindMixed},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, widen(tt.a, tt.b), "widen(%d, %d)", tt.a, tt.b)
	}
}
