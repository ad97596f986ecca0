package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildDSN(t *testing.T) {
	base := AppConfig{
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "gram",
		DBPassword: "p@ss word",
		DBName:     "gram",
		DBSSLMode:  "disable",
	}

	tests := []struct {
		name   string
		mutate func(c *AppConfig)
		want   string
	}{
		{
			name:   "postgres assembled",
			mutate: func(c *AppConfig) { c.DBDriver = "postgres" },
			want:   "postgres://gram:p%40ss%20word@db:5432/gram?sslmode=disable",
		},
		{
			name: "postgres uri wins",
			mutate: func(c *AppConfig) {
				c.DBDriver = "postgres"
				c.DatabaseURI = "postgres://other/db"
			},
			want: "postgres://other/db",
		},
		{
			name: "mysql",
			mutate: func(c *AppConfig) {
				c.DBDriver = "mysql"
				c.DBPort = "3306"
			},
			want: "gram:p@ss word@tcp(db:3306)/gram?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "sqlite memory",
			mutate: func(c *AppConfig) {
				c.DBDriver = "sqlite"
				c.DBName = ":memory:"
			},
			want: ":memory:?_foreign_keys=on",
		},
		{
			name: "sqlite with params",
			mutate: func(c *AppConfig) {
				c.DBDriver = "sqlite"
				c.DatabaseURI = "file:gram.db?cache=shared"
			},
			want: "file:gram.db?cache=shared&_foreign_keys=on",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			got, err := BuildDSN(cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildDSN_UnknownDriver(t *testing.T) {
	_, err := BuildDSN(AppConfig{DBDriver: "oracle"})
	require.Error(t, err)
}

type migrated struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestInitDatabase_SQLiteMigrates(t *testing.T) {
	db, err := InitDatabase(AppConfig{DBDriver: "sqlite", DBName: ":memory:", LogLevel: "silent"}, zap.NewNop(), &migrated{})
	require.NoError(t, err)

	require.NoError(t, db.Create(&migrated{Name: "x"}).Error)
	var count int64
	require.NoError(t, db.Model(&migrated{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
