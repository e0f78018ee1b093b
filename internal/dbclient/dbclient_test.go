package dbclient

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Skino1337/PyPoE/internal/domain"
)

func TestBuildDSN(t *testing.T) {
	conn := &domain.DatabaseConnection{Host: "db.local", Database: "poe", Username: "wiki"}

	assert.Equal(t, "wiki:pw@tcp(db.local:3306)/poe?charset=utf8mb4&parseTime=false", buildMySQLDSN(conn, "pw"))
	assert.Equal(t,
		"host=db.local port=5432 user=wiki password=pw dbname=poe sslmode=disable default_transaction_read_only=on",
		buildPostgresDSN(conn, "pw"))

	conn.SSLMode = "require"
	assert.Contains(t, buildMySQLDSN(conn, "pw"), "&tls=true")
}

func TestIsReadQuery(t *testing.T) {
	assert.True(t, isReadQuery("  select * from Quest"))
	assert.True(t, isReadQuery("PRAGMA table_info('Quest')"))
	assert.False(t, isReadQuery("DELETE FROM Quest"))
	assert.False(t, isReadQuery("drop table Quest"))
}

func TestSQLiteConnector(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE "Odd""Name" (Id TEXT, Data BLOB)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO "Odd""Name" VALUES ('a', x'6869'), ('b', NULL), ('c', NULL)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	c, err := NewConnector(&domain.DatabaseConnection{Driver: domain.DatabaseDriverSQLite, Host: path}, "")
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()
	require.NoError(t, c.TestConnection(ctx))

	info, err := c.Introspect(ctx)
	require.NoError(t, err)
	require.Len(t, info.Tables, 1)
	assert.Equal(t, `Odd"Name`, info.Tables[0].Name)
	assert.Len(t, info.Tables[0].Columns, 2)

	page, err := c.Execute(ctx, c.TableQuery(`Odd"Name`), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Id", "Data"}, page.Columns)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "hi", page.Rows[0][1], "blobs read as text")
	assert.True(t, page.HasMore)

	page, err = c.FetchMore(ctx, 2)
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.False(t, page.HasMore)
	assert.Equal(t, 3, page.TotalFetched)

	_, err = c.Execute(ctx, `DELETE FROM "Odd""Name"`, 10)
	assert.Error(t, err, "connectors are read-only")
}

func TestNewConnector_UnknownDriver(t *testing.T) {
	_, err := NewConnector(&domain.DatabaseConnection{Driver: "oracle"}, "")
	assert.Error(t, err)
}

func TestMongoURI(t *testing.T) {
	tests := []struct {
		name   string
		conn   domain.DatabaseConnection
		uri    string
		dbName string
	}{
		{
			name:   "host and port",
			conn:   domain.DatabaseConnection{Host: "db.local", Database: "poe"},
			uri:    "mongodb://db.local:27017",
			dbName: "poe",
		},
		{
			name:   "credentials and extras",
			conn:   domain.DatabaseConnection{Host: "db.local", Port: 27018, Username: "wiki", ExtraJSON: `{"replicaSet":"rs0","authSource":"admin"}`},
			uri:    "mongodb://wiki:pw@db.local:27018/?authSource=admin&replicaSet=rs0",
			dbName: "test",
		},
		{
			name:   "atlas uri with placeholder",
			conn:   domain.DatabaseConnection{Host: "mongodb+srv://wiki:<db_password>@cluster0.example.net/?retryWrites=true", Database: "poe"},
			uri:    "mongodb+srv://wiki:pw@cluster0.example.net/poe?retryWrites=true",
			dbName: "poe",
		},
		{
			name:   "database from uri path",
			conn:   domain.DatabaseConnection{Host: "mongodb://wiki@db.local/game?ssl=false"},
			uri:    "mongodb://wiki@db.local/game?ssl=false",
			dbName: "game",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri, dbName := mongoURI(&tt.conn, "pw")
			assert.Equal(t, tt.uri, uri)
			assert.Equal(t, tt.dbName, dbName)
		})
	}
}

func TestParseMongoQuery(t *testing.T) {
	c := &mongoConnector{}
	mq, err := parseMongoQuery(c.TableQuery("Quest"))
	require.NoError(t, err)
	assert.Equal(t, "Quest", mq.Collection)
	assert.Equal(t, map[string]any{"$natural": float64(1)}, mq.Sort)

	_, err = parseMongoQuery(`{"collection":"Quest","operation":"deleteMany"}`)
	assert.ErrorContains(t, err, "read-only")
	_, err = parseMongoQuery(`{"operation":"find"}`)
	assert.Error(t, err)
	_, err = parseMongoQuery(`not json`)
	assert.Error(t, err)
}

func TestDocsToRows(t *testing.T) {
	oid := bson.NewObjectID()
	when := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	docs := []bson.D{
		{{Key: "Name", Value: "Iron Ring"}, {Key: "_id", Value: oid}, {Key: "Level", Value: int32(12)}},
		{{Key: "_id", Value: oid}, {Key: "Tags", Value: bson.A{"ring", int32(2)}}, {Key: "Added", Value: bson.NewDateTimeFromTime(when)}},
	}

	columns, rows := docsToRows(docs)
	assert.Equal(t, []string{"_id", "Added", "Level", "Name", "Tags"}, columns)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{oid.Hex(), nil, int64(12), "Iron Ring", nil}, rows[0])
	assert.Equal(t, []any{oid.Hex(), "2026-03-01T12:00:00Z", nil, nil, []any{"ring", int64(2)}}, rows[1])
}

func TestBsonValue_Fallback(t *testing.T) {
	assert.Equal(t, true, bsonValue(true))
	assert.Equal(t, 1.5, bsonValue(1.5))
	assert.Equal(t, "[{a 1}]", bsonValue(bson.D{{Key: "a", Value: int32(1)}}))
}
