package loaders

import (
	"context"
	"fmt"
	"log"

	"github.com/Skino1337/PyPoE/internal/dbclient"
	"github.com/Skino1337/PyPoE/internal/domain"
	"github.com/Skino1337/PyPoE/internal/repository"
)

// ── Database Loader ────────────────────────────────────────
// Reads every table from an external database through a dbclient.Connector,
// paging through each table in storage order.

const fetchSize = 500

// ConnectorFactory opens a connector; swapped in tests.
type ConnectorFactory func(conn *domain.DatabaseConnection, password string) (dbclient.Connector, error)

type databaseLoader struct {
	connect ConnectorFactory
}

func init() { repository.RegisterLoader(&databaseLoader{connect: dbclient.NewConnector}) }

// NewDatabaseLoader returns a database loader that opens connections with connect.
func NewDatabaseLoader(connect ConnectorFactory) repository.Loader {
	return &databaseLoader{connect: connect}
}

func (l *databaseLoader) Spec() repository.LoaderSpec {
	return repository.LoaderSpec{
		Type:  "database",
		Label: "Database",
		ConfigFields: []repository.ConfigField{
			{Key: "driver", Label: "Driver", Required: true, Help: "sqlite | mysql | postgres | mongodb"},
			{Key: "host", Label: "Host", Required: true, Help: "Hostname, connection URI, or SQLite file path"},
			{Key: "port", Label: "Port"},
			{Key: "database", Label: "Database"},
			{Key: "username", Label: "Username"},
			{Key: "password", Label: "Password"},
			{Key: "sslmode", Label: "SSL Mode", Default: "disable"},
		},
	}
}

func (l *databaseLoader) Load(ctx context.Context, cfg repository.LoaderConfig, schema *repository.Schema) (repository.Tables, error) {
	conn := &domain.DatabaseConnection{
		Driver:   domain.DatabaseDriver(cfg.String("driver")),
		Host:     cfg.String("host"),
		Port:     cfg.Int("port"),
		Database: cfg.String("database"),
		Username: cfg.String("username"),
		SSLMode:  cfg.String("sslmode"),
	}
	if conn.Driver == "" || conn.Host == "" {
		return nil, fmt.Errorf("driver and host are required")
	}

	c, err := l.connect(conn, cfg.String("password"))
	if err != nil {
		return nil, err
	}
	defer c.Close()

	if err := c.TestConnection(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	names, err := tableNames(ctx, c, schema)
	if err != nil {
		return nil, err
	}

	tables := make(repository.Tables, len(names))
	for _, name := range names {
		rows, err := readTable(ctx, c, name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		tables[name] = rows
	}
	log.Printf("load: read %d table(s) from %s", len(tables), conn.Driver)
	return tables, nil
}

// tableNames lists the tables to read: the schema's tables the database
// actually holds, or every table when the schema declares none.
func tableNames(ctx context.Context, c dbclient.Connector, schema *repository.Schema) ([]string, error) {
	info, err := c.Introspect(ctx)
	if err != nil {
		return nil, fmt.Errorf("introspect: %w", err)
	}
	if schema == nil || len(schema.Tables) == 0 {
		names := make([]string, len(info.Tables))
		for i, t := range info.Tables {
			names[i] = t.Name
		}
		return names, nil
	}

	present := make(map[string]bool, len(info.Tables))
	for _, t := range info.Tables {
		present[t.Name] = true
	}
	var names []string
	for _, name := range schema.TableNames() {
		if present[name] {
			names = append(names, name)
		}
	}
	return names, nil
}

func readTable(ctx context.Context, c dbclient.Connector, table string) ([]map[string]any, error) {
	page, err := c.Execute(ctx, c.TableQuery(table), fetchSize)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	rows := pageRows(nil, page)
	for page.HasMore {
		page, err = c.FetchMore(ctx, fetchSize)
		if err != nil {
			return nil, fmt.Errorf("fetch more: %w", err)
		}
		rows = pageRows(rows, page)
	}
	return rows, nil
}

func pageRows(dst []map[string]any, page *dbclient.QueryPage) []map[string]any {
	for _, row := range page.Rows {
		data := make(map[string]any, len(page.Columns))
		for i, col := range page.Columns {
			if i < len(row) {
				data[col] = row[i]
			}
		}
		dst = append(dst, data)
	}
	return dst
}
