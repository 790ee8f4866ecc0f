package envcheck

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var ErrNotConfigured = errors.New("not configured")

// DatabasePinger connects to the configured database kind using connection
// settings read through getenv. Missing settings wrap ErrNotConfigured.
type DatabasePinger func(ctx context.Context, kind string, getenv func(string) string) error

var databaseLabels = map[string]string{
	DatabasePostgres: "PostgreSQL",
	DatabaseMySQL:    "MySQL",
	DatabaseMongo:    "MongoDB",
	DatabaseRedis:    "Redis",
}

func (c *Checker) checkDatabase(ctx context.Context) []Check {
	kind := c.cfg.Database
	if kind == "" {
		return nil
	}
	label := databaseLabels[kind]

	pingCtx, cancel := context.WithTimeout(ctx, c.settings.DBTimeout)
	defer cancel()

	err := c.databases(pingCtx, kind, c.getenv)
	switch {
	case err == nil:
		return []Check{pass(SectionDatabase, label, label+" connection successful")}
	case errors.Is(err, ErrNotConfigured):
		return []Check{fail(SectionDatabase, label, err.Error())}
	default:
		return []Check{fail(SectionDatabase, label, fmt.Sprintf("%s connection failed: %v", label, err))}
	}
}

func PingDatabase(ctx context.Context, kind string, getenv func(string) string) error {
	switch kind {
	case DatabasePostgres:
		url := getenv("DATABASE_URL")
		if url == "" {
			return fmt.Errorf("DATABASE_URL %w", ErrNotConfigured)
		}
		return pingPostgres(ctx, url)
	case DatabaseMySQL:
		host, user := getenv("MYSQL_HOST"), getenv("MYSQL_USER")
		if host == "" || user == "" {
			return fmt.Errorf("MySQL connection %w", ErrNotConfigured)
		}
		return pingMySQL(ctx, host, user, getenv("MYSQL_PASSWORD"), getenv("MYSQL_DATABASE"))
	case DatabaseMongo:
		uri := getenv("MONGODB_URI")
		if uri == "" {
			return fmt.Errorf("MONGODB_URI %w", ErrNotConfigured)
		}
		return pingMongo(ctx, uri)
	case DatabaseRedis:
		url := getenv("REDIS_URL")
		if url == "" {
			return fmt.Errorf("REDIS_URL %w", ErrNotConfigured)
		}
		return pingRedis(ctx, url)
	default:
		return fmt.Errorf("unsupported database: %s", kind)
	}
}

func pingPostgres(ctx context.Context, dsn string) error {
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	db := sql.OpenDB(connector)
	defer db.Close()
	return pingSQL(ctx, db)
}

func pingMySQL(ctx context.Context, host, user, password, database string) error {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = host
	if _, _, err := net.SplitHostPort(host); err != nil {
		cfg.Addr = net.JoinHostPort(host, "3306")
	}
	cfg.DBName = database
	if deadline, ok := ctx.Deadline(); ok {
		cfg.Timeout = time.Until(deadline)
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return fmt.Errorf("mysql config: %w", err)
	}
	db := sql.OpenDB(connector)
	defer db.Close()
	return pingSQL(ctx, db)
}

func pingSQL(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("select 1: %w", err)
	}
	return nil
}

func pingMongo(ctx context.Context, uri string) error {
	opts := options.Client().ApplyURI(uri)
	if deadline, ok := ctx.Deadline(); ok {
		opts.SetServerSelectionTimeout(time.Until(deadline))
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	return client.Ping(ctx, readpref.Primary())
}

func pingRedis(ctx context.Context, url string) error {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()
	return client.Ping(ctx).Err()
}
