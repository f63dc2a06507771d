package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/scorekeeper/internal/config"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

const (
	dbMaxOpenConns    = 10
	dbMaxIdleConns    = 5
	dbConnMaxIdleTime = 5 * time.Minute
	dbPingTimeout     = 5 * time.Second
)

func openPostgres(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := postgresDSN(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromDSN(dsn)),
		otelsql.WithQueryFormatter(newTraceQueryFormatter(cfg.DBTraceQueryMaxLen)),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxIdleTime(dbConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	otelsql.ReportDBStatsMetrics(db.DB, otelsql.WithAttributes(attribute.String("db.system", "postgresql")))
	return db, nil
}

const preparedBinaryParam = "disable_prepared_binary_result"

// postgresDSN adds disable_prepared_binary_result=yes to URL and keyword
// DSNs unless the caller already set it.
func postgresDSN(raw string, disablePreparedBinary bool) string {
	raw = strings.TrimSpace(raw)
	if !disablePreparedBinary || raw == "" {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err == nil && parsed.Scheme != "" {
		query := parsed.Query()
		if query.Get(preparedBinaryParam) == "" {
			query.Set(preparedBinaryParam, "yes")
			parsed.RawQuery = query.Encode()
		}
		return parsed.String()
	}

	if _, ok := keywordValue(raw, preparedBinaryParam); ok {
		return raw
	}
	return raw + " " + preparedBinaryParam + "=yes"
}

// dbNameFromDSN reports the database name for span attributes.
func dbNameFromDSN(raw string) string {
	raw = strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" {
		return strings.TrimPrefix(parsed.Path, "/")
	}
	name, _ := keywordValue(raw, "dbname")
	return name
}

func keywordValue(dsn, key string) (string, bool) {
	for _, token := range strings.Fields(dsn) {
		value, found := strings.CutPrefix(token, key+"=")
		if found {
			return strings.Trim(value, `"'`), true
		}
	}
	return "", false
}
