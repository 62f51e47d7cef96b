package conn

import (
	"context"
	"database/sql"

	// Drivers registered for the engines recognized in target
	// configuration.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/steve-ongera/dbswitch/common"
)

// SQLOpener opens database/sql sessions for a target. It is the
// production Opener; tests substitute a fake.
type SQLOpener struct{}

// Open opens a session against the target and verifies it with a
// ping before handing it over. A handle is returned only for a
// reachable, authenticated server; on any failure the partially
// opened resource is closed and the error is returned.
func (SQLOpener) Open(ctx context.Context, target *Target) (Handle, error) {
	dsn, err := target.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName(target.Engine), dsn)
	if err != nil {
		return nil, common.WrapError(err, "failed to open driver")
	}

	// One session per target, not a pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// sql.Open validates arguments without dialing; the ping is the
	// actual connection attempt.
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// driverName maps a target engine to its registered driver.
func driverName(engine string) string {
	switch engine {
	case common.EnginePostgres:
		return "postgres"
	default:
		return "mysql"
	}
}
