// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"database/sql"

	"github.com/dalemusser/folio/internal/app/store/audit"
	"github.com/dalemusser/folio/internal/app/store/sqlutil"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	SQL     *sql.DB
	Dialect sqlutil.Dialect

	// Audit trail; all three are nil when mongo_uri is blank.
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Audit         *audit.Store
}
