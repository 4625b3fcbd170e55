// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/folio/internal/app/store/audit"
	"github.com/dalemusser/folio/internal/app/store/sqldb"
	"github.com/dalemusser/folio/internal/app/system/indexes"
	"github.com/dalemusser/folio/internal/app/system/schema"
	"github.com/dalemusser/folio/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the relational store and, when configured, the MongoDB
// audit database.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	db, dialect, err := sqldb.Open(ctx, sqldb.Options{
		Driver:       appCfg.DBDriver,
		DSN:          appCfg.DBDSN,
		MaxOpenConns: appCfg.DBMaxOpenConns,
	})
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect relational store: %w", err)
	}
	logger.Info("relational store connected", zap.String("dialect", string(dialect)))

	deps := DBDeps{SQL: db, Dialect: dialect}
	if appCfg.MongoURI == "" {
		logger.Info("mongo_uri not set; audit events go to the log only")
		return deps, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()

	client, err := mongo.Connect(pingCtx, options.Client().ApplyURI(appCfg.MongoURI))
	if err != nil {
		_ = db.Close()
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		_ = db.Close()
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info("audit database connected", zap.String("database", appCfg.MongoDatabase))

	deps.MongoClient = client
	deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
	deps.Audit = audit.New(deps.MongoDatabase)
	return deps, nil
}

// EnsureSchema creates tables and indexes in the relational store and the
// audit indexes in MongoDB. Every step is idempotent.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := schema.Apply(ctx, deps.SQL, deps.Dialect); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if err := indexes.EnsureAll(ctx, deps.SQL); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	if deps.Audit != nil {
		if err := deps.Audit.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure audit indexes: %w", err)
		}
	}
	logger.Info("schema ensured")
	return nil
}
