package migrate

import (
	"context"

	"github.com/scienceol/sampletrack/pkg/middleware/db"
	"github.com/scienceol/sampletrack/pkg/middleware/logger"
	"github.com/scienceol/sampletrack/pkg/repo/model"
)

func Models() []any {
	return []any{
		&model.Order{},
		&model.Sample{},
		&model.QCResult{},
		&model.Shipment{},
	}
}

func Table(ctx context.Context) error {
	return TableWithStore(ctx, db.DB())
}

func TableWithStore(ctx context.Context, store *db.Datastore) error {
	d := store.DBWithContext(ctx)
	for _, m := range Models() {
		if err := d.AutoMigrate(m); err != nil {
			logger.Errorf(ctx, "migrate table err: %+v", err)
			return err
		}
	}
	return nil
}
