package store

import (
	"context"
	"fmt"

	"ms-booking/internal/models"

	"github.com/uptrace/bun"
)

type tableDef struct {
	model       any
	foreignKeys []string
}

var tables = []tableDef{
	{model: (*models.User)(nil)},
	{
		model:       (*models.Event)(nil),
		foreignKeys: []string{`("owner_id") REFERENCES "users" ("id") ON DELETE SET NULL`},
	},
	{model: (*models.Resource)(nil)},
	{
		model: (*models.Allocation)(nil),
		foreignKeys: []string{
			`("event_id") REFERENCES "events" ("id") ON DELETE CASCADE`,
			`("resource_id") REFERENCES "resources" ("id") ON DELETE CASCADE`,
		},
	},
	{
		model: (*models.EventAttendee)(nil),
		foreignKeys: []string{
			`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
			`("event_id") REFERENCES "events" ("id") ON DELETE CASCADE`,
		},
	},
}

type indexDef struct {
	model   any
	name    string
	columns []string
}

var indexes = []indexDef{
	{(*models.Allocation)(nil), "idx_allocations_resource_id", []string{"resource_id"}},
	{(*models.Allocation)(nil), "idx_allocations_event_id", []string{"event_id"}},
	{(*models.Event)(nil), "idx_events_start_time", []string{"start_time"}},
	{(*models.Event)(nil), "idx_events_owner_id", []string{"owner_id"}},
	{(*models.EventAttendee)(nil), "idx_event_attendees_event_id", []string{"event_id"}},
}

// CreateSchema creates every table and index from the bun models. It is used
// for SQLite; PostgreSQL deployments run the SQL migrations instead.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	for _, t := range tables {
		q := db.NewCreateTable().Model(t.model).IfNotExists()
		for _, fk := range t.foreignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", t.model, err)
		}
	}

	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}
