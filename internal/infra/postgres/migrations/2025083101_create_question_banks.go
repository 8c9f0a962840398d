package migrations

import (
	"context"
	_ "embed"
	"encoding/json"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"dsa-interview-service/internal/question"
)

//go:embed 0001_create_question_banks.sql
var createQuestionBanksSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(createQuestionBanksSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`DROP TABLE IF EXISTS question_banks`)
			return err
		},
	)

	// Seed the built-in DSA bank so a fresh database can serve interviews
	// immediately.
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			bank := question.Default()
			data, err := json.Marshal(bank)
			if err != nil {
				return err
			}
			_, err = db.ExecContext(ctx,
				`INSERT INTO question_banks (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO NOTHING`,
				bank.ID, string(data))
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DELETE FROM question_banks WHERE id = ?`, question.Default().ID)
			return err
		},
	)
}
