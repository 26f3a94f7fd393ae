package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/chouaib-skitou/Festivio/internal/common"
	"github.com/chouaib-skitou/Festivio/internal/dbx"
	"github.com/chouaib-skitou/Festivio/internal/server/models"
)

const eventColumns = `id, name, description, event_date, organizer_id, image_key, created_at, updated_at`

// PostgresRepository implements event storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	e := &models.Event{}
	if err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Date, &e.OrganizerID, &e.ImageKey, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *PostgresRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	query :=
		`INSERT INTO events (name, description, event_date, organizer_id, image_key)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, event.Name, event.Description, event.Date, event.OrganizerID, event.ImageKey).
		Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	event.Participants = []string{}
	event.Tasks = []string{}
	return event, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidText(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := r.loadRefs(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]*models.Event, error) {
	var (
		conds []string
		args  []any
	)
	if f.OrganizerID != "" {
		args = append(args, f.OrganizerID)
		conds = append(conds, fmt.Sprintf("organizer_id = $%d", len(args)))
	}
	if f.ParticipantID != "" {
		args = append(args, f.ParticipantID)
		conds = append(conds, fmt.Sprintf("id IN (SELECT event_id FROM event_participants WHERE user_id = $%d)", len(args)))
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY event_date`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	result := []*models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("db error: %w", err)
	}
	rows.Close()

	// References are loaded after the cursor is closed; a *sql.Tx cannot run
	// a second query while rows are open.
	for _, e := range result {
		if err := r.loadRefs(ctx, e); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *PostgresRepository) loadRefs(ctx context.Context, e *models.Event) error {
	var err error
	e.Participants, err = dbx.QueryStrings(ctx, r.db,
		`SELECT user_id FROM event_participants WHERE event_id = $1 ORDER BY joined_at`, e.ID)
	if err != nil {
		return err
	}
	e.Tasks, err = dbx.QueryStrings(ctx, r.db,
		`SELECT id FROM tasks WHERE event_id = $1 ORDER BY created_at`, e.ID)
	return err
}

func (r *PostgresRepository) Update(ctx context.Context, event *models.Event) error {
	query :=
		`UPDATE events
		 SET name = $2, description = $3, event_date = $4, image_key = $5, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, event.ID, event.Name, event.Description, event.Date, event.ImageKey).
		Scan(&event.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	return dbx.ExpectOneRow(res, err, common.ErrorNotFound)
}

func (r *PostgresRepository) AddParticipant(ctx context.Context, eventID, userID string) error {
	query :=
		`INSERT INTO event_participants (event_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING
		 `
	res, err := r.db.ExecContext(ctx, query, eventID, userID)
	return dbx.ExpectOneRow(res, err, common.ErrAlreadyParticipating)
}

func (r *PostgresRepository) RemoveParticipant(ctx context.Context, eventID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM event_participants WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	return dbx.ExpectOneRow(res, err, common.ErrNotParticipating)
}

func (r *PostgresRepository) SetParticipants(ctx context.Context, eventID string, userIDs []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM event_participants WHERE event_id = $1`, eventID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	query :=
		`INSERT INTO event_participants (event_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING
		 `
	for _, userID := range userIDs {
		if _, err := r.db.ExecContext(ctx, query, eventID, userID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}
