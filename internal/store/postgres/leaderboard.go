package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/events"
	"example.com/octofit/internal/observability"
	"example.com/octofit/internal/outbox"
)

type leaderboardTable struct {
	table[domain.LeaderboardEntry]
	outbox bool
}

func (l *leaderboardTable) Insert(ctx context.Context, entry domain.LeaderboardEntry) (domain.LeaderboardEntry, error) {
	entry.ID = uuid.NewString()
	const stmt = `INSERT INTO leaderboard (id, user_id, user_name, team, total_calories, total_activities, rank)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := l.pool.Exec(ctx, stmt, entry.ID, entry.UserID, entry.UserName, nullIfEmpty(entry.Team), entry.TotalCalories, entry.TotalActivities, entry.Rank)
	if err != nil {
		return domain.LeaderboardEntry{}, translate(err)
	}
	observability.RecordInserted(l.name)
	return entry, nil
}

// rebuildLockKey serializes Replace across every process sharing the database.
const rebuildLockKey int64 = 0x6f637466_6c62

// Replace deletes the previous snapshot and copies in entries within one
// transaction. Concurrent readers keep seeing the old rows until commit.
// Writers queue on a transaction-scoped advisory lock, so two overlapping runs
// never interleave their DELETE and COPY.
func (l *leaderboardTable) Replace(ctx context.Context, runID string, entries []domain.LeaderboardEntry) (err error) {
	if runID == "" {
		runID = uuid.NewString()
	}
	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, rebuildLockKey); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM leaderboard`); err != nil {
		return err
	}

	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{uuid.NewString(), e.UserID, e.UserName, nullIfEmpty(e.Team), e.TotalCalories, e.TotalActivities, e.Rank})
	}
	if _, err = tx.CopyFrom(ctx,
		pgx.Identifier{"leaderboard"},
		[]string{"id", "user_id", "user_name", "team", "total_calories", "total_activities", "rank"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return translate(err)
	}

	if l.outbox {
		if err = outbox.Enqueue(ctx, tx, outbox.Event{
			AggregateType: events.AggregateLeaderboard,
			AggregateID:   runID,
			EventType:     events.TypeLeaderboardRebuilt,
			Payload:       leaderboardRebuilt(runID, entries),
		}); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func leaderboardRebuilt(runID string, entries []domain.LeaderboardEntry) events.LeaderboardRebuilt {
	ev := events.LeaderboardRebuilt{
		RunID:          runID,
		EntriesWritten: len(entries),
		RebuiltAt:      utcNow(),
	}
	if len(entries) > 0 {
		ev.Top = &events.TopEntry{
			UserID:        entries[0].UserID,
			UserName:      entries[0].UserName,
			TotalCalories: entries[0].TotalCalories,
		}
	}
	return ev
}
