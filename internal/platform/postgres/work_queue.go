package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/imagine/internal/platform/logger"
	"github.com/phrazzld/imagine/internal/queue"
	"github.com/phrazzld/imagine/internal/store"
)

// PostgresWorkQueue implements queue.Queue on two tables: queue_message
// holds visible and leased messages, queue_archive holds archived ones.
// A message is visible when its vt (visibility time) is not in the future.
type PostgresWorkQueue struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresWorkQueue creates a new PostgresWorkQueue.
// If logger is nil, a default logger will be used.
func NewPostgresWorkQueue(db store.DBTX, logger *slog.Logger) *PostgresWorkQueue {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresWorkQueue{
		db:     db,
		logger: logger.With(slog.String("component", "work_queue")),
	}
}

var (
	_ queue.Queue     = (*PostgresWorkQueue)(nil)
	_ queue.Inspector = (*PostgresWorkQueue)(nil)
)

// Enqueue implements queue.Queue.Enqueue.
func (q *PostgresWorkQueue) Enqueue(ctx context.Context, queueName string, payload any) (int64, error) {
	log := logger.FromContextOrDefault(ctx, q.logger)

	data, err := queue.EncodePayload(payload)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO queue_message (queue_name, message)
		VALUES ($1, $2::jsonb)
		RETURNING msg_id
	`

	var msgID int64
	if err := q.db.QueryRowContext(ctx, query, queueName, string(data)).Scan(&msgID); err != nil {
		log.Error("failed to enqueue message",
			slog.String("queue", queueName),
			slog.String("error", err.Error()))
		return 0, fmt.Errorf("%w: enqueue: %v", queue.ErrUnavailable, err)
	}

	log.Debug("message enqueued",
		slog.String("queue", queueName),
		slog.Int64("msg_id", msgID))
	return msgID, nil
}

// Lease implements queue.Queue.Lease. Row locks taken with SKIP LOCKED keep
// concurrent callers from selecting the same message.
func (q *PostgresWorkQueue) Lease(ctx context.Context, queueName string, lease time.Duration) (*queue.Message, error) {
	log := logger.FromContextOrDefault(ctx, q.logger)

	query := `
		WITH next AS (
			SELECT msg_id
			FROM queue_message
			WHERE queue_name = $1 AND vt <= clock_timestamp()
			ORDER BY msg_id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE queue_message m
		SET vt = clock_timestamp() + make_interval(secs => $2::double precision),
		    read_ct = m.read_ct + 1
		FROM next
		WHERE m.msg_id = next.msg_id
		RETURNING m.msg_id, m.message::text, m.enqueued_at, m.vt, m.read_ct
	`

	var (
		msg     queue.Message
		payload string
	)
	err := q.db.QueryRowContext(ctx, query, queueName, lease.Seconds()).Scan(
		&msg.ID,
		&payload,
		&msg.EnqueuedAt,
		&msg.VisibleAt,
		&msg.ReadCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, queue.ErrNoMessage
		}
		log.Error("failed to lease message",
			slog.String("queue", queueName),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: lease: %v", queue.ErrUnavailable, err)
	}

	msg.QueueName = queueName
	msg.Payload = []byte(payload)
	return &msg, nil
}

// Archive implements queue.Queue.Archive. The message row moves to
// queue_archive; an unknown or already archived ID affects no rows.
func (q *PostgresWorkQueue) Archive(ctx context.Context, queueName string, msgID int64) error {
	log := logger.FromContextOrDefault(ctx, q.logger)

	query := `
		WITH archived AS (
			DELETE FROM queue_message
			WHERE queue_name = $1 AND msg_id = $2
			RETURNING msg_id, queue_name, message, read_ct, enqueued_at
		)
		INSERT INTO queue_archive (msg_id, queue_name, message, read_ct, enqueued_at)
		SELECT msg_id, queue_name, message, read_ct, enqueued_at FROM archived
		ON CONFLICT (msg_id) DO NOTHING
	`

	result, err := q.db.ExecContext(ctx, query, queueName, msgID)
	if err != nil {
		log.Error("failed to archive message",
			slog.String("queue", queueName),
			slog.Int64("msg_id", msgID),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: archive: %v", queue.ErrUnavailable, err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		log.Debug("archive of unknown or archived message ignored",
			slog.String("queue", queueName),
			slog.Int64("msg_id", msgID))
	}
	return nil
}

// Stats implements queue.Inspector.Stats.
func (q *PostgresWorkQueue) Stats(ctx context.Context, queueName string) (queue.Stats, error) {
	stats := queue.Stats{QueueName: queueName}

	liveQuery := `
		SELECT
			COUNT(*) FILTER (WHERE vt <= clock_timestamp()),
			COUNT(*) FILTER (WHERE vt > clock_timestamp()),
			MIN(enqueued_at) FILTER (WHERE vt <= clock_timestamp())
		FROM queue_message
		WHERE queue_name = $1
	`

	var oldest sql.NullTime
	if err := q.db.QueryRowContext(ctx, liveQuery, queueName).Scan(&stats.Visible, &stats.Leased, &oldest); err != nil {
		return queue.Stats{}, fmt.Errorf("%w: stats: %v", queue.ErrUnavailable, err)
	}
	if oldest.Valid {
		stats.OldestVisible = &oldest.Time
	}

	archiveQuery := `SELECT COUNT(*) FROM queue_archive WHERE queue_name = $1`
	if err := q.db.QueryRowContext(ctx, archiveQuery, queueName).Scan(&stats.Archived); err != nil {
		return queue.Stats{}, fmt.Errorf("%w: stats: %v", queue.ErrUnavailable, err)
	}

	return stats, nil
}
