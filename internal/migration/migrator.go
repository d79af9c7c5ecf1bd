package migration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	shieldmongo "github.com/gatekeep/shield/internal/gateways/mongo"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const defaultBatchSize = 1000

type TableStats struct {
	Read    int
	Written int
	Skipped int
	Took    time.Duration
}

type MigrationStats struct {
	Tables    map[string]*TableStats
	StartTime time.Time
}

// rowFunc decodes the cursor's current document into column values. A
// non-nil error skips the document without failing the run.
type rowFunc func(cur *mongo.Cursor) ([]any, error)

type table struct {
	name       string
	collection string
	columns    []string
	row        rowFunc
}

// Migrator copies a Mongo-backed deployment into the Postgres schema. Admin
// menu sessions are short lived and are not carried over.
type Migrator struct {
	source    *mongo.Database
	pool      *pgxpool.Pool
	batchSize int
	useCopy   bool
	maxDigits int
	stats     MigrationStats
}

func NewMigrator(source *mongo.Database, pool *pgxpool.Pool) *Migrator {
	return &Migrator{
		source:    source,
		pool:      pool,
		batchSize: defaultBatchSize,
		maxDigits: 20,
		stats: MigrationStats{
			Tables: make(map[string]*TableStats),
		},
	}
}

func (m *Migrator) SetBatchSize(size int) {
	if size > 0 {
		m.batchSize = size
	}
}

// SetUseCopy switches to COPY FROM. Target tables must be empty.
func (m *Migrator) SetUseCopy(v bool) { m.useCopy = v }

func (m *Migrator) SetIdentityMaxDigits(n int) {
	if n > 0 {
		m.maxDigits = n
	}
}

func (m *Migrator) Stats() MigrationStats {
	return m.stats
}

func (m *Migrator) tables() []table {
	return []table{
		{
			name:       "channels",
			collection: shieldmongo.CollChannels,
			columns:    []string{"channel_id", "owner_id", "title", "invite_channel_id", "registered_at"},
			row: func(cur *mongo.Cursor) ([]any, error) {
				var doc shieldmongo.ChannelDoc
				if err := cur.Decode(&doc); err != nil {
					return nil, err
				}
				return channelRow(doc), nil
			},
		},
		{
			name:       "channel_configs",
			collection: shieldmongo.CollChannelConfigs,
			columns:    []string{"channel_id", "owner_id", "captcha_on", "banned_addresses", "banned_identities", "updated_at"},
			row: func(cur *mongo.Cursor) ([]any, error) {
				var doc shieldmongo.ChannelConfigDoc
				if err := cur.Decode(&doc); err != nil {
					return nil, err
				}
				return configRow(doc, m.maxDigits)
			},
		},
		{
			name:       "access_requests",
			collection: shieldmongo.CollAccessRequests,
			columns:    []string{"id", "channel_id", "owner_id", "requester_id", "created_at", "expires_at", "used", "invite_link"},
			row: func(cur *mongo.Cursor) ([]any, error) {
				var doc shieldmongo.AccessRequestDoc
				if err := cur.Decode(&doc); err != nil {
					return nil, err
				}
				return accessRow(doc)
			},
		},
	}
}

func (m *Migrator) MigrateAll(ctx context.Context) error {
	m.stats.StartTime = time.Now()
	for _, t := range m.tables() {
		if err := m.migrateTable(ctx, t); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", t.name, err)
		}
	}
	m.logSummary()
	return nil
}

func (m *Migrator) migrateTable(ctx context.Context, t table) error {
	start := time.Now()
	stats := &TableStats{}
	m.stats.Tables[t.name] = stats

	if m.useCopy {
		var exists bool
		if err := m.pool.QueryRow(ctx, fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s)", t.name)).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("table %s is not empty, copy mode needs an empty target", t.name)
		}
	}

	cur, err := m.source.Collection(t.collection).Find(ctx, bson.D{})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	rows := make([][]any, 0, m.batchSize)
	for cur.Next(ctx) {
		stats.Read++
		row, err := t.row(cur)
		if err != nil {
			stats.Skipped++
			slog.Warn("Skipping document",
				slog.String("type", "db"),
				slog.String("collection", t.collection),
				slog.Any("error", err),
			)
			continue
		}
		rows = append(rows, row)
		if len(rows) >= m.batchSize {
			if err := m.flush(ctx, t, rows, stats); err != nil {
				return err
			}
			rows = rows[:0]
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if err := m.flush(ctx, t, rows, stats); err != nil {
		return err
	}

	stats.Took = time.Since(start)
	slog.Info("Table migrated",
		slog.String("type", "db"),
		slog.String("table", t.name),
		slog.Int("read", stats.Read),
		slog.Int("written", stats.Written),
		slog.Int("skipped", stats.Skipped),
		slog.Duration("took", stats.Took),
	)
	return nil
}

func (m *Migrator) flush(ctx context.Context, t table, rows [][]any, stats *TableStats) error {
	if len(rows) == 0 {
		return nil
	}
	if m.useCopy {
		n, err := m.pool.CopyFrom(ctx, pgx.Identifier{t.name}, t.columns, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("copy from failed: %w", err)
		}
		stats.Written += int(n)
		return nil
	}

	query := insertQuery(t.name, t.columns)
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(query, row...)
	}
	br := m.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range rows {
		tag, err := br.Exec()
		if err != nil {
			return fmt.Errorf("batch insert failed: %w", err)
		}
		if tag.RowsAffected() == 0 {
			stats.Skipped++
			continue
		}
		stats.Written++
	}
	return nil
}

func (m *Migrator) logSummary() {
	var read, written, skipped int
	for _, s := range m.stats.Tables {
		read += s.Read
		written += s.Written
		skipped += s.Skipped
	}
	slog.Info("Migration finished",
		slog.String("type", "db"),
		slog.Int("read", read),
		slog.Int("written", written),
		slog.Int("skipped", skipped),
		slog.Duration("took", time.Since(m.stats.StartTime)),
	)
}

// insertQuery leaves rows that already exist untouched so reruns are safe.
func insertQuery(name string, columns []string) string {
	params := make([]string, len(columns))
	for i := range columns {
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING",
		name, strings.Join(columns, ", "), strings.Join(params, ", "))
}

func channelRow(doc shieldmongo.ChannelDoc) []any {
	ch := doc.ToDomain()
	return []any{
		int64(ch.ID),
		int64(ch.OwnerID),
		ch.Title,
		nullID(int64(ch.InviteChannelID)),
		ch.RegisteredAt,
	}
}

func configRow(doc shieldmongo.ChannelConfigDoc, maxDigits int) ([]any, error) {
	cfg, err := doc.ToDomain(maxDigits)
	if err != nil {
		return nil, err
	}
	return []any{
		int64(cfg.ChannelID),
		int64(cfg.OwnerID),
		cfg.CaptchaOn,
		nonNil(cfg.BannedAddresses),
		nonNil(cfg.BannedIdentities),
		cfg.UpdatedAt,
	}, nil
}

// accessRow drops any in-flight reservation. The holder belongs to the old
// deployment and will never finish it.
func accessRow(doc shieldmongo.AccessRequestDoc) ([]any, error) {
	req, err := doc.ToDomain()
	if err != nil {
		return nil, err
	}
	return []any{
		req.ID,
		int64(req.ChannelID),
		int64(req.OwnerID),
		int64(req.RequesterID),
		req.CreatedAt,
		req.ExpiresAt,
		req.Used,
		nullString(req.InviteLink),
	}, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
