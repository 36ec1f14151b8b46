package gateway

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hx-helix/memplane/internal/herrors"
)

// MaxPoolConns is the recommended bound on concurrent connections (spec
// §4.1): the gateway is a shared, bounded, reentrant-safe resource.
const MaxPoolConns = 5

// requiredTables is checked at startup; a missing table means the
// backing store schema doesn't match what this gateway expects, which is
// Fatal rather than something workers should retry around.
var requiredTables = []string{"memories", "memory_synthesis", "psychology_layers", "skills", "voice_recordings"}

// Gateway is the typed row interface used in-process by C2, C3, and C4.
type Gateway interface {
	RecentMemories(ctx context.Context, userID uuid.UUID, limit int) ([]Memory, error)
	InsertPattern(ctx context.Context, p SynthesisPattern) error
	ListLayers(ctx context.Context) ([]PsychologyLayer, error)
	UpdateLayer(ctx context.Context, id uuid.UUID, retention float32, ts time.Time) error
	FetchSkillBytecode(ctx context.Context, id uuid.UUID) (SkillBytecode, error)
	InsertVoiceRecord(ctx context.Context, rec VoiceRecord) error
	Close()
}

// PoolGateway is the pgx-backed implementation of Gateway.
type PoolGateway struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// Open builds a bounded connection pool against databaseURL and verifies
// the expected tables exist. Pool/connection failures are Transient;
// a missing table is Fatal.
func Open(ctx context.Context, databaseURL string, log zerolog.Logger) (*PoolGateway, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, herrors.Fatalf("parse database url: %w", err)
	}
	cfg.MaxConns = MaxPoolConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, herrors.New(herrors.Transient, "open pool", err)
	}

	g := &PoolGateway{pool: pool, log: log}
	if err := g.checkSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return g, nil
}

func (g *PoolGateway) checkSchema(ctx context.Context) error {
	conn, err := g.acquire(ctx)
	if err != nil {
		return err
	}
	conn.Release()

	for _, table := range requiredTables {
		var exists bool
		err = g.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`, table).Scan(&exists)
		if err != nil {
			return herrors.New(herrors.Transient, "check schema", err)
		}
		if !exists {
			return herrors.Fatalf("required table %q missing from backing store", table)
		}
	}
	return nil
}

// acquire checks out a connection with a small bounded retry. Only the
// startup schema check uses it; the row operations below query the pool
// directly and are not retried. This is the only retry in the gateway: whole
// operations (a full synthesis pass, a full decay tick) are never
// retried automatically, per spec §7.
func (g *PoolGateway) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	var conn *pgxpool.Conn
	err := retry.Do(
		func() error {
			c, err := g.pool.Acquire(ctx)
			if err != nil {
				return err
			}
			conn = c
			return nil
		},
		retry.Attempts(3),
		retry.Delay(50*time.Millisecond),
		retry.Context(ctx),
	)
	if err != nil {
		return nil, herrors.New(herrors.Transient, "acquire connection", err)
	}
	return conn, nil
}

// RecentMemories fetches the `limit` most recent memories for userID in
// descending creation-time order.
func (g *PoolGateway) RecentMemories(ctx context.Context, userID uuid.UUID, limit int) ([]Memory, error) {
	rows, err := g.pool.Query(ctx, `
		SELECT id, user_id, type, content, embedding, emotional_valence, created_at, last_accessed
		FROM memories
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, herrors.New(herrors.Transient, "fetch recent memories", err)
	}
	defer rows.Close()

	var out []Memory
	for rows.Next() {
		var m Memory
		if err := rows.Scan(&m.ID, &m.UserID, &m.Kind, &m.Content, &m.Embedding, &m.EmotionalValence, &m.CreatedAt, &m.LastAccessed); err != nil {
			return nil, herrors.New(herrors.Transient, "scan memory row", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, herrors.New(herrors.Transient, "iterate memory rows", err)
	}
	return out, nil
}

// InsertPattern writes a synthesis pattern. The gateway enforces the
// spec's "memory-id list is a subset of the owner's memories" invariant
// with an explicit existence check, standing in for the foreign key the
// spec describes the backing store as enforcing.
func (g *PoolGateway) InsertPattern(ctx context.Context, p SynthesisPattern) error {
	var missing int
	err := g.pool.QueryRow(ctx, `
		SELECT count(*) FROM unnest($1::uuid[]) AS wanted(id)
		WHERE NOT EXISTS (SELECT 1 FROM memories m WHERE m.id = wanted.id AND m.user_id = $2)`,
		p.MemoryIDs, p.UserID).Scan(&missing)
	if err != nil {
		return herrors.New(herrors.Transient, "validate pattern memory ids", err)
	}
	if missing > 0 {
		return herrors.Malformedf("pattern references %d memory ids outside user %s's memories", missing, p.UserID)
	}

	_, err = g.pool.Exec(ctx, `
		INSERT INTO memory_synthesis (id, user_id, pattern_type, memory_ids, synthesis_content, confidence_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.UserID, p.PatternKind, p.MemoryIDs, p.Synthesis, p.Confidence, p.CreatedAt)
	if err != nil {
		return herrors.New(herrors.Transient, "insert pattern", err)
	}
	return nil
}

// ListLayers returns every psychology_layers row, ordered by layer
// number, for the decay engine to process in order (spec §5(b)).
func (g *PoolGateway) ListLayers(ctx context.Context) ([]PsychologyLayer, error) {
	rows, err := g.pool.Query(ctx, `
		SELECT id, user_id, layer_number, layer_name, data, decay_rate, last_updated
		FROM psychology_layers
		ORDER BY layer_number`)
	if err != nil {
		return nil, herrors.New(herrors.Transient, "list layers", err)
	}
	defer rows.Close()

	var out []PsychologyLayer
	for rows.Next() {
		var l PsychologyLayer
		if err := rows.Scan(&l.ID, &l.UserID, &l.LayerNumber, &l.LayerName, &l.Data, &l.Retention, &l.LastUpdated); err != nil {
			return nil, herrors.New(herrors.Transient, "scan layer row", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, herrors.New(herrors.Transient, "iterate layer rows", err)
	}
	return out, nil
}

// UpdateLayer writes a clamped retention value and last_updated
// timestamp for one layer. The caller (decay engine) is responsible for
// clamping and for the monotonic-last-updated guarantee.
func (g *PoolGateway) UpdateLayer(ctx context.Context, id uuid.UUID, retention float32, ts time.Time) error {
	if retention < 0 || retention > 1 {
		return herrors.Malformedf("retention %f out of [0,1]", retention)
	}
	_, err := g.pool.Exec(ctx, `UPDATE psychology_layers SET decay_rate = $1, last_updated = $2 WHERE id = $3`, retention, ts, id)
	if err != nil {
		return herrors.New(herrors.Transient, "update layer", err)
	}
	return nil
}

// FetchSkillBytecode reads the compiled bytecode for a skill; execution
// happens in the external WASM sandbox, never in this process.
func (g *PoolGateway) FetchSkillBytecode(ctx context.Context, id uuid.UUID) (SkillBytecode, error) {
	var sb SkillBytecode
	sb.ID = id
	err := g.pool.QueryRow(ctx, `SELECT bytecode FROM skills WHERE id = $1`, id).Scan(&sb.Bytecode)
	if err != nil {
		if err == pgx.ErrNoRows {
			return sb, herrors.Malformedf("no skill with id %s", id)
		}
		return sb, herrors.New(herrors.Transient, "fetch skill bytecode", err)
	}
	return sb, nil
}

// InsertVoiceRecord stores a transcription produced by the external
// speech-to-text provider.
func (g *PoolGateway) InsertVoiceRecord(ctx context.Context, rec VoiceRecord) error {
	_, err := g.pool.Exec(ctx, `
		INSERT INTO voice_recordings (id, user_id, transcript, audio_url, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.UserID, rec.Transcript, rec.AudioURL, rec.CreatedAt)
	if err != nil {
		return herrors.New(herrors.Transient, "insert voice record", err)
	}
	return nil
}

// Close releases the pool.
func (g *PoolGateway) Close() {
	g.pool.Close()
}

var _ Gateway = (*PoolGateway)(nil)
