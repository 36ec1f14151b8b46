package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	supabase "github.com/supabase-community/supabase-go"

	"github.com/hx-helix/memplane/internal/herrors"
)

// RESTClient is an out-of-process Gateway implementation for callers
// without a Postgres driver, backed by the Supabase REST API. Grounded
// on the teacher's SupabasePersistence client.
type RESTClient struct {
	client *supabase.Client
}

// NewRESTClient builds a Gateway backed by the Supabase REST API.
func NewRESTClient(supabaseURL, serviceRoleKey string) (*RESTClient, error) {
	client, err := supabase.NewClient(supabaseURL, serviceRoleKey, nil)
	if err != nil {
		return nil, herrors.New(herrors.Fatal, "create supabase client", err)
	}
	return &RESTClient{client: client}, nil
}

func (c *RESTClient) RecentMemories(ctx context.Context, userID uuid.UUID, limit int) ([]Memory, error) {
	var rows []struct {
		ID               uuid.UUID  `json:"id"`
		UserID           uuid.UUID  `json:"user_id"`
		Type             MemoryKind `json:"type"`
		Content          string     `json:"content"`
		Embedding        []float32  `json:"embedding"`
		EmotionalValence *float32   `json:"emotional_valence"`
		CreatedAt        time.Time  `json:"created_at"`
		LastAccessed     *time.Time `json:"last_accessed"`
	}

	data, _, err := c.client.From("memories").
		Select("*", "", false).
		Eq("user_id", userID.String()).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		Execute()
	if err != nil {
		return nil, herrors.New(herrors.Transient, "fetch recent memories", err)
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, herrors.New(herrors.Transient, "decode memories", err)
	}

	out := make([]Memory, len(rows))
	for i, r := range rows {
		out[i] = Memory{
			ID: r.ID, UserID: r.UserID, Kind: r.Type, Content: r.Content,
			Embedding: r.Embedding, EmotionalValence: r.EmotionalValence,
			CreatedAt: r.CreatedAt, LastAccessed: r.LastAccessed,
		}
	}
	return out, nil
}

func (c *RESTClient) InsertPattern(ctx context.Context, p SynthesisPattern) error {
	payload, err := json.Marshal(map[string]any{
		"id":                p.ID,
		"user_id":           p.UserID,
		"pattern_type":      p.PatternKind,
		"memory_ids":        p.MemoryIDs,
		"synthesis_content": p.Synthesis,
		"confidence_score":  p.Confidence,
		"created_at":        p.CreatedAt,
	})
	if err != nil {
		return herrors.New(herrors.Malformed, "marshal pattern", err)
	}
	_, _, err = c.client.From("memory_synthesis").Insert(payload, false, "", "", "").Execute()
	if err != nil {
		return herrors.New(herrors.Transient, "insert pattern", err)
	}
	return nil
}

func (c *RESTClient) ListLayers(ctx context.Context) ([]PsychologyLayer, error) {
	var rows []struct {
		ID          uuid.UUID       `json:"id"`
		UserID      uuid.UUID       `json:"user_id"`
		LayerNumber LayerNumber     `json:"layer_number"`
		LayerName   string          `json:"layer_name"`
		Data        json.RawMessage `json:"data"`
		DecayRate   float32         `json:"decay_rate"`
		LastUpdated time.Time       `json:"last_updated"`
	}

	data, _, err := c.client.From("psychology_layers").
		Select("*", "", false).
		Order("layer_number", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, herrors.New(herrors.Transient, "list layers", err)
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, herrors.New(herrors.Transient, "decode layers", err)
	}

	out := make([]PsychologyLayer, len(rows))
	for i, r := range rows {
		out[i] = PsychologyLayer{
			ID: r.ID, UserID: r.UserID, LayerNumber: r.LayerNumber, LayerName: r.LayerName,
			Data: r.Data, Retention: r.DecayRate, LastUpdated: r.LastUpdated,
		}
	}
	return out, nil
}

func (c *RESTClient) UpdateLayer(ctx context.Context, id uuid.UUID, retention float32, ts time.Time) error {
	if retention < 0 || retention > 1 {
		return herrors.Malformedf("retention %f out of [0,1]", retention)
	}
	payload, err := json.Marshal(map[string]any{"decay_rate": retention, "last_updated": ts})
	if err != nil {
		return herrors.New(herrors.Malformed, "marshal layer update", err)
	}
	_, _, err = c.client.From("psychology_layers").
		Update(payload, "", "").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return herrors.New(herrors.Transient, "update layer", err)
	}
	return nil
}

func (c *RESTClient) FetchSkillBytecode(ctx context.Context, id uuid.UUID) (SkillBytecode, error) {
	var rows []struct {
		ID       uuid.UUID `json:"id"`
		Bytecode []byte    `json:"bytecode"`
	}
	data, _, err := c.client.From("skills").Select("*", "", false).Eq("id", id.String()).Limit(1, "").Execute()
	if err != nil {
		return SkillBytecode{}, herrors.New(herrors.Transient, "fetch skill bytecode", err)
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return SkillBytecode{}, herrors.New(herrors.Transient, "decode skill bytecode", err)
	}
	if len(rows) == 0 {
		return SkillBytecode{}, herrors.Malformedf("no skill with id %s", id)
	}
	return SkillBytecode{ID: rows[0].ID, Bytecode: rows[0].Bytecode}, nil
}

func (c *RESTClient) InsertVoiceRecord(ctx context.Context, rec VoiceRecord) error {
	payload, err := json.Marshal(map[string]any{
		"id": rec.ID, "user_id": rec.UserID, "transcript": rec.Transcript,
		"audio_url": rec.AudioURL, "created_at": rec.CreatedAt,
	})
	if err != nil {
		return herrors.New(herrors.Malformed, "marshal voice record", err)
	}
	_, _, err = c.client.From("voice_recordings").Insert(payload, false, "", "", "").Execute()
	if err != nil {
		return herrors.New(herrors.Transient, "insert voice record", err)
	}
	return nil
}

// Close is a no-op: the Supabase REST client holds no pooled resources.
func (c *RESTClient) Close() {}

var _ Gateway = (*RESTClient)(nil)
