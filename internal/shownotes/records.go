package shownotes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// ErrNotFound is returned by GetByID for unknown ids.
var ErrNotFound = errors.New("show note not found")

const tableName = "show_notes"

// Record is one persisted show note. Cost and model bookkeeping fields are
// empty or nil when the corresponding stage did not run.
type Record struct {
	ID          int64  `json:"id"`
	ShowLink    string `json:"showLink"`
	Channel     string `json:"channel"`
	ChannelURL  string `json:"channelURL"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PublishDate string `json:"publishDate"`
	CoverImage  string `json:"coverImage"`
	FrontMatter string `json:"frontmatter"`
	Prompt      string `json:"prompt"`
	Transcript  string `json:"transcript"`
	LLMOutput   string `json:"llmOutput"`

	LLMService           string   `json:"llmService,omitempty"`
	LLMModel             string   `json:"llmModel,omitempty"`
	LLMCost              *float64 `json:"llmCost,omitempty"`
	TranscriptionService string   `json:"transcriptionService,omitempty"`
	TranscriptionModel   string   `json:"transcriptionModel,omitempty"`
	TranscriptionCost    *float64 `json:"transcriptionCost,omitempty"`
	FinalCost            *float64 `json:"finalCost,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

var columns = []string{
	"id",
	"show_link",
	"channel",
	"channel_url",
	"title",
	"description",
	"publish_date",
	"cover_image",
	"frontmatter",
	"prompt",
	"transcript",
	"llm_output",
	"llm_service",
	"llm_model",
	"llm_cost",
	"transcription_service",
	"transcription_model",
	"transcription_cost",
	"final_cost",
	"created_at",
}

// Insert stores rec and returns its new id. rec.ID is ignored.
func (s *Store) Insert(ctx context.Context, rec Record) (int64, error) {
	if rec.ShowLink == "" {
		return 0, errors.New("insert show note: show link required")
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	query, args, err := sq.Insert(tableName).
		Columns(columns[1:]...).
		Values(
			rec.ShowLink,
			rec.Channel,
			rec.ChannelURL,
			rec.Title,
			rec.Description,
			rec.PublishDate,
			rec.CoverImage,
			rec.FrontMatter,
			rec.Prompt,
			rec.Transcript,
			rec.LLMOutput,
			nullString(rec.LLMService),
			nullString(rec.LLMModel),
			nullFloat(rec.LLMCost),
			nullString(rec.TranscriptionService),
			nullString(rec.TranscriptionModel),
			nullFloat(rec.TranscriptionCost),
			nullFloat(rec.FinalCost),
			created.UTC().Format(time.RFC3339Nano),
		).
		PlaceholderFormat(sq.Question).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var res sql.Result
	if err := s.retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return 0, fmt.Errorf("insert show note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert show note id: %w", err)
	}
	return id, nil
}

// GetByID returns the record with id or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id int64) (Record, error) {
	query, args, err := sq.Select(columns...).
		From(tableName).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Question).
		ToSql()
	if err != nil {
		return Record{}, fmt.Errorf("build select: %w", err)
	}
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get show note %d: %w", id, err)
	}
	return rec, nil
}

// ListAll returns every record, newest publish date first.
func (s *Store) ListAll(ctx context.Context) ([]Record, error) {
	query, args, err := sq.Select(columns...).
		From(tableName).
		OrderBy("publish_date DESC", "id DESC").
		PlaceholderFormat(sq.Question).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list show notes: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan show note: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate show notes: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec                                      Record
		llmService, llmModel, txService, txModel sql.NullString
		llmCost, txCost, finalCost               sql.NullFloat64
		created                                  string
	)
	err := row.Scan(
		&rec.ID,
		&rec.ShowLink,
		&rec.Channel,
		&rec.ChannelURL,
		&rec.Title,
		&rec.Description,
		&rec.PublishDate,
		&rec.CoverImage,
		&rec.FrontMatter,
		&rec.Prompt,
		&rec.Transcript,
		&rec.LLMOutput,
		&llmService,
		&llmModel,
		&llmCost,
		&txService,
		&txModel,
		&txCost,
		&finalCost,
		&created,
	)
	if err != nil {
		return Record{}, err
	}
	rec.LLMService = llmService.String
	rec.LLMModel = llmModel.String
	rec.LLMCost = floatPtr(llmCost)
	rec.TranscriptionService = txService.String
	rec.TranscriptionModel = txModel.String
	rec.TranscriptionCost = floatPtr(txCost)
	rec.FinalCost = floatPtr(finalCost)
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		rec.CreatedAt = t
	}
	return rec, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
