// Package repository содержит репозитории для работы с базой данных.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"evdash/internal/model"
)

// insertBatchSize количество строк в одном INSERT при массовой вставке
const insertBatchSize = 500

// RecordRow строка таблицы записей; поля записи хранятся в JSONB
type RecordRow struct {
	bun.BaseModel `bun:"table:car_records,alias:cr"`

	ID        string         `bun:"id,pk,type:uuid"`
	Seq       int64          `bun:"seq,autoincrement"`
	Data      map[string]any `bun:"data,type:jsonb,notnull"`
	CreatedAt time.Time      `bun:"created_at,notnull,default:current_timestamp"`
}

func (row RecordRow) toRecord() model.Record {
	fields := row.Data
	if fields == nil {
		fields = map[string]any{}
	}
	return model.Record{ID: row.ID, Fields: fields}
}

// RecordRepository реализует хранилище записей в PostgreSQL
type RecordRepository struct {
	db     *bun.DB
	logger *zap.Logger
}

var _ model.RecordRepository = (*RecordRepository)(nil)

// NewRecordRepository создает новый репозиторий записей
func NewRecordRepository(db *bun.DB, logger *zap.Logger) *RecordRepository {
	return &RecordRepository{
		db:     db,
		logger: logger,
	}
}

// CreateTable создает таблицу записей, если ее нет
func (r *RecordRepository) CreateTable(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*RecordRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create records table: %w", err)
	}
	return nil
}

// Count возвращает количество записей
func (r *RecordRepository) Count(ctx context.Context) (int, error) {
	count, err := r.db.NewSelect().
		Model((*RecordRow)(nil)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// InsertMany вставляет записи в одной транзакции
func (r *RecordRepository) InsertMany(ctx context.Context, records []model.Record) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]RecordRow, len(records))
	for i, rec := range records {
		rows[i] = RecordRow{ID: uuid.NewString(), Data: rec.Fields}
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for start := 0; start < len(rows); start += insertBatchSize {
			end := min(start+insertBatchSize, len(rows))
			batch := rows[start:end]
			if _, err := tx.NewInsert().Model(&batch).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to insert records: %w", err)
	}

	for i := range records {
		records[i].ID = rows[i].ID
	}

	r.logger.Debug("Inserted records", zap.Int("count", len(rows)))
	return nil
}

// List возвращает все записи в порядке вставки
func (r *RecordRepository) List(ctx context.Context) ([]model.Record, error) {
	return r.Find(ctx, model.Predicate{})
}

// Find возвращает записи, удовлетворяющие предикату
func (r *RecordRepository) Find(ctx context.Context, pred model.Predicate) ([]model.Record, error) {
	var rows []RecordRow

	if err := r.selectQuery(&rows, pred).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}

	records := make([]model.Record, len(rows))
	for i, row := range rows {
		records[i] = row.toRecord()
	}
	return records, nil
}

// GetByID возвращает запись по идентификатору; некорректный идентификатор равносилен отсутствию записи
func (r *RecordRepository) GetByID(ctx context.Context, id string) (*model.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	row := new(RecordRow)
	err := r.db.NewSelect().
		Model(row).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query record by ID: %w", err)
	}

	rec := row.toRecord()
	return &rec, nil
}

// Delete удаляет запись по идентификатору
func (r *RecordRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	res, err := r.db.NewDelete().
		Model((*RecordRow)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// Ping проверяет подключение к базе данных
func (r *RecordRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// selectQuery строит выборку с условиями предиката
func (r *RecordRepository) selectQuery(rows *[]RecordRow, pred model.Predicate) *bun.SelectQuery {
	q := r.db.NewSelect().
		Model(rows).
		Order("seq ASC")

	if pred.IsEmpty() {
		return q
	}

	return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		for _, c := range pred.Conditions {
			expr, args := conditionSQL(c)
			if pred.Mode == model.MatchAny {
				q = q.WhereOr(expr, args...)
			} else {
				q = q.Where(expr, args...)
			}
		}
		return q
	})
}

// conditionSQL переводит условие в выражение над JSONB колонкой data.
// Текстовые операторы применяются только к JSON строкам; числовое
// сравнение не использует приведения типов, которые могут завершиться ошибкой.
func conditionSQL(c model.Condition) (string, []any) {
	if c.Numeric {
		return "data -> ? = to_jsonb(?::numeric)", []any{c.Field, c.Number}
	}

	const isString = "jsonb_typeof(data -> ?) = 'string'"

	switch c.Operator {
	case model.OpEquals:
		return isString + " AND data ->> ? = ?", []any{c.Field, c.Field, c.Text}
	case model.OpIsEmpty:
		return "data ->> ? = ''", []any{c.Field}
	case model.OpContains:
		return isString + " AND data ->> ? ILIKE ?", []any{c.Field, c.Field, "%" + escapeLike(c.Text) + "%"}
	case model.OpStartsWith:
		return isString + " AND data ->> ? ILIKE ?", []any{c.Field, c.Field, escapeLike(c.Text) + "%"}
	case model.OpEndsWith:
		return isString + " AND data ->> ? ILIKE ?", []any{c.Field, c.Field, "%" + escapeLike(c.Text)}
	default:
		return "FALSE", nil
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike экранирует спецсимволы шаблона LIKE, чтобы значение сравнивалось как литерал
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
