// Package orders archives captured orders in Postgres. The archive is a
// best-effort copy; the session remains the source of truth for the user flow.
package orders

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/themebot/bot/conversation"
	"github.com/m3rciful/themebot/bot/session"
)

// psq is the PostgreSQL statement builder with dollar placeholders.
var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const table = "orders"

var rowColumns = []string{
	"id", "user_id", "username", "display_name", "template_id",
	"tier", "requirements", "status", "created_at", "updated_at",
}

// Archive implements conversation.OrderArchive.
type Archive struct {
	db  *sqlx.DB
	now func() time.Time
}

// New wraps an open connection.
func New(db *sqlx.DB) *Archive {
	return &Archive{db: db, now: time.Now}
}

var _ conversation.OrderArchive = (*Archive)(nil)

// SaveOrder inserts the order; a repeated id is ignored.
func (a *Archive) SaveOrder(ctx context.Context, rec conversation.OrderRecord) error {
	var templateID sql.NullInt64
	if rec.Order.TemplateID != nil {
		templateID = sql.NullInt64{Int64: *rec.Order.TemplateID, Valid: true}
	}
	query, args, err := psq.Insert(table).
		Columns(rowColumns...).
		Values(
			rec.Order.ID,
			rec.UserID,
			rec.Profile.Username,
			rec.Profile.DisplayName(),
			templateID,
			rec.Order.Tier,
			rec.Order.Requirements,
			string(rec.Order.Status),
			rec.Order.CreatedAt,
			a.now(),
		).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("building order insert: %w", err)
	}
	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	return nil
}

// UpdateOrderStatus records the delivery outcome.
func (a *Archive) UpdateOrderStatus(ctx context.Context, id string, status session.OrderStatus) error {
	query, args, err := psq.Update(table).
		Set("status", string(status)).
		Set("updated_at", a.now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building order update: %w", err)
	}
	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}
	return nil
}

// CountByStatus returns the number of archived orders per status.
func (a *Archive) CountByStatus(ctx context.Context) (map[string]int, error) {
	query, args, err := psq.Select("status", "COUNT(*) AS n").
		From(table).
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building order count: %w", err)
	}
	var rows []struct {
		Status string `db:"status"`
		N      int    `db:"n"`
	}
	if err := a.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("counting orders: %w", err)
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}
