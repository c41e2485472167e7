package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/sobadon/cyberd/domain/model/news"
	"github.com/sobadon/cyberd/domain/repository"
	"github.com/sobadon/cyberd/internal/errutil"
)

type itemSqlite struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Content     string         `db:"content"`
	URL         string         `db:"url"`
	Source      string         `db:"source"`
	PublishedAt time.Time      `db:"published_at"`
	Category    string         `db:"category"`
	Severity    string         `db:"severity"`
	Tags        sql.NullString `db:"tags"`
	Summary     sql.NullString `db:"summary"`
}

func itemSqliteToModelItem(it itemSqlite) news.Item {
	var tags []string
	if it.Tags.String != "" {
		tags = strings.Split(it.Tags.String, ",")
	}
	return news.Item{
		ID:          it.ID,
		Title:       it.Title,
		Content:     it.Content,
		URL:         it.URL,
		Source:      it.Source,
		PublishedAt: it.PublishedAt,
		Category:    news.Category(it.Category),
		Severity:    news.Severity(it.Severity),
		Tags:        tags,
		Summary:     it.Summary.String,
	}
}

func modelItemToItemSqlite(item news.Item) itemSqlite {
	var tags sql.NullString
	if len(item.Tags) != 0 {
		tags.Valid = true
		tags.String = strings.Join(item.Tags, ",")
	}

	var summary sql.NullString
	if item.Summary != "" {
		summary.Valid = true
		summary.String = item.Summary
	}

	return itemSqlite{
		ID:          item.ID,
		Title:       item.Title,
		Content:     item.Content,
		URL:         item.URL,
		Source:      item.Source,
		PublishedAt: item.PublishedAt,
		Category:    item.Category.String(),
		Severity:    item.Severity.String(),
		Tags:        tags,
		Summary:     summary,
	}
}

func NewDB(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(errutil.ErrDatabaseOpen, err.Error())
	}
	return db, nil
}

// Setup creates the tables.
func Setup(db *sqlx.DB) error {
	_, err := db.Exec(`create table if not exists items (
		id text primary key,
		title text not null,
		content text not null,
		url text not null,
		source text not null,
		published_at timestamp not null,
		category text not null,
		severity text not null,
		tags text,
		summary text,
		created_at timestamp not null default (datetime('now', 'localtime')),
		unique (url)
	);`)
	if err != nil {
		return errors.Wrap(errutil.ErrDatabaseQuery, err.Error())
	}

	return nil
}

type client struct {
	DB *sqlx.DB
}

func New(db *sqlx.DB) repository.ItemPersistence {
	return &client{
		DB: db,
	}
}

func (c *client) Save(ctx context.Context, item news.Item) error {
	rows, err := c.DB.QueryxContext(ctx, "select count(*) from items where url = ?", item.URL)
	if err != nil {
		return errors.Wrap(errutil.ErrDatabaseQuery, err.Error())
	}

	var lineCount int
	for rows.Next() {
		err := rows.Scan(&lineCount)
		if err != nil {
			return errors.Wrap(errutil.ErrDatabaseScan, err.Error())
		}
	}

	// the same article is fetched again on every refresh, keep the
	// first archived copy
	if lineCount != 0 {
		return nil
	}

	itemSqlite := modelItemToItemSqlite(item)
	_, err = c.DB.NamedExecContext(ctx,
		`insert into items (id, title, content, url, source, published_at, category, severity, tags, summary)
		values
		(:id, :title, :content, :url, :source, :published_at, :category, :severity, :tags, :summary)`,
		itemSqlite)
	if err != nil {
		return errors.Wrap(errutil.ErrDatabaseQuery, err.Error())
	}

	return nil
}

func (c *client) LoadRecent(ctx context.Context, limit int) ([]news.Item, error) {
	var itemsSqlite []itemSqlite
	err := c.DB.SelectContext(ctx, &itemsSqlite,
		`select id, title, content, url, source, published_at, category, severity, tags, summary
		from items order by published_at desc limit ?`, limit)
	if err != nil {
		return nil, errors.Wrap(errutil.ErrDatabaseQuery, err.Error())
	}

	var items []news.Item
	for _, it := range itemsSqlite {
		items = append(items, itemSqliteToModelItem(it))
	}
	return items, nil
}

func (c *client) Count(ctx context.Context) (int, error) {
	var count int
	err := c.DB.GetContext(ctx, &count, `select count(*) from items`)
	if err != nil {
		return 0, errors.Wrap(errutil.ErrDatabaseQuery, err.Error())
	}
	return count, nil
}
