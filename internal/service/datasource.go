package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// DataSourceConfig holds connection details
type DataSourceConfig struct {
	Type     string `yaml:"type" json:"type"` // "postgres"
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"password"`
	DBName   string `yaml:"dbname" json:"dbname"`
	SSLMode  string `yaml:"sslmode" json:"sslmode"` // "disable", "require"
}

// ConnString renders the config as a lib/pq keyword/value connection string
func (c DataSourceConfig) ConnString() string {
	parts := []string{
		"host=" + quoteConnValue(c.Host),
		fmt.Sprintf("port=%d", c.Port),
		"user=" + quoteConnValue(c.User),
		"password=" + quoteConnValue(c.Password),
		"dbname=" + quoteConnValue(c.DBName),
		"sslmode=" + quoteConnValue(c.SSLMode),
	}
	return strings.Join(parts, " ")
}

func quoteConnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// DataSource is a tabular source whose rows feed the genre aggregator.
// FetchRows returns the header first, then one row per record.
type DataSource interface {
	Connect(ctx context.Context, config DataSourceConfig) error
	Close() error
	ListTables(ctx context.Context) ([]string, error)
	FetchRows(ctx context.Context, tableName string) ([][]string, error)
}

// PostgresDataSource implements DataSource for PostgreSQL
type PostgresDataSource struct {
	db *sql.DB
}

func (p *PostgresDataSource) Connect(ctx context.Context, config DataSourceConfig) error {
	if config.Type != "" && config.Type != "postgres" {
		return fmt.Errorf("unsupported data source type %q", config.Type)
	}

	db, err := sql.Open("postgres", config.ConnString())
	if err != nil {
		return err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return err
	}

	p.db = db
	return nil
}

func (p *PostgresDataSource) Close() error {
	if p.db != nil {
		err := p.db.Close()
		p.db = nil
		return err
	}
	return nil
}

func (p *PostgresDataSource) ListTables(ctx context.Context) ([]string, error) {
	if p.db == nil {
		return nil, fmt.Errorf("not connected")
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name;
	`
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}
	return tables, rows.Err()
}

// FetchRows reads a whole table. The table name must be one returned by
// ListTables.
func (p *PostgresDataSource) FetchRows(ctx context.Context, tableName string) ([][]string, error) {
	tables, err := p.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	if !contains(tables, tableName) {
		return nil, fmt.Errorf("unknown table %q", tableName)
	}

	rows, err := p.db.QueryContext(ctx, "SELECT * FROM "+pq.QuoteIdentifier(tableName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	header := make([]string, len(colTypes))
	for i, ct := range colTypes {
		header[i] = ct.Name()
	}
	result := [][]string{header}

	for rows.Next() {
		values := make([]interface{}, len(colTypes))
		valuePtrs := make([]interface{}, len(colTypes))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		record := make([]string, len(colTypes))
		for i, ct := range colTypes {
			cell, err := cellString(values[i], ct.DatabaseTypeName())
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", ct.Name(), err)
			}
			record[i] = cell
		}
		result = append(result, record)
	}

	return result, rows.Err()
}

// cellString converts a scanned value to text. Postgres text arrays are
// rendered as a bracketed list, e.g. ['Action', 'Drama'].
func cellString(v interface{}, dbType string) (string, error) {
	if v == nil {
		return "", nil
	}

	if strings.HasPrefix(dbType, "_") {
		var arr pq.StringArray
		if err := arr.Scan(v); err != nil {
			return "", err
		}
		return renderList(arr)
	}

	switch val := v.(type) {
	case []byte:
		return string(val), nil
	case string:
		return val, nil
	case time.Time:
		return val.Format(time.RFC3339), nil
	default:
		return fmt.Sprint(val), nil
	}
}

// renderList quotes each item with ' or, if the item holds a ', with ".
// An item holding both cannot be read back as one element.
func renderList(items []string) (string, error) {
	quoted := make([]string, len(items))
	for i, item := range items {
		q := "'"
		if strings.Contains(item, "'") {
			if strings.Contains(item, `"`) {
				return "", fmt.Errorf("array element %q mixes single and double quotes", item)
			}
			q = `"`
		}
		quoted[i] = q + item + q
	}
	return "[" + strings.Join(quoted, ", ") + "]", nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
