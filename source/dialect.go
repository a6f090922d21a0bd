package source

import (
	"strings"

	"github.com/poiesic/namescan/config"
	"github.com/poiesic/namescan/core"
)

// Dialect renders the engine-specific parts of the substring query.
type Dialect interface {
	// Name returns the driver name, e.g. "sqlserver".
	Name() string
	// Quote quotes a validated identifier.
	Quote(ident string) string
	// MatchExpr returns a boolean expression comparing column to a single
	// bound LIKE pattern built by ContainsPattern, ignoring case and diacritics.
	MatchExpr(column string) string
}

// SubstringQuery builds the statement used to search one target. The pattern
// is the only bound parameter.
func SubstringQuery(d Dialect, target core.SearchTarget) string {
	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(d.Quote(target.Schema))
	b.WriteString(".")
	b.WriteString(d.Quote(target.Table))
	b.WriteString(" WHERE ")
	b.WriteString(d.MatchExpr(target.Column))
	return b.String()
}

// likeEscape is the ESCAPE character of every MatchExpr.
const likeEscape = "!"

// likeEscaper quotes LIKE metacharacters. '[' is a wildcard only on SQL
// Server; escaping it elsewhere still matches it literally.
var likeEscaper = strings.NewReplacer(
	likeEscape, likeEscape+likeEscape,
	"%", likeEscape+"%",
	"_", likeEscape+"_",
	"[", likeEscape+"[",
)

// ContainsPattern wraps name into a LIKE substring pattern. Wildcards in name
// match themselves, so "O_Connor" does not find "O'Connor".
func ContainsPattern(name string) string {
	return "%" + likeEscaper.Replace(name) + "%"
}

// DialectFor returns the dialect of a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverSQLServer:
		return SQLServerDialect{}, nil
	case config.DriverMySQL:
		return MySQLDialect{}, nil
	case config.DriverSQLite:
		return SQLiteDialect{}, nil
	default:
		return nil, ErrUnsupportedDriver
	}
}

// SQLServerDialect matches with the Latin1_General_CI_AI collation.
type SQLServerDialect struct{}

func (SQLServerDialect) Name() string { return config.DriverSQLServer }

func (SQLServerDialect) Quote(ident string) string {
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}

func (d SQLServerDialect) MatchExpr(column string) string {
	return d.Quote(column) + " COLLATE Latin1_General_CI_AI LIKE ? ESCAPE '" + likeEscape + "'"
}

// MySQLDialect matches with the utf8mb4 accent- and case-insensitive collation.
type MySQLDialect struct{}

func (MySQLDialect) Name() string { return config.DriverMySQL }

func (MySQLDialect) Quote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func (d MySQLDialect) MatchExpr(column string) string {
	return d.Quote(column) + " COLLATE utf8mb4_0900_ai_ci LIKE ? ESCAPE '" + likeEscape + "'"
}

// SQLiteDialect has no accent-insensitive collation, so both sides go through
// the fold() function registered on every namescan SQLite connection.
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string { return config.DriverSQLite }

func (SQLiteDialect) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (d SQLiteDialect) MatchExpr(column string) string {
	return foldFunction + "(" + d.Quote(column) + ") LIKE " + foldFunction + "(?) ESCAPE '" + likeEscape + "'"
}
