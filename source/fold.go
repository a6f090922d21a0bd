package source

import (
	"database/sql"
	"fmt"
	"sync"
	"unicode"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// SQLiteDriverName is the database/sql driver registered with fold().
	SQLiteDriverName = "sqlite3_namescan"

	foldFunction = "fold"
)

var registerOnce sync.Once

// registerSQLiteDriver registers the SQLite driver whose connections carry
// the fold() scalar function. Safe to call repeatedly.
func registerSQLiteDriver() {
	registerOnce.Do(func() {
		sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc(foldFunction, foldValue, true)
			},
		})
	})
}

// foldValue is the SQL-facing wrapper; NULL folds to the empty string.
func foldValue(v any) string {
	switch x := v.(type) {
	case string:
		return Fold(x)
	case []byte:
		return Fold(string(x))
	case nil:
		return ""
	default:
		return Fold(fmt.Sprint(x))
	}
}

// Fold maps s to a form where case and diacritic variants compare equal:
// "José", "JOSE" and "jose" all fold to "jose".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	// Casers keep state and must not be shared between goroutines.
	return cases.Fold().String(stripped)
}
