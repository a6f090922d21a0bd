package source

import (
	"fmt"

	"github.com/poiesic/namescan/core"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SeedSQLite creates (or extends) a SQLite database at path with a table
// holding an integer id and one text column, and inserts values in order.
// It is used by tests and the demo seeder.
func SeedSQLite(path, table, column string, values ...string) error {
	for _, ident := range []string{table, column} {
		if err := core.ValidateIdentifier(ident); err != nil {
			return err
		}
	}

	registerSQLiteDriver()
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: SQLiteDriverName, DSN: "file:" + path}),
		&gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	d := SQLiteDialect{}
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY AUTOINCREMENT, %s TEXT)",
		d.Quote(table), d.Quote(column))
	if err := db.Exec(create).Error; err != nil {
		return err
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?)", d.Quote(table), d.Quote(column))
	return db.Transaction(func(tx *gorm.DB) error {
		for _, v := range values {
			if err := tx.Exec(insert, v).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
