// Package source opens short-lived connections to the relational sources
// namescan searches.
//
// Each call to Provider.Connect opens a new gorm handle limited to a single
// underlying connection and verifies it with a ping. Callers close it as soon
// as their one query has run; nothing is pooled or reused. SQL Server and
// MySQL sources rely on their accent- and case-insensitive collations, while
// SQLite sources get a fold() function registered on every connection.
package source
