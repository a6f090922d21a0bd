// Package config holds the canonical description of the sources and columns
// namescan searches.
//
// A Config is loaded once at process start (Load) or assembled in code
// (NewConfig with ConfigOption values) and then passed by reference to the
// registry, the connection provider and the audit sink. Credentials are kept
// out of the file by referencing environment variables, optionally populated
// from a dotenv file:
//
//	version: 1
//	sources:
//	  - id: ECC60jkl_HACK
//	    driver: sqlserver
//	    host: sql.example.net
//	    username: ${NAMESCAN_SQL_USER}
//	    password: ${NAMESCAN_SQL_PASSWORD}
//	targets:
//	  - {source: ECC60jkl_HACK, schema: dbo, table: KNA1, column: NAME1}
package config
