// Package dialect names the SQL dialects socialgraph runs on and defines
// the driver interfaces the executor talks to.
//
// A Driver runs statements and opens transactions; a Tx is a Driver that
// can commit or roll back. Both satisfy ExecQuerier, so the executor runs
// the same code inside and outside transactions.
//
//	drv, err := sql.Open("pgx", "postgres://localhost/social")
//	if err != nil {
//		return err
//	}
//	c := client.NewClient(client.Driver(drv))
//
// Driver names are mapped to dialects by Normalize: "pgx" and "postgres"
// speak Postgres, "sqlite" and "sqlite3" SQLite, and "mysql" MySQL.
package dialect
