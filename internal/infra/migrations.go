package infra

type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "create users table",
		sql: `
			CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT UNIQUE NOT NULL,
				nickname TEXT,
				password TEXT,
				avatar TEXT,
				coins INTEGER NOT NULL DEFAULT 0,
				ip_address TEXT NOT NULL DEFAULT '',
				is_guest INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_users_is_guest ON users(is_guest);
		`,
	},
	{
		name: "create scores table",
		sql: `
			CREATE TABLE IF NOT EXISTS scores (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL REFERENCES users(id),
				game TEXT NOT NULL,
				score INTEGER NOT NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_scores_game ON scores(game, score DESC);
			CREATE INDEX IF NOT EXISTS idx_scores_date ON scores(created_at);
		`,
	},
}
