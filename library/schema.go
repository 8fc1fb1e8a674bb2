package library

// Schema creates the library tables. Records are stored as their
// interchange JSON; ids live in their own column because the projection
// omits them.
const Schema = `
CREATE TABLE IF NOT EXISTS uploads (
	name TEXT PRIMARY KEY,
	uploaded_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS strategies (
	id TEXT PRIMARY KEY,
	upload_name TEXT NOT NULL,
	position INTEGER NOT NULL,
	symbol TEXT NOT NULL,
	period TEXT NOT NULL,
	record TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_strategies_upload ON strategies(upload_name, position);

CREATE TABLE IF NOT EXISTS portfolios (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS portfolio_members (
	portfolio_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	strategy_id TEXT NOT NULL,
	record TEXT NOT NULL,
	PRIMARY KEY (portfolio_id, position)
);
`
