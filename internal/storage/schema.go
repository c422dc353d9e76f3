package storage

// Table names, in creation order.
const (
	TableUserXP           = "user_xp"
	TableGuildConfig      = "guild_config"
	TableShowcaseProjects = "showcase_projects"
	TableEventRSVP        = "event_rsvp"
	TableModerationLogs   = "moderation_logs"
	TableUserWarnings     = "user_warnings"
	TableCustomCommands   = "custom_commands"
)

// Column names follow the files written by earlier releases of the bot so existing databases open as-is.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS user_xp (
		user_id INTEGER NOT NULL,
		guild_id INTEGER NOT NULL,
		xp INTEGER DEFAULT 0,
		level INTEGER DEFAULT 1,
		last_message TIMESTAMP,
		total_messages INTEGER DEFAULT 0,
		PRIMARY KEY (user_id, guild_id)
	)`,
	`CREATE TABLE IF NOT EXISTS guild_config (
		guild_id INTEGER PRIMARY KEY,
		config_data TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS showcase_projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		guild_id INTEGER NOT NULL,
		project_name TEXT NOT NULL,
		description TEXT,
		github_url TEXT,
		tags TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS event_rsvp (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		guild_id INTEGER NOT NULL,
		event_name TEXT NOT NULL,
		event_date TIMESTAMP,
		status TEXT DEFAULT 'going',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS moderation_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id INTEGER NOT NULL,
		moderator_id INTEGER NOT NULL,
		target_user_id INTEGER NOT NULL,
		action_type TEXT NOT NULL,
		reason TEXT,
		timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS user_warnings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		guild_id INTEGER NOT NULL,
		moderator_id INTEGER NOT NULL,
		reason TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		active BOOLEAN DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS custom_commands (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id INTEGER NOT NULL,
		command_name TEXT NOT NULL,
		response TEXT NOT NULL,
		created_by INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(guild_id, command_name)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_user_xp_guild ON user_xp(guild_id)`,
	`CREATE INDEX IF NOT EXISTS idx_showcase_guild ON showcase_projects(guild_id)`,
	`CREATE INDEX IF NOT EXISTS idx_rsvp_guild ON event_rsvp(guild_id)`,
	`CREATE INDEX IF NOT EXISTS idx_mod_logs_guild ON moderation_logs(guild_id)`,
	`CREATE INDEX IF NOT EXISTS idx_warnings_user ON user_warnings(user_id, guild_id)`,
}
