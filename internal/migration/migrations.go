package migration

// getAllMigrations retorna todas as migrações disponíveis
func getAllMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_weekly_goals",
			Up: `
				-- Metas semanais; tasks ficam em JSONB na ordem de exibição
				CREATE TABLE weekly_goals (
					id UUID PRIMARY KEY,
					user_id VARCHAR(100) NOT NULL,
					week_start DATE NOT NULL,
					title VARCHAR(255) NOT NULL,
					tasks JSONB NOT NULL DEFAULT '[]',
					position INTEGER NOT NULL DEFAULT 0,
					created_at TIMESTAMP DEFAULT NOW(),
					updated_at TIMESTAMP DEFAULT NOW()
				);

				CREATE INDEX idx_weekly_goals_user_week ON weekly_goals(user_id, week_start);
			`,
			Down: `
				DROP TABLE IF EXISTS weekly_goals;
			`,
		},
		{
			Version: 2,
			Name:    "create_daily_snapshots",
			Up: `
				-- Total de tasks concluídas por dia, alimenta o streak diário
				CREATE TABLE daily_snapshots (
					user_id VARCHAR(100) NOT NULL,
					day DATE NOT NULL,
					tasks_completed INTEGER NOT NULL DEFAULT 0 CHECK (tasks_completed >= 0),
					recorded_at TIMESTAMP DEFAULT NOW(),
					PRIMARY KEY (user_id, day)
				);
			`,
			Down: `
				DROP TABLE IF EXISTS daily_snapshots;
			`,
		},
	}
}
