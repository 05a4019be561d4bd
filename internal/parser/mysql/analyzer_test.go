package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name            string
		sql             string
		wantKind        string
		wantDestructive bool
		wantBlocking    []string
	}{
		{
			name:     "create table",
			sql:      "CREATE TABLE IF NOT EXISTS `users` (`id` INT NOT NULL PRIMARY KEY AUTO_INCREMENT) CHARACTER SET utf8mb4",
			wantKind: "create_table",
		},
		{
			name:            "drop table",
			sql:             "DROP TABLE IF EXISTS `users`",
			wantKind:        "drop_table",
			wantDestructive: true,
		},
		{
			name:         "add column",
			sql:          "ALTER TABLE `users` ADD `email` VARCHAR(255) NOT NULL",
			wantKind:     "alter_table",
			wantBlocking: []string{"ADD COLUMN may require a table rebuild depending on MySQL version and column position"},
		},
		{
			name:            "drop column",
			sql:             "ALTER TABLE `users` DROP COLUMN `email`",
			wantKind:        "alter_table",
			wantDestructive: true,
			wantBlocking:    []string{"DROP COLUMN typically requires a full table rebuild and will lock the table"},
		},
		{
			name:         "modify column",
			sql:          "ALTER TABLE `users` MODIFY COLUMN `email` VARCHAR(320) NOT NULL",
			wantKind:     "alter_table",
			wantBlocking: []string{"MODIFY COLUMN may require a table rebuild if changing column type or size"},
		},
		{
			name:         "add index",
			sql:          "ALTER TABLE `users` ADD UNIQUE INDEX `uid_users_email_1a2b3c` (`email`)",
			wantKind:     "alter_table",
			wantBlocking: []string{"ADD INDEX may lock the table for the duration of index creation on large tables"},
		},
		{
			name:         "add foreign key",
			sql:          "ALTER TABLE `posts` ADD CONSTRAINT `fk_posts_users_1a2b3c4d` FOREIGN KEY (`user_id`) REFERENCES `users` (`id`) ON DELETE CASCADE",
			wantKind:     "alter_table",
			wantBlocking: []string{"ADD FOREIGN KEY may lock the table while validating existing data"},
		},
		{
			name:         "drop foreign key",
			sql:          "ALTER TABLE `posts` DROP FOREIGN KEY `fk_posts_users_1a2b3c4d`",
			wantKind:     "alter_table",
			wantBlocking: []string{"DROP FOREIGN KEY may briefly lock the table"},
		},
		{
			name:         "rename table",
			sql:          "ALTER TABLE `users` RENAME TO `accounts`",
			wantKind:     "alter_table",
			wantBlocking: []string{"RENAME TABLE acquires an exclusive lock but is typically fast"},
		},
		{
			name:     "alter default",
			sql:      "ALTER TABLE `users` ALTER COLUMN `age` SET DEFAULT 18",
			wantKind: "alter_table",
		},
		{
			name:         "create index",
			sql:          "CREATE INDEX `idx_users_name` ON `users` (`name`)",
			wantKind:     "create_index",
			wantBlocking: []string{"CREATE INDEX may lock the table for the duration of index creation"},
		},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := p.Analyze(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, a.Statement.Kind)
			assert.Equal(t, tt.wantDestructive, a.IsDestructive)
			assert.Equal(t, tt.wantBlocking, a.BlockingReasons)
			assert.Equal(t, len(tt.wantBlocking) > 0, a.IsBlocking)
		})
	}
}

func TestAnalyzeInvalidSQL(t *testing.T) {
	_, err := NewParser().Analyze("ALTER TABLE `users` FROB `x`")
	require.Error(t, err)
}

func TestAdvise(t *testing.T) {
	notes := NewParser().Advise([]string{
		"CREATE TABLE IF NOT EXISTS `a` (`id` INT NOT NULL)",
		"not sql at all",
		"DROP TABLE IF EXISTS `b`",
		"ALTER TABLE `a` DROP COLUMN `c`",
	})

	assert.Equal(t, []string{
		"Destructive: DROP TABLE will permanently delete the table and all its data: DROP TABLE IF EXISTS `b`",
		"Destructive: DROP COLUMN will permanently delete the column and its data: ALTER TABLE `a` DROP COLUMN `c`",
		"Potentially blocking: DROP COLUMN typically requires a full table rebuild and will lock the table: ALTER TABLE `a` DROP COLUMN `c`",
	}, notes)
}
