package sqlconnect

import "database/sql"

// schema creates the tables on startup. Parent tables come first because of
// the foreign key constraints. Splits cascade with their expense; members
// who still appear as payer on an expense cannot be deleted (RESTRICT).
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INT AUTO_INCREMENT PRIMARY KEY,
	username VARCHAR(100) NOT NULL UNIQUE,
	email VARCHAR(255) NOT NULL UNIQUE,
	password VARCHAR(255) NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS ` + "`groups`" + ` (
	id INT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	created_by INT NOT NULL,
	budget_amount DECIMAL(12,2) NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (created_by) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS group_members (
	id INT AUTO_INCREMENT PRIMARY KEY,
	group_id INT NOT NULL,
	member_name VARCHAR(100) NOT NULL,
	user_id INT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (group_id) REFERENCES ` + "`groups`" + `(id) ON DELETE CASCADE,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS group_expenses (
	id INT AUTO_INCREMENT PRIMARY KEY,
	group_id INT NOT NULL,
	paid_by INT NOT NULL,
	description VARCHAR(255) NOT NULL,
	amount DECIMAL(12,2) NOT NULL,
	expense_date DATETIME NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (group_id) REFERENCES ` + "`groups`" + `(id) ON DELETE CASCADE,
	FOREIGN KEY (paid_by) REFERENCES group_members(id) ON DELETE RESTRICT
);

CREATE TABLE IF NOT EXISTS group_expense_splits (
	id INT AUTO_INCREMENT PRIMARY KEY,
	expense_id INT NOT NULL,
	owed_by INT NOT NULL,
	amount_owed DECIMAL(12,2) NOT NULL,
	UNIQUE KEY uniq_expense_member (expense_id, owed_by),
	FOREIGN KEY (expense_id) REFERENCES group_expenses(id) ON DELETE CASCADE,
	FOREIGN KEY (owed_by) REFERENCES group_members(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS settlements (
	id INT AUTO_INCREMENT PRIMARY KEY,
	group_id INT NOT NULL,
	paid_by INT NOT NULL,
	paid_to INT NOT NULL,
	amount DECIMAL(12,2) NOT NULL,
	settled_at DATETIME NOT NULL,
	FOREIGN KEY (group_id) REFERENCES ` + "`groups`" + `(id) ON DELETE CASCADE,
	FOREIGN KEY (paid_by) REFERENCES group_members(id),
	FOREIGN KEY (paid_to) REFERENCES group_members(id)
);
`

// statements are executed one at a time because the MySQL driver does not
// allow multiple statements per Exec by default.
func RunMigrations(db *sql.DB) error {
	for _, stmt := range splitStatements(schema) {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func splitStatements(schema string) []string {
	var stmts []string
	current := ""
	for _, r := range schema {
		current += string(r)
		if r == ';' {
			stmts = append(stmts, current)
			current = ""
		}
	}
	return stmts
}
