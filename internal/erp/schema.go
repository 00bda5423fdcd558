package erp

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates the demo business tables. This exists for the
// `helios seed` command and for tests; in production the ERP system owns
// this schema and the assistant only reads it.
func CreateSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS customers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		created_at TEXT
	);

	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sku TEXT,
		name TEXT NOT NULL,
		price REAL NOT NULL,
		stock_quantity INTEGER NOT NULL DEFAULT 0,
		created_at TEXT
	);

	CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id INTEGER NOT NULL,
		total REAL NOT NULL,
		status TEXT,
		created_at TEXT,
		FOREIGN KEY (customer_id) REFERENCES customers(id)
	);

	CREATE TABLE IF NOT EXISTS order_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id INTEGER NOT NULL,
		product_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL,
		price REAL NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders(id),
		FOREIGN KEY (product_id) REFERENCES products(id)
	);

	CREATE TABLE IF NOT EXISTS invoices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id INTEGER NOT NULL,
		total REAL NOT NULL,
		status TEXT,
		issued_at TEXT,
		FOREIGN KEY (order_id) REFERENCES orders(id)
	);

	CREATE TABLE IF NOT EXISTS payments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		invoice_id INTEGER NOT NULL,
		amount REAL NOT NULL,
		method TEXT,
		paid_at TEXT,
		FOREIGN KEY (invoice_id) REFERENCES invoices(id)
	);

	CREATE TABLE IF NOT EXISTS leads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_name TEXT,
		contact_email TEXT,
		message TEXT,
		score REAL,
		status TEXT,
		created_at TEXT
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create business schema: %w", err)
	}
	return nil
}

// Seed inserts sample rows so the demo has something to talk about.
func Seed(db *sql.DB) error {
	stmts := []struct {
		query string
		rows  [][]any
	}{
		{
			"INSERT INTO customers (name, email, phone, created_at) VALUES (?,?,?,?)",
			[][]any{
				{"Acme Corp", "contact@acme.example", "555-0101", "2024-01-10 10:00:00"},
				{"Globex LLC", "sales@globex.example", "555-0102", "2024-02-15 12:30:00"},
				{"Initech", "info@initech.example", "555-0103", "2024-03-01 09:15:00"},
			},
		},
		{
			"INSERT INTO products (sku, name, price, stock_quantity, created_at) VALUES (?,?,?,?,?)",
			[][]any{
				{"WID-001", "Widget Pro", 199.99, 120, "2024-01-05 08:00:00"},
				{"SRV-001", "Service A", 499.00, 9999, "2024-01-05 08:00:00"},
				{"TLM-001", "Tool Max", 249.50, 12, "2024-01-05 08:00:00"},
			},
		},
		{
			"INSERT INTO orders (customer_id, total, status, created_at) VALUES (?,?,?,?)",
			[][]any{
				{1, 948.49, "paid", "2024-04-05 14:00:00"},
				{2, 249.50, "pending", "2024-04-10 13:20:00"},
			},
		},
		{
			"INSERT INTO order_items (order_id, product_id, quantity, price) VALUES (?,?,?,?)",
			[][]any{
				{1, 1, 2, 199.99},
				{1, 2, 1, 499.00},
				{2, 3, 1, 249.50},
			},
		},
		{
			"INSERT INTO invoices (order_id, total, status, issued_at) VALUES (?,?,?,?)",
			[][]any{
				{1, 948.49, "paid", "2024-04-06 09:00:00"},
				{2, 249.50, "pending", "2024-04-11 10:00:00"},
			},
		},
		{
			"INSERT INTO payments (invoice_id, amount, method, paid_at) VALUES (?,?,?,?)",
			[][]any{
				{1, 948.49, "card", "2024-04-06 12:00:00"},
			},
		},
		{
			"INSERT INTO leads (customer_name, contact_email, message, score, status, created_at) VALUES (?,?,?,?,?,?)",
			[][]any{
				{"Wayne Enterprises", "bruce@wayne.example", "Interested in a bulk order, need a demo asap", nil, "new", "2024-04-02 08:30:00"},
				{"Stark Industries", "tony@stark.example", "Request for quote", 8.0, "contacted", "2024-04-03 11:45:00"},
				{"Pied Piper", "richard@gmail.com", "Just browsing", nil, "new", "2024-04-04 16:00:00"},
			},
		},
	}

	for _, s := range stmts {
		for _, row := range s.rows {
			if _, err := db.Exec(s.query, row...); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
		}
	}
	return nil
}
