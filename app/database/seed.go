package database

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS categories (
	id SERIAL PRIMARY KEY,
	name VARCHAR(100) NOT NULL UNIQUE,
	description TEXT,
	image_url TEXT,
	created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS products (
	id SERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL UNIQUE,
	description TEXT,
	part_number VARCHAR(50) UNIQUE NOT NULL,
	status VARCHAR(20) NOT NULL,
	category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
	image_url TEXT,
	created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS materials (
	id SERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL UNIQUE,
	description TEXT,
	current_stock DECIMAL(10, 2) NOT NULL,
	unit VARCHAR(20) NOT NULL,
	supplier VARCHAR(255),
	unit_cost DECIMAL(10, 2) NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS product_materials (
	id SERIAL PRIMARY KEY,
	product_id INTEGER REFERENCES products(id),
	material_id INTEGER REFERENCES materials(id),
	quantity_required DECIMAL(10, 2) NOT NULL,
	notes TEXT,
	UNIQUE(product_id, material_id)
);
`

const seedSQL = `
INSERT INTO categories (name, description) VALUES
	('Drones', 'Unmanned aerial vehicles for surveillance and combat'),
	('Sensors', 'Detection and environmental monitoring systems'),
	('Vehicles', 'Ground-based autonomous or manned platforms')
ON CONFLICT (name) DO NOTHING;

INSERT INTO products (name, description, part_number, status, category_id) VALUES
	('Advanced Drone', 'High-precision surveillance drone', 'DRONE-X1', 'IN_PRODUCTION',
		(SELECT id FROM categories WHERE name = 'Drones')),
	('Tactical Sensor Array', 'Multi-spectrum environmental sensor system', 'SENSOR-T2', 'PROTOTYPE',
		(SELECT id FROM categories WHERE name = 'Sensors')),
	('Autonomous Ground Vehicle', 'Unmanned ground reconnaissance platform', 'AGV-R3', 'IN_PRODUCTION',
		(SELECT id FROM categories WHERE name = 'Vehicles'))
ON CONFLICT DO NOTHING;

INSERT INTO materials (name, description, current_stock, unit, supplier, unit_cost) VALUES
	('Carbon Fiber Composite', 'High-strength lightweight material', 500.50, 'kg', 'Advanced Composites Inc.', 45.75),
	('Aluminum Alloy Plate', 'Aerospace-grade aluminum sheet', 1000.25, 'kg', 'Metal Dynamics Corp', 12.50),
	('High-Precision Sensor Module', 'Advanced multi-spectrum sensor', 75.00, 'pieces', 'SensorTech Solutions', 875.00),
	('Lithium-Polymer Battery Pack', 'High-capacity rechargeable battery', 200.75, 'pieces', 'PowerCell Technologies', 325.50)
ON CONFLICT (name) DO NOTHING;

INSERT INTO product_materials (product_id, material_id, quantity_required, notes) VALUES
	((SELECT id FROM products WHERE part_number = 'DRONE-X1'),
	 (SELECT id FROM materials WHERE name = 'Carbon Fiber Composite'), 25.5, 'Structural frame components'),
	((SELECT id FROM products WHERE part_number = 'DRONE-X1'),
	 (SELECT id FROM materials WHERE name = 'Lithium-Polymer Battery Pack'), 2, 'Power supply system'),
	((SELECT id FROM products WHERE part_number = 'SENSOR-T2'),
	 (SELECT id FROM materials WHERE name = 'High-Precision Sensor Module'), 1, 'Primary sensor array'),
	((SELECT id FROM products WHERE part_number = 'AGV-R3'),
	 (SELECT id FROM materials WHERE name = 'Aluminum Alloy Plate'), 40.75, 'Chassis and body panels')
ON CONFLICT (product_id, material_id) DO NOTHING;
`

// Migrate creates the four catalog tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	return inTx(ctx, db, schemaSQL)
}

// Seed creates the schema and inserts the demo rows. Running it twice is harmless.
func Seed(ctx context.Context, db *sql.DB) error {
	return inTx(ctx, db, schemaSQL, seedSQL)
}

func inTx(ctx context.Context, db *sql.DB, statements ...string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
