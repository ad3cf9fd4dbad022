package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"sales_backend/internal/logger"
)

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RunMigrations creates the sales schema. Every statement is idempotent, so
// running it against an existing database is a no-op.
func RunMigrations(ctx context.Context, db Execer) error {
	migrations := []string{
		createSellerTable,
		createProductTable,
		createInvoiceTable,
		createInvoiceDetailTable,
		createUsersTable,
		createInvoiceView,
	}

	log := logger.From(ctx)
	for i, migration := range migrations {
		log.Debug("running migration", logger.Int("step", i+1), logger.Int("total", len(migrations)))
		if _, err := db.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Info("all migrations completed successfully")
	return nil
}

const createSellerTable = `
CREATE TABLE IF NOT EXISTS seller (
  cod_ven SERIAL PRIMARY KEY,
  nom_ven TEXT NOT NULL,
  ape_ven TEXT NOT NULL,
  sue_ven NUMERIC(10, 2) NOT NULL DEFAULT 0,
  fin_ven DATE NOT NULL DEFAULT CURRENT_DATE,
  tip_ven TEXT NOT NULL
);
`

const createProductTable = `
CREATE TABLE IF NOT EXISTS product (
  cod_pro SERIAL PRIMARY KEY,
  des_pro TEXT NOT NULL UNIQUE,
  pre_pro NUMERIC(10, 2) NOT NULL,
  sac_pro INTEGER NOT NULL DEFAULT 0,
  smi_pro INTEGER NOT NULL DEFAULT 0,
  uni_pro TEXT NOT NULL,
  lin_pro TEXT NOT NULL,
  imp_pro CHAR(1) NOT NULL CHECK (imp_pro IN ('F', 'V'))
);

CREATE INDEX IF NOT EXISTS idx_product_lin_pro ON product(lin_pro);
`

const createInvoiceTable = `
CREATE TABLE IF NOT EXISTS invoice (
  num_fac SERIAL PRIMARY KEY,
  fec_fac DATE NOT NULL DEFAULT CURRENT_DATE,
  est_fac TEXT NOT NULL DEFAULT 'Pendiente',
  cod_ven INTEGER NOT NULL REFERENCES seller(cod_ven),
  por_igv NUMERIC(5, 2) NOT NULL DEFAULT 0
);
`

const createInvoiceDetailTable = `
CREATE TABLE IF NOT EXISTS invoice_detail (
  num_fac INTEGER NOT NULL REFERENCES invoice(num_fac) ON DELETE CASCADE,
  cod_pro INTEGER NOT NULL REFERENCES product(cod_pro),
  can_ven INTEGER NOT NULL CHECK (can_ven > 0),
  pre_ven NUMERIC(10, 2) NOT NULL,
  PRIMARY KEY (num_fac, cod_pro)
);
`

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
  id SERIAL PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password TEXT NOT NULL
);
`

const createInvoiceView = `
CREATE OR REPLACE VIEW invoice_seller_products AS
SELECT
  i.num_fac,
  i.fec_fac,
  i.est_fac,
  i.por_igv,
  s.cod_ven,
  s.nom_ven || ' ' || s.ape_ven AS seller_name,
  d.cod_pro,
  p.des_pro,
  d.can_ven,
  d.pre_ven,
  d.can_ven * d.pre_ven AS subtotal
FROM invoice i
JOIN seller s ON s.cod_ven = i.cod_ven
JOIN invoice_detail d ON d.num_fac = i.num_fac
JOIN product p ON p.cod_pro = d.cod_pro;
`
