package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales_backend/internal/codec"
	"sales_backend/internal/models"
	"sales_backend/internal/repositories"
	"sales_backend/internal/utils"
)

type fakeUsers struct {
	rows    []models.Record
	created []models.Record
	readErr error
}

func (f *fakeUsers) Read(_ context.Context, table, col string, val any) ([]models.Record, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	var out []models.Record
	for _, r := range f.rows {
		if r[col] == val {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeUsers) Create(_ context.Context, table string, payload any) (models.Record, error) {
	rec, err := codec.Normalize(payload)
	if err != nil {
		return nil, err
	}
	rec["id"] = int32(len(f.rows) + 1)
	f.rows = append(f.rows, rec)
	f.created = append(f.created, rec)
	return rec, nil
}

func newAuth(t *testing.T) (*AuthService, *fakeUsers) {
	t.Helper()
	users := &fakeUsers{}
	svc := NewAuthService(users, utils.NewTokenIssuer([]byte("secret"), time.Hour), repositories.NewMemoryBlacklist())
	return svc, users
}

func TestAuthService_SeedLoginLogout(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuth(t)

	email, password, err := svc.SeedUser(ctx, "", "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(email, "@example.com"))
	require.Len(t, users.created, 1)
	assert.Equal(t, users.created[0]["email"], email, "returned email is the stored one")
	assert.NotEqual(t, password, users.created[0]["password"], "password is stored hashed")

	token, claims, err := svc.Login(ctx, strings.ToUpper(email), password)
	require.NoError(t, err)
	assert.Equal(t, email, claims.Email)
	assert.Equal(t, "1", claims.Subject)

	got, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, claims.ID, got.ID)

	require.NoError(t, svc.Logout(ctx, got))
	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestAuthService_SeedUserReturnsStoredEmail(t *testing.T) {
	svc, users := newAuth(t)

	email, password, err := svc.SeedUser(context.Background(), "  Ana.Torres@Example.COM ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "ana.torres@example.com", email)
	assert.Equal(t, "s3cret", password)
	require.Len(t, users.created, 1)
	assert.Equal(t, email, users.created[0]["email"])

	_, claims, err := svc.Login(context.Background(), email, password)
	require.NoError(t, err)
	assert.Equal(t, email, claims.Email)
}

func TestAuthService_LoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuth(t)
	_, _, err := svc.SeedUser(ctx, "ana@ventas.pe", "correct")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "ana@ventas.pe", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@ventas.pe", "correct")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	users.readErr = errors.New("db down")
	_, _, err = svc.Login(ctx, "ana@ventas.pe", "correct")
	assert.EqualError(t, err, "db down")
}

type fakeInvoices struct {
	parent   any
	children []any
	table    string
	column   string
	value    any
}

func (f *fakeInvoices) CreateLinked(_ context.Context, pt string, parent any, ct string, children []any) (models.Record, []models.Record, error) {
	f.parent, f.children = parent, children
	return models.Record{"num_fac": int32(9)}, []models.Record{{"num_fac": int32(9)}}, nil
}

func (f *fakeInvoices) Read(_ context.Context, table, col string, val any) ([]models.Record, error) {
	f.table, f.column, f.value = table, col, val
	return []models.Record{}, nil
}

func TestSalesService_CreateInvoice(t *testing.T) {
	store := &fakeInvoices{}
	svc := NewSalesService(store)
	stale := int64(3)

	out, err := svc.CreateInvoice(context.Background(), models.Invoice{
		SellerCode: 1,
		Details:    []models.InvoiceDetail{{InvoiceNumber: &stale, ProductCode: 2, Quantity: 1, Price: 5}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 9, out.Invoice["num_fac"])

	header := store.parent.(map[string]any)
	assert.Equal(t, "Pendiente", header["est_fac"])
	line := store.children[0].(models.InvoiceDetail)
	assert.Nil(t, line.InvoiceNumber, "the header's number replaces any client supplied one")
}

func TestSalesService_ListInvoices(t *testing.T) {
	store := &fakeInvoices{}
	svc := NewSalesService(store)

	_, err := svc.ListInvoices(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "invoice_seller_products", store.table)
	assert.Empty(t, store.column)

	n := int64(4)
	_, err = svc.ListInvoices(context.Background(), &n)
	require.NoError(t, err)
	assert.Equal(t, "num_fac", store.column)
	assert.Equal(t, int64(4), store.value)
}

type staticTables []*models.TableDefinition

func (s staticTables) Tables() ([]*models.TableDefinition, error) { return s, nil }

func TestSchemaService_Diagram(t *testing.T) {
	tables := staticTables{
		models.NewTableDefinition("invoice", false, []models.ColumnDefinition{
			{Name: "num_fac", DataType: "integer", PrimaryKey: true},
			{Name: "cod_ven", DataType: "integer"},
		}, []models.ForeignKeyDefinition{{FromColumn: "cod_ven", ToTable: "seller", ToColumn: "cod_ven"}}),
		models.NewTableDefinition("invoice_detail", false, []models.ColumnDefinition{
			{Name: "num_fac", DataType: "integer", PrimaryKey: true},
			{Name: "cod_pro", DataType: "integer", PrimaryKey: true},
			{Name: "pre_ven", DataType: "numeric"},
		}, []models.ForeignKeyDefinition{
			{FromColumn: "num_fac", ToTable: "invoice", ToColumn: "num_fac"},
			{FromColumn: "cod_pro", ToTable: "product", ToColumn: "cod_pro"},
		}),
		models.NewTableDefinition("seller", false, []models.ColumnDefinition{
			{Name: "cod_ven", DataType: "integer", PrimaryKey: true},
			{Name: "nom_ven", DataType: "character varying"},
		}, nil),
		models.NewTableDefinition("invoice_seller_products", true, []models.ColumnDefinition{
			{Name: "num_fac", DataType: "integer"},
		}, nil),
	}

	diagram, err := NewSchemaService(tables).Diagram()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(diagram, "erDiagram\n"))
	assert.Contains(t, diagram, `INVOICE ||--o{ SELLER : ""`)
	assert.Contains(t, diagram, `INVOICE }o--o{ PRODUCT : ""`)
	assert.Contains(t, diagram, "        int num_fac PK FK\n")
	assert.Contains(t, diagram, "        varchar nom_ven\n")
	assert.NotContains(t, diagram, "INVOICE_SELLER_PRODUCTS", "views are left out")
}
