package mysql

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	mysqlcontainer "github.com/testcontainers/testcontainers-go/modules/mysql"

	"schemaddl/internal/core"
)

func TestStatementsApplyIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupMySQL(t)
	ctx := context.Background()
	g := newGenerator(t)

	intType := core.TypeMap{"": "INT"}
	name := &core.Column{Name: "name", Types: core.TypeMap{"": "VARCHAR(50)"}}
	price := &core.Column{Name: "price", Types: core.TypeMap{"": "DECIMAL(10,2)"}, Kind: core.KindDecimal, Default: "9.99", Description: "Unit price"}
	orderItems := core.TableRef{Name: "order_items", PKColumn: "id", PKTypes: intType}
	fk := core.ForeignKey{Table: orderItems, Column: "product_id", RefTable: product, OnDelete: core.RefActionSetNull}
	nameIdx := core.Index{Table: product, Fields: []string{"name"}, Unique: true}

	reqs := []core.ChangeRequest{
		core.CreateTable{Table: &core.Table{
			Ref:     product,
			Columns: []*core.Column{{Name: "id", Types: intType, AutoIncrement: true}, name},
		}},
		core.CreateTable{Table: &core.Table{
			Ref:     category,
			Columns: []*core.Column{{Name: "id", Types: intType, AutoIncrement: true}},
		}},
		core.CreateTable{Table: &core.Table{
			Ref:     orderItems,
			Columns: []*core.Column{{Name: "id", Types: intType, AutoIncrement: true}, {Name: "product_id", Types: intType, Nullable: true}},
		}},
		core.AddColumn{Table: product, Column: price},
		core.AddIndex{Index: nameIdx},
		core.CreateM2MTable{Relation: &core.M2MRelation{
			Through: "product_category", BackwardKey: "product_id", ForwardKey: "category_id",
			BackwardTable: product, ForwardTable: category, Description: "links",
		}},
		core.AddForeignKey{ForeignKey: fk},
		core.AlterColumnDefault{Table: product, Column: &core.Column{Name: "price", Kind: core.KindDecimal, Default: 1.5}},
		core.ModifyColumn{Table: product, Column: &core.Column{Name: "price", Types: core.TypeMap{"": "DECIMAL(12,2)"}, Nullable: true}},
		core.SetColumnComment{Table: product, Column: &core.Column{Name: "price", Types: core.TypeMap{"": "DECIMAL(12,2)"}, Nullable: true, Description: "Price"}},
		core.DropIndex{Index: nameIdx},
		core.RenameColumn{Table: product, Old: "name", New: "title"},
		core.DropForeignKey{ForeignKey: fk},
		core.DropM2MTable{Table: "product_category"},
		core.DropColumn{Table: product, Column: "price"},
		core.RenameTable{Old: "product", New: "products"},
		core.DropTable{Table: "order_items"},
		core.DropTable{Table: "products"},
		core.DropTable{Table: "category"},
	}

	for i, req := range reqs {
		stmt, err := g.Generate(req)
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, stmt)
		require.NoError(t, err, "step %d (%s): %s", i+1, req.Op(), stmt)
	}
}

func setupMySQL(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := mysqlcontainer.Run(ctx, "mysql:8.0",
		mysqlcontainer.WithDatabase("testdb"),
		mysqlcontainer.WithUsername("root"),
		mysqlcontainer.WithPassword("testpass"),
	)
	require.NoError(t, err, "failed to start MySQL container")

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "parseTime=true")
	require.NoError(t, err, "failed to get connection string")

	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err, "failed to open DB connection")
	require.NoError(t, db.PingContext(ctx), "failed to ping database")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close DB connection: %v", err)
		}
	})

	return db
}
