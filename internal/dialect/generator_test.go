package dialect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemaddl/internal/core"
)

var (
	productRef  = core.TableRef{Name: "Product", DBTable: "product", PKColumn: "id", PKTypes: core.TypeMap{"": "INT"}}
	categoryRef = core.TableRef{Name: "Category", DBTable: "category", PKColumn: "id", PKTypes: core.TypeMap{"": "INT"}}
)

func newTestGenerator(unsupported ...core.Operation) *Generator {
	spec := testSpec()
	spec.Unsupported = NewOperationSet(unsupported...)
	return NewGenerator(spec, stubNames{})
}

func TestGeneratorStatements(t *testing.T) {
	g := newTestGenerator()
	name := &core.Column{Name: "name", Types: core.TypeMap{"": "VARCHAR(50)"}, Unique: true, Default: "x"}

	tests := []struct {
		name string
		req  core.ChangeRequest
		want string
	}{
		{
			name: "drop table",
			req:  core.DropTable{Table: "users"},
			want: `DROP TABLE IF EXISTS "users"`,
		},
		{
			name: "add column keeps unique",
			req:  core.AddColumn{Table: productRef, Column: name},
			want: `ALTER TABLE "product" ADD "name" VARCHAR(50) NOT NULL UNIQUE DEFAULT 'x'`,
		},
		{
			name: "modify column drops unique",
			req:  core.ModifyColumn{Table: productRef, Column: name},
			want: `ALTER TABLE "product" MODIFY COLUMN "name" VARCHAR(50) NOT NULL DEFAULT 'x'`,
		},
		{
			name: "drop column",
			req:  core.DropColumn{Table: productRef, Column: "name"},
			want: `ALTER TABLE "product" DROP COLUMN "name"`,
		},
		{
			name: "rename column",
			req:  core.RenameColumn{Table: productRef, Old: "title", New: "name"},
			want: `ALTER TABLE "product" RENAME COLUMN "title" TO "name"`,
		},
		{
			name: "change column",
			req:  core.ChangeColumn{Table: productRef, Old: "title", New: "name", NewType: "VARCHAR(10)"},
			want: `ALTER TABLE "product" CHANGE title name VARCHAR(10)`,
		},
		{
			name: "add unique index",
			req:  core.AddIndex{Index: core.Index{Table: productRef, Fields: []string{"name", "sku"}, Unique: true}},
			want: `ALTER TABLE "product" ADD UNIQUE INDEX "uid_product_name_sku" ("name", "sku")`,
		},
		{
			name: "add index",
			req:  core.AddIndex{Index: core.Index{Table: productRef, Fields: []string{"name"}}},
			want: `ALTER TABLE "product" ADD INDEX "idx_product_name" ("name")`,
		},
		{
			name: "drop index",
			req:  core.DropIndex{Index: core.Index{Table: productRef, Fields: []string{"name"}}},
			want: `ALTER TABLE "product" DROP INDEX "idx_product_name"`,
		},
		{
			name: "drop index by name",
			req:  core.DropIndexByName{Table: productRef, Name: "legacy_idx"},
			want: `ALTER TABLE "product" DROP INDEX "legacy_idx"`,
		},
		{
			name: "add foreign key",
			req: core.AddForeignKey{ForeignKey: core.ForeignKey{
				Table: core.TableRef{Name: "order_items"}, Column: "product_id", RefTable: productRef, OnDelete: "set null",
			}},
			want: `ALTER TABLE "order_items" ADD CONSTRAINT "fk_order_items_product" FOREIGN KEY ("product_id") REFERENCES "product" ("id") ON DELETE SET NULL`,
		},
		{
			name: "drop foreign key",
			req: core.DropForeignKey{ForeignKey: core.ForeignKey{
				Table: core.TableRef{Name: "order_items"}, Column: "product_id", RefTable: productRef,
			}},
			want: `ALTER TABLE "order_items" DROP FOREIGN KEY "fk_order_items_product"`,
		},
		{
			name: "drop m2m table",
			req:  core.DropM2MTable{Table: "product_category"},
			want: `DROP TABLE IF EXISTS "product_category"`,
		},
		{
			name: "rename table",
			req:  core.RenameTable{Old: "product", New: "products"},
			want: `ALTER TABLE "product" RENAME TO "products"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Generate(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateM2MTable(t *testing.T) {
	g := newTestGenerator()
	rel := &core.M2MRelation{
		Through:       "product_category",
		Name:          "categories",
		BackwardKey:   "product_id",
		ForwardKey:    "category_id",
		BackwardTable: productRef,
		ForwardTable:  categoryRef,
		OnDelete:      core.RefActionCascade,
	}

	got, err := g.CreateM2MTable(rel)
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE \"product_category\" (\n"+
		"    \"product_id\" INT NOT NULL REFERENCES \"product\" (\"id\") ON DELETE CASCADE,\n"+
		"    \"category_id\" INT NOT NULL REFERENCES \"category\" (\"id\") ON DELETE CASCADE\n"+
		")", got)
}

func TestCreateM2MTableBackwardAlwaysCascades(t *testing.T) {
	g := newTestGenerator()
	rel := &core.M2MRelation{
		Through:       "product_category",
		BackwardKey:   "product_id",
		ForwardKey:    "category_id",
		BackwardTable: productRef,
		ForwardTable:  categoryRef,
		ForwardTypes:  core.TypeMap{"": "BIGINT"},
		OnDelete:      core.RefActionSetNull,
	}

	got, err := g.CreateM2MTable(rel)
	require.NoError(t, err)
	assert.Contains(t, got, `"product_id" INT NOT NULL REFERENCES "product" ("id") ON DELETE CASCADE,`)
	assert.Contains(t, got, `"category_id" BIGINT NOT NULL REFERENCES "category" ("id") ON DELETE SET NULL`)
}

func TestCreateM2MTableExtraAndComment(t *testing.T) {
	spec := testSpec()
	spec.TableExtra = func(string) string { return " ENGINE=X" }
	spec.TableComment = func(_, comment string) string { return " COMMENT=" + QuoteANSIString(comment) }
	g := NewGenerator(spec, stubNames{})

	rel := &core.M2MRelation{
		Through: "t", BackwardKey: "a_id", ForwardKey: "b_id",
		BackwardTable: productRef, ForwardTable: categoryRef,
	}
	got, err := g.CreateM2MTable(rel)
	require.NoError(t, err)
	assert.Contains(t, got, "\n) ENGINE=X")
	assert.NotContains(t, got, "COMMENT")

	rel.Description = "links"
	got, err = g.CreateM2MTable(rel)
	require.NoError(t, err)
	assert.Contains(t, got, ") ENGINE=X COMMENT='links'")
}

func TestCreateM2MTableRejectsMissingThrough(t *testing.T) {
	g := newTestGenerator()

	_, err := g.CreateM2MTable(&core.M2MRelation{Name: "tags"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = g.CreateM2MTable(nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestAlterColumnDefault(t *testing.T) {
	g := newTestGenerator()

	got, err := g.AlterColumnDefault(productRef, &core.Column{Name: "price", Types: core.TypeMap{"": "INT"}, Default: 10})
	require.NoError(t, err)
	assert.Equal(t, `ALTER TABLE "product" ALTER COLUMN "price" SET DEFAULT 10`, got)

	got, err = g.AlterColumnDefault(productRef, &core.Column{Name: "price"})
	require.NoError(t, err)
	assert.Equal(t, `ALTER TABLE "product" ALTER COLUMN "price" DROP DEFAULT`, got)

	got, err = g.AlterColumnDefault(productRef, &core.Column{Name: "meta", Kind: core.KindJSON, Default: "{}"})
	require.NoError(t, err)
	assert.Equal(t, `ALTER TABLE "product" ALTER COLUMN "meta" DROP DEFAULT`, got)
}

func TestNullabilityAndCommentDegradeToModify(t *testing.T) {
	g := newTestGenerator()
	c := &core.Column{Name: "name", Types: core.TypeMap{"": "TEXT"}, Nullable: true, Unique: true}

	modify, err := g.ModifyColumn(productRef, c, false)
	require.NoError(t, err)

	null, err := g.AlterColumnNullability(productRef, c)
	require.NoError(t, err)
	assert.Equal(t, modify, null)
	assert.Equal(t, `ALTER TABLE "product" MODIFY COLUMN "name" TEXT`, null)

	comment, err := g.SetColumnComment(productRef, c)
	require.NoError(t, err)
	assert.Equal(t, modify, comment)
}

func TestDedicatedNullabilityAndCommentTemplates(t *testing.T) {
	spec := testSpec()
	spec.Templates = BaseTemplates()
	spec.Templates[core.OpAlterColumnNullability] = "ALTER TABLE {table} ALTER COLUMN {column} {nullability}"
	spec.Templates[core.OpSetColumnComment] = "COMMENT ON COLUMN {table}.{column} IS {comment}"
	g := NewGenerator(spec, stubNames{})

	got, err := g.AlterColumnNullability(productRef, &core.Column{Name: "name"})
	require.NoError(t, err)
	assert.Equal(t, `ALTER TABLE "product" ALTER COLUMN "name" SET NOT NULL`, got)

	got, err = g.AlterColumnNullability(productRef, &core.Column{Name: "name", Nullable: true})
	require.NoError(t, err)
	assert.Equal(t, `ALTER TABLE "product" ALTER COLUMN "name" DROP NOT NULL`, got)

	got, err = g.SetColumnComment(productRef, &core.Column{Name: "name", Description: "it's"})
	require.NoError(t, err)
	assert.Equal(t, `COMMENT ON COLUMN "product"."name" IS 'it''s'`, got)

	got, err = g.SetColumnComment(productRef, &core.Column{Name: "name"})
	require.NoError(t, err)
	assert.Equal(t, `COMMENT ON COLUMN "product"."name" IS NULL`, got)
}

func TestUnsupportedOperations(t *testing.T) {
	g := newTestGenerator(core.OpModifyColumn, core.OpAlterColumnDefault)
	c := &core.Column{Name: "name", Types: core.TypeMap{"": "TEXT"}}

	_, err := g.ModifyColumn(productRef, c, false)
	var unsupported *UnsupportedOperationError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, core.OpModifyColumn, unsupported.Operation)
	assert.Equal(t, testDialect, unsupported.Dialect)

	_, err = g.AlterColumnDefault(productRef, c)
	assert.ErrorIs(t, err, ErrUnsupportedOperation)

	// Degrading to an unsupported modify is unsupported as well.
	_, err = g.AlterColumnNullability(productRef, c)
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, core.OpModifyColumn, unsupported.Operation)

	assert.False(t, g.Supports(core.OpModifyColumn))
	assert.True(t, g.Supports(core.OpAddColumn))
}

func TestMissingTemplateIsUnsupported(t *testing.T) {
	spec := testSpec()
	spec.Templates = BaseTemplates()
	delete(spec.Templates, core.OpRenameTable)
	g := NewGenerator(spec, stubNames{})

	_, err := g.RenameTable("a", "b")
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestGenerateRejectsInvalidRequests(t *testing.T) {
	g := newTestGenerator()

	_, err := g.Generate(nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = g.Generate(core.AddColumn{Table: productRef})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = g.Generate(core.AddIndex{Index: core.Index{Table: productRef}})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = g.Generate(core.CreateTable{})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestColumnDefinition(t *testing.T) {
	spec := testSpec()
	spec.ColumnComment = func(_, _, comment string) string { return "/* " + comment + " */" }
	g := NewGenerator(spec, stubNames{})

	tests := []struct {
		name   string
		column *core.Column
		pk     bool
		want   string
	}{
		{
			name:   "primary key with auto increment",
			column: &core.Column{Name: "id", Types: core.TypeMap{"": "INTEGER"}, AutoIncrement: true},
			pk:     true,
			want:   `"id" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT`,
		},
		{
			name:   "auto increment ignored without primary key",
			column: &core.Column{Name: "seq", Types: core.TypeMap{"": "INTEGER"}, AutoIncrement: true},
			want:   `"seq" INTEGER NOT NULL`,
		},
		{
			name:   "storage name and dialect type",
			column: &core.Column{Name: "owner", DBColumn: "owner_id", Types: core.TypeMap{"": "INT", string(testDialect): "BIGINT"}, Nullable: true},
			want:   `"owner_id" BIGINT`,
		},
		{
			name:   "json default is deferred",
			column: &core.Column{Name: "meta", Types: core.TypeMap{"": "JSON"}, Kind: core.KindJSON, Default: "{}"},
			want:   `"meta" JSON NOT NULL`,
		},
		{
			name:   "auto timestamp",
			column: &core.Column{Name: "created_at", Types: core.TypeMap{"": "TIMESTAMP"}, AutoNowAdd: true},
			want:   `"created_at" TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP`,
		},
		{
			name:   "comment",
			column: &core.Column{Name: "sku", Types: core.TypeMap{"": "TEXT"}, Nullable: true, Description: "stock unit"},
			want:   `"sku" TEXT /* stock unit */`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.columnDefinition("product", tt.column, tt.pk, false))
		})
	}
}

func TestCreateTableBuiltin(t *testing.T) {
	g := newTestGenerator()
	table := &core.Table{
		Ref: core.TableRef{Name: "order_items", PKColumn: "id"},
		Columns: []*core.Column{
			{Name: "id", Types: core.TypeMap{"": "INTEGER"}, AutoIncrement: true},
			{Name: "product_id", Types: core.TypeMap{"": "INT"}},
			nil,
			{Name: "note", Types: core.TypeMap{"": "TEXT"}, Nullable: true},
		},
		ForeignKeys: []*core.ForeignKey{
			{Table: core.TableRef{Name: "order_items"}, Column: "product_id", RefTable: productRef},
		},
	}

	got, err := g.Generate(core.CreateTable{Table: table})
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS \"order_items\" (\n"+
		"    \"id\" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,\n"+
		"    \"product_id\" INT NOT NULL,\n"+
		"    \"note\" TEXT,\n"+
		"    CONSTRAINT \"fk_order_items_product\" FOREIGN KEY (\"product_id\") REFERENCES \"product\" (\"id\") ON DELETE CASCADE\n"+
		")", got)
}

func TestCreateTableRequiresColumns(t *testing.T) {
	g := newTestGenerator()

	_, err := g.CreateTable(&core.Table{Ref: core.TableRef{Name: "empty"}})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = g.CreateTable(&core.Table{Columns: []*core.Column{{Name: "id"}}})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestWithSchemaGenerator(t *testing.T) {
	g := newTestGenerator()
	custom := g.WithSchemaGenerator(SchemaGeneratorFunc(func(t *core.Table) (string, error) {
		return "CREATE TABLE " + t.Ref.StorageName() + " (id INT);", nil
	}))

	got, err := custom.CreateTable(&core.Table{Ref: core.TableRef{Name: "x"}})
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE x (id INT)", got)

	failing := g.WithSchemaGenerator(SchemaGeneratorFunc(func(*core.Table) (string, error) {
		return "", errors.New("boom")
	}))
	_, err = failing.CreateTable(&core.Table{Ref: core.TableRef{Name: "x"}})
	assert.EqualError(t, err, "create table x: boom")

	// The original generator keeps the built-in routine.
	_, err = g.CreateTable(&core.Table{Ref: core.TableRef{Name: "x"}, Columns: []*core.Column{{Name: "id"}}})
	assert.NoError(t, err)
}

func TestGenerateCoversEveryOperation(t *testing.T) {
	g := newTestGenerator()
	col := &core.Column{Name: "c", Types: core.TypeMap{"": "INT"}}
	fk := core.ForeignKey{Table: categoryRef, Column: "parent_id", RefTable: categoryRef}
	idx := core.Index{Table: productRef, Fields: []string{"c"}}

	reqs := []core.ChangeRequest{
		core.CreateTable{Table: &core.Table{Ref: productRef, Columns: []*core.Column{col}}},
		core.DropTable{Table: "product"},
		core.AddColumn{Table: productRef, Column: col},
		core.DropColumn{Table: productRef, Column: "c"},
		core.ModifyColumn{Table: productRef, Column: col},
		core.RenameColumn{Table: productRef, Old: "c", New: "d"},
		core.ChangeColumn{Table: productRef, Old: "c", New: "d", NewType: "INT"},
		core.AddIndex{Index: idx},
		core.DropIndex{Index: idx},
		core.DropIndexByName{Table: productRef, Name: "i"},
		core.AddForeignKey{ForeignKey: fk},
		core.DropForeignKey{ForeignKey: fk},
		core.CreateM2MTable{Relation: &core.M2MRelation{Through: "t", BackwardKey: "a", ForwardKey: "b", BackwardTable: productRef, ForwardTable: categoryRef}},
		core.DropM2MTable{Table: "t"},
		core.AlterColumnDefault{Table: productRef, Column: col},
		core.AlterColumnNullability{Table: productRef, Column: col},
		core.SetColumnComment{Table: productRef, Column: col},
		core.RenameTable{Old: "a", New: "b"},
	}
	require.Len(t, reqs, len(core.Operations()))

	for _, req := range reqs {
		t.Run(req.Op().String(), func(t *testing.T) {
			sql, err := g.Generate(req)
			require.NoError(t, err)
			assert.NotEmpty(t, sql)
			assert.NotContains(t, sql, "{")
		})
	}
}
