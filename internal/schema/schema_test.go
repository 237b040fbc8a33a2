package schema

import (
	"strings"
	"testing"
)

func TestCreateSQLForwardOrder(t *testing.T) {
	sql := CreateSQL()

	last := -1
	for _, table := range Tables {
		idx := strings.Index(sql, "CREATE TABLE "+table+" (")
		if idx < 0 {
			t.Fatalf("CreateSQL() missing table %s", table)
		}
		if idx < last {
			t.Errorf("table %s created before a table it follows", table)
		}
		last = idx
	}
}

func TestDropSQLReverseOrder(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(DropSQL()), "\n")
	if len(lines) != len(Tables) {
		t.Fatalf("DropSQL() has %d statements, want %d", len(lines), len(Tables))
	}

	for i, line := range lines {
		want := "DROP TABLE IF EXISTS " + Tables[len(Tables)-1-i] + " CASCADE;"
		if line != want {
			t.Errorf("statement %d = %q, want %q", i, line, want)
		}
	}
}

func TestForeignKeysReferenceEarlierTables(t *testing.T) {
	tests := []struct {
		table string
		refs  []string
	}{
		{TableCountry, []string{"REFERENCES Region(RegionID)"}},
		{TableCustomer, []string{"REFERENCES Country(CountryID)"}},
		{TableProduct, []string{"REFERENCES ProductCategory(ProductCategoryID)"}},
		{TableOrderDetail, []string{
			"REFERENCES Customer(CustomerID)",
			"REFERENCES Product(ProductID)",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			ddl := createStatements[tt.table]
			for _, ref := range tt.refs {
				if !strings.Contains(ddl, ref) {
					t.Errorf("%s DDL missing %q", tt.table, ref)
				}
			}
		})
	}
}

func TestDescriptionCoversTables(t *testing.T) {
	for _, table := range Tables {
		if !strings.Contains(Description, "- "+table+" (") {
			t.Errorf("Description does not document %s", table)
		}
	}
}
