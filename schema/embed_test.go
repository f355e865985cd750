package schema_test

import (
	"strings"
	"testing"

	"github.com/ovelind/irclogd/schema"
)

func TestDDLCoversEveryTable(t *testing.T) {
	for _, driver := range []string{"sqlite", "mysql"} {
		ddl, err := schema.DDL(driver)
		if err != nil {
			t.Fatalf("DDL(%q): %v", driver, err)
		}
		for _, table := range schema.Tables {
			if !strings.Contains(ddl, table) {
				t.Errorf("%s DDL does not mention table %q", driver, table)
			}
		}
	}
}

func TestDDLUnknownDriver(t *testing.T) {
	if _, err := schema.DDL("postgres"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
