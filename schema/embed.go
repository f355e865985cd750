// Package schema embeds the reference DDL for the irclogd tables.
//
// The daemon never creates or alters database structures itself; operators
// apply this DDL manually (or via `irclogd -print-schema`) and the startup
// check only verifies the tables exist.
package schema

import (
	"embed"
	"fmt"
)

//go:embed *.sql
var fs embed.FS

// Tables lists the structures the store expects to find at startup.
var Tables = []string{"nicks", "channels", "prefixes", "log", "excerpt"}

// DDL returns the reference schema for the given driver ("sqlite" or "mysql").
func DDL(driver string) (string, error) {
	b, err := fs.ReadFile(driver + ".sql")
	if err != nil {
		return "", fmt.Errorf("no reference schema for driver %q: %w", driver, err)
	}
	return string(b), nil
}
