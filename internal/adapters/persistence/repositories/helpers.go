package repositories

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a unique-index violation
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}

// withPreload applies the requested associations
func withPreload(db *gorm.DB, preload []string) *gorm.DB {
	for _, assoc := range preload {
		if assoc == "" {
			continue
		}
		db = db.Preload(assoc)
	}
	return db
}

// likePattern wraps a search term for a LIKE condition, escaping wildcards
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(term)) + "%"
}
