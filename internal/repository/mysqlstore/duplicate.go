package mysqlstore

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/Subham7008/Quick-Serve/internal/repository"
)

const errDupEntry = 1062

// translateDuplicate converts a MySQL duplicate-entry error into a
// repository.DuplicateError naming the public field behind the violated
// key.  Other errors pass through unchanged.
func translateDuplicate(err error, keys map[string]string) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != errDupEntry {
		return err
	}
	// Duplicate entry 'x' for key 'users.uq_users_email'
	for key, field := range keys {
		if strings.Contains(me.Message, key) {
			return &repository.DuplicateError{Field: field}
		}
	}
	return &repository.DuplicateError{Field: "unknown"}
}
