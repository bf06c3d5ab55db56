package mysqlstore

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Subham7008/Quick-Serve/internal/repository"
)

func TestTranslateDuplicate(t *testing.T) {
	cases := []struct {
		name  string
		msg   string
		field string
	}{
		{"username", "Duplicate entry 'alice1' for key 'users.uq_users_user_name'", "username"},
		{"email", "Duplicate entry 'a@b.co' for key 'users.uq_users_email'", "email"},
		{"phone", "Duplicate entry '9999999999' for key 'users.uq_users_phone'", "phone_number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := translateDuplicate(&mysql.MySQLError{Number: 1062, Message: tc.msg}, userKeys)
			de, ok := repository.IsDuplicate(err)
			require.True(t, ok)
			assert.Equal(t, tc.field, de.Field)
		})
	}
}

func TestTranslateDuplicatePassesOtherErrors(t *testing.T) {
	assert.NoError(t, translateDuplicate(nil, userKeys))

	other := &mysql.MySQLError{Number: 1146, Message: "Table 'x.users' doesn't exist"}
	assert.Same(t, other, translateDuplicate(other, userKeys))

	plain := errors.New("boom")
	assert.Equal(t, plain, translateDuplicate(plain, userKeys))
}

func TestTranslateDuplicateShopOwner(t *testing.T) {
	err := translateDuplicate(&mysql.MySQLError{Number: 1062,
		Message: "Duplicate entry '9876543210' for key 'shop_owners.uq_shop_owners_contact'"}, shopOwnerKeys)
	de, ok := repository.IsDuplicate(err)
	require.True(t, ok)
	assert.Equal(t, "contact_number", de.Field)
}
