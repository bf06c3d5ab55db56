// Package mysqlstore implements the identity repositories (users, shop
// owners and the session registry) on MySQL via database/sql.
package mysqlstore

import (
	"database/sql"

	"github.com/Subham7008/Quick-Serve/internal/repository"
)

// Register wires the identity repositories into st.
func Register(st *repository.Stores, db *sql.DB) {
	st.Users = NewUserRepo(db)
	st.ShopOwners = NewShopOwnerRepo(db)
	st.Sessions = NewSessionRepo(db)
}
