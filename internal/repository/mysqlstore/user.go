package mysqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Subham7008/Quick-Serve/internal/model"
	"github.com/Subham7008/Quick-Serve/internal/repository"
)

const userColumns = "id,user_name,first_name,last_name,business_name,email,phone_number,password_hash," +
	"business_address,business_phone,business_email,role,created_at,updated_at"

// unique key name -> public field name
var userKeys = map[string]string{
	"uq_users_user_name": "username",
	"uq_users_email":     "email",
	"uq_users_phone":     "phone_number",
}

// UserRepo persists staff users in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts u.  u.ID must already be set.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)",
		u.ID, u.UserName, u.FirstName, u.LastName, u.BusinessName, u.Email, u.PhoneNumber, u.PasswordHash,
		nullString(u.BusinessAddress), nullString(u.BusinessPhone), nullString(u.BusinessEmail), u.Role,
		u.CreatedAt, u.UpdatedAt)
	return translateDuplicate(err, userKeys)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.getOne(ctx, "id=?", id)
}

// GetByUserName fetches a user by exact user_name.
func (r *UserRepo) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	return r.getOne(ctx, "user_name=?", userName)
}

func (r *UserRepo) FindConflict(ctx context.Context, userName, email, phone string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var gotName, gotEmail, gotPhone string
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_name,email,phone_number FROM users WHERE user_name=? OR email=? OR phone_number=? LIMIT 1",
		userName, email, phone).Scan(&gotName, &gotEmail, &gotPhone)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	switch {
	case gotName == userName:
		return "username", nil
	case gotEmail == email:
		return "email", nil
	default:
		return "phone_number", nil
	}
}

// UpdateProfile applies the supplied fields and returns the updated row.
func (r *UserRepo) UpdateProfile(ctx context.Context, id string, upd model.UserProfileUpdate) (model.User, error) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+"=?")
			args = append(args, *v)
		}
	}
	add("first_name", upd.FirstName)
	add("last_name", upd.LastName)
	add("business_name", upd.BusinessName)
	add("phone_number", upd.PhoneNumber)
	add("business_address", upd.BusinessAddress)
	add("business_phone", upd.BusinessPhone)
	add("business_email", upd.BusinessEmail)
	if len(sets) > 0 {
		sets = append(sets, "updated_at=?")
		args = append(args, time.Now().UTC(), id)
		_, err := r.DB.ExecContext(ctx, "UPDATE users SET "+strings.Join(sets, ",")+" WHERE id=?", args...)
		if err != nil {
			return model.User{}, translateDuplicate(err, userKeys)
		}
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg any) (model.User, error) {
	var (
		u                         model.User
		addr, phone, businessMail sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+where+" LIMIT 1", arg).
		Scan(&u.ID, &u.UserName, &u.FirstName, &u.LastName, &u.BusinessName, &u.Email, &u.PhoneNumber,
			&u.PasswordHash, &addr, &phone, &businessMail, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, repository.ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	u.BusinessAddress, u.BusinessPhone, u.BusinessEmail = addr.String, phone.String, businessMail.String
	return u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
