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

const shopOwnerColumns = "id,name,email,contact_number,password_hash,shop_name,address,shop_opening_hours," +
	"service_offered,otp,otp_expires_at,otp_verify,token,created_at,updated_at"

var shopOwnerKeys = map[string]string{
	"uq_shop_owners_email":   "email",
	"uq_shop_owners_contact": "contact_number",
}

// ShopOwnerRepo persists shop owners in the 'shop_owners' table.
type ShopOwnerRepo struct{ DB *sql.DB }

func NewShopOwnerRepo(db *sql.DB) *ShopOwnerRepo { return &ShopOwnerRepo{DB: db} }

func (r *ShopOwnerRepo) Create(ctx context.Context, o *model.ShopOwner) error {
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO shop_owners ("+shopOwnerColumns+") VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)",
		o.ID, o.Name, strings.ToLower(strings.TrimSpace(o.Email)), o.ContactNumber, o.PasswordHash, o.ShopName,
		o.Address, nullString(o.ShopOpeningHours), nullString(o.ServiceOffered), nullString(o.OTP),
		o.OTPExpiresAt, o.OTPVerified, nullString(o.Token), o.CreatedAt, o.UpdatedAt)
	return translateDuplicate(err, shopOwnerKeys)
}

func (r *ShopOwnerRepo) GetByID(ctx context.Context, id string) (model.ShopOwner, error) {
	return r.getOne(ctx, "id=?", id)
}

func (r *ShopOwnerRepo) GetByContactNumber(ctx context.Context, contact string) (model.ShopOwner, error) {
	return r.getOne(ctx, "contact_number=?", contact)
}

func (r *ShopOwnerRepo) FindConflict(ctx context.Context, email, contact string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var gotEmail string
	err := r.DB.QueryRowContext(ctx,
		"SELECT email FROM shop_owners WHERE email=? OR contact_number=? LIMIT 1",
		email, contact).Scan(&gotEmail)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if gotEmail == email {
		return "email", nil
	}
	return "contact_number", nil
}

// SetOTP stores a freshly generated code.  A nil expiresAt means the code
// never expires.
func (r *ShopOwnerRepo) SetOTP(ctx context.Context, id, otp string, expiresAt *time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE shop_owners SET otp=?, otp_expires_at=?, updated_at=? WHERE id=?",
		otp, expiresAt, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *ShopOwnerRepo) CompleteOTPLogin(ctx context.Context, id, token string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE shop_owners SET otp=NULL, otp_expires_at=NULL, otp_verify=1, token=?, updated_at=? WHERE id=?",
		token, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *ShopOwnerRepo) getOne(ctx context.Context, where string, arg any) (model.ShopOwner, error) {
	var (
		o                          model.ShopOwner
		hours, offered, otp, token sql.NullString
		otpExpires                 sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+shopOwnerColumns+" FROM shop_owners WHERE "+where+" LIMIT 1", arg).
		Scan(&o.ID, &o.Name, &o.Email, &o.ContactNumber, &o.PasswordHash, &o.ShopName, &o.Address,
			&hours, &offered, &otp, &otpExpires, &o.OTPVerified, &token, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ShopOwner{}, repository.ErrNotFound
	}
	if err != nil {
		return model.ShopOwner{}, err
	}
	o.ShopOpeningHours, o.ServiceOffered, o.OTP, o.Token = hours.String, offered.String, otp.String, token.String
	if otpExpires.Valid {
		t := otpExpires.Time
		o.OTPExpiresAt = &t
	}
	return o, nil
}

// requireRow turns an update that matched nothing into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
