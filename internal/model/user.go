package model

import "time"

// Roles a staff user may hold.
const (
    RoleAdmin    = "admin"
    RoleCustomer = "customer"
)

// User represents a staff account as stored in the `users` table.  Staff
// users sign in with user_name and password.
//
// Fields:
//  ID              – UUID primary key.
//  UserName        – unique login name.
//  Email           – unique, stored lowercased.
//  PhoneNumber     – unique 10 digit number.
//  PasswordHash    – bcrypt hash, never serialised.
//  Business*       – optional profile data editable via the profile endpoint.
//  Role            – admin or customer.
type User struct {
    ID              string    `json:"id"`
    UserName        string    `json:"user_name"`
    FirstName       string    `json:"first_name"`
    LastName        string    `json:"last_name"`
    BusinessName    string    `json:"business_name"`
    Email           string    `json:"email"`
    PhoneNumber     string    `json:"phone_number"`
    PasswordHash    string    `json:"-"`
    BusinessAddress string    `json:"business_address,omitempty"`
    BusinessPhone   string    `json:"business_phone,omitempty"`
    BusinessEmail   string    `json:"business_email,omitempty"`
    Role            string    `json:"role"`
    CreatedAt       time.Time `json:"created_at"`
    UpdatedAt       time.Time `json:"updated_at"`
}

// UserProfileUpdate carries the optional fields of a profile update.  A nil
// pointer means the field was not supplied.
type UserProfileUpdate struct {
    FirstName       *string `json:"first_name"`
    LastName        *string `json:"last_name"`
    BusinessName    *string `json:"business_name"`
    PhoneNumber     *string `json:"phone_number"`
    BusinessAddress *string `json:"business_address"`
    BusinessPhone   *string `json:"business_phone"`
    BusinessEmail   *string `json:"business_email"`
}

// Empty reports whether no field was supplied.
func (u UserProfileUpdate) Empty() bool {
    return u.FirstName == nil && u.LastName == nil && u.BusinessName == nil &&
        u.PhoneNumber == nil && u.BusinessAddress == nil && u.BusinessPhone == nil &&
        u.BusinessEmail == nil
}
