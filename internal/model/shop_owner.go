package model

import "time"

// ShopOwner mirrors the `shop_owners` table.  Shop owners sign in with a
// one-time code sent to their contact number.  OTP holds the pending code
// (empty once consumed) and Token the most recently issued bearer token;
// the sessions table is what actually decides whether a token is live.
type ShopOwner struct {
    ID               string     `json:"id"`
    Name             string     `json:"name"`
    Email            string     `json:"email"`
    ContactNumber    string     `json:"contact_number"`
    PasswordHash     string     `json:"-"`
    ShopName         string     `json:"shop_name"`
    Address          string     `json:"address"`
    ShopOpeningHours string     `json:"shop_opening_hours,omitempty"`
    ServiceOffered   string     `json:"service_offered,omitempty"` // JSON encoded list
    OTP              string     `json:"-"`
    OTPExpiresAt     *time.Time `json:"-"`
    OTPVerified      bool       `json:"otp_verify"`
    Token            string     `json:"-"`
    CreatedAt        time.Time  `json:"created_at"`
    UpdatedAt        time.Time  `json:"updated_at"`
}
