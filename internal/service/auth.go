package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Subham7008/Quick-Serve/internal/apperr"
	"github.com/Subham7008/Quick-Serve/internal/model"
	"github.com/Subham7008/Quick-Serve/internal/queue"
	"github.com/Subham7008/Quick-Serve/internal/repository"
	"github.com/Subham7008/Quick-Serve/internal/utils"
)

// msgInvalidCredentials is returned for every failed password login,
// whichever half of the pair was wrong.
const msgInvalidCredentials = "invalid username or password"

type AuthConfig struct {
	JWTSecret         string
	UserTokenTTL      time.Duration
	ShopOwnerTokenTTL time.Duration
	OTPTTL            time.Duration // 0 disables expiry
	BcryptCost        int
}

// AuthService implements both credential flows and owns the session
// registry every bearer token is checked against.
type AuthService struct {
	users     repository.UserRepository
	owners    repository.ShopOwnerRepository
	sessions  repository.SessionRepository
	publisher queue.Publisher
	cfg       AuthConfig
	logger    *slog.Logger
	now       func() time.Time
}

func NewAuthService(st repository.Stores, pub queue.Publisher, cfg AuthConfig, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:     st.Users,
		owners:    st.ShopOwners,
		sessions:  st.Sessions,
		publisher: pub,
		cfg:       cfg,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type SignupInput struct {
	UserName     string `json:"user_name"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	BusinessName string `json:"business_name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	PhoneNumber  string `json:"phone_number"`
	Role         string `json:"role"`
}

type LoginInput struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

// AuthResult is a freshly issued token together with its owner.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      model.User
}

func (in *SignupInput) normalize() {
	in.UserName = strings.TrimSpace(in.UserName)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.BusinessName = strings.TrimSpace(in.BusinessName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Role = strings.TrimSpace(in.Role)
	if in.Role == "" {
		in.Role = model.RoleCustomer
	}
}

func (in SignupInput) validate() error {
	var c apperr.Collector
	switch {
	case in.UserName == "":
		c.Add("user_name", "user_name is required")
	case !minLen(in.UserName, 3):
		c.Add("user_name", "user_name must be at least 3 characters long")
	case !userNameRe.MatchString(in.UserName):
		c.Add("user_name", "user_name can only contain letters, numbers and underscores")
	}
	checkPersonName(&c, "first_name", in.FirstName)
	checkPersonName(&c, "last_name", in.LastName)
	c.Check(minLen(in.BusinessName, 2), "business_name", "business_name must be at least 2 characters long")
	checkEmail(&c, "email", in.Email)
	checkPhone(&c, "phone_number", in.PhoneNumber)
	for _, p := range utils.PasswordProblems(in.Password) {
		c.Add("password", "password "+p)
	}
	c.Check(oneOf(in.Role, model.RoleAdmin, model.RoleCustomer), "role", "role must be admin or customer")
	return c.Err("validation failed")
}

// Signup registers a staff user and signs them in.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (AuthResult, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return AuthResult{}, err
	}

	field, err := s.users.FindConflict(ctx, in.UserName, in.Email, in.PhoneNumber)
	if err != nil {
		return AuthResult{}, internal(s.logger, "signup: conflict lookup", err)
	}
	if field != "" {
		return AuthResult{}, apperr.Conflict(field, field+" already exists")
	}

	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return AuthResult{}, internal(s.logger, "signup: hash password", err)
	}
	u := model.User{
		ID:           uuid.NewString(),
		UserName:     in.UserName,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		BusinessName: in.BusinessName,
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: hash,
		Role:         in.Role,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		// Two signups can pass FindConflict together; the unique index decides.
		if de, ok := repository.IsDuplicate(err); ok {
			return AuthResult{}, apperr.Conflict(de.Field, de.Field+" already exists")
		}
		return AuthResult{}, internal(s.logger, "signup: create user", err)
	}

	tok, err := s.issue(ctx, userSubject(u), s.cfg.UserTokenTTL)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: tok.Token, ExpiresAt: tok.Exp, User: u}, nil
}

// Login checks a user_name/password pair.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	u, err := s.users.GetByUserName(ctx, in.UserName)
	if err != nil {
		if isNotFound(err) {
			s.logger.Debug("login: unknown user", "user_name", in.UserName)
			return AuthResult{}, apperr.Unauthorized(msgInvalidCredentials)
		}
		return AuthResult{}, internal(s.logger, "login: lookup", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		s.logger.Debug("login: password mismatch", "user_id", u.ID)
		return AuthResult{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	tok, err := s.issue(ctx, userSubject(u), s.cfg.UserTokenTTL)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: tok.Token, ExpiresAt: tok.Exp, User: u}, nil
}

func (s *AuthService) GetProfile(ctx context.Context, id Identity) (model.User, error) {
	if id.Kind != model.SubjectUser {
		return model.User{}, apperr.Forbidden("profile is only available to users")
	}
	u, err := s.users.GetByID(ctx, id.ID)
	if err != nil {
		if isNotFound(err) {
			return model.User{}, apperr.NotFound("user not found")
		}
		return model.User{}, internal(s.logger, "profile: lookup", err)
	}
	return u, nil
}

// UpdateProfile applies the supplied fields after checking all of them.
func (s *AuthService) UpdateProfile(ctx context.Context, id Identity, upd model.UserProfileUpdate) (model.User, error) {
	if id.Kind != model.SubjectUser {
		return model.User{}, apperr.Forbidden("profile is only available to users")
	}
	if upd.Empty() {
		return model.User{}, apperr.Validation("at least one field must be provided for update")
	}

	var c apperr.Collector
	trim := func(p *string) {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	trim(upd.FirstName)
	trim(upd.LastName)
	trim(upd.BusinessName)
	trim(upd.PhoneNumber)
	trim(upd.BusinessAddress)
	trim(upd.BusinessPhone)
	trim(upd.BusinessEmail)
	if upd.FirstName != nil {
		checkPersonName(&c, "first_name", *upd.FirstName)
	}
	if upd.LastName != nil {
		checkPersonName(&c, "last_name", *upd.LastName)
	}
	if upd.BusinessName != nil {
		c.Check(minLen(*upd.BusinessName, 2), "business_name", "business_name must be at least 2 characters long")
	}
	if upd.PhoneNumber != nil {
		checkPhone(&c, "phone_number", *upd.PhoneNumber)
	}
	if upd.BusinessPhone != nil {
		checkPhone(&c, "business_phone", *upd.BusinessPhone)
	}
	if upd.BusinessEmail != nil {
		lower := strings.ToLower(*upd.BusinessEmail)
		upd.BusinessEmail = &lower
		checkEmail(&c, "business_email", lower)
	}
	if upd.BusinessAddress != nil {
		c.Check(*upd.BusinessAddress != "", "business_address", "business_address cannot be empty")
	}
	if err := c.Err("validation failed"); err != nil {
		return model.User{}, err
	}

	u, err := s.users.UpdateProfile(ctx, id.ID, upd)
	if err != nil {
		if isNotFound(err) {
			return model.User{}, apperr.NotFound("user not found")
		}
		if de, ok := repository.IsDuplicate(err); ok {
			return model.User{}, apperr.Conflict(de.Field, de.Field+" already exists")
		}
		return model.User{}, internal(s.logger, "profile: update", err)
	}
	return u, nil
}

type OwnerDetails struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number"`
	Password      string `json:"password"`
}

type ShopDetailsInput struct {
	ShopName         string   `json:"shop_name"`
	Address          string   `json:"address"`
	ShopOpeningHours string   `json:"shop_opening_hours"`
	ServiceOffered   []string `json:"service_offered"`
}

type RegisterShopOwnerInput struct {
	OwnerDetails OwnerDetails     `json:"ownerDetails"`
	ShopDetails  ShopDetailsInput `json:"shopDetails"`
}

// RegisterShopOwner creates a shop owner.  Unlike staff signup there is no
// password strength policy on this path.
func (s *AuthService) RegisterShopOwner(ctx context.Context, in RegisterShopOwnerInput) (model.ShopOwner, error) {
	o, sh := in.OwnerDetails, in.ShopDetails
	o.Name = strings.TrimSpace(o.Name)
	o.Email = strings.ToLower(strings.TrimSpace(o.Email))
	o.ContactNumber = strings.TrimSpace(o.ContactNumber)
	sh.ShopName = strings.TrimSpace(sh.ShopName)
	sh.Address = strings.TrimSpace(sh.Address)

	var c apperr.Collector
	checkRequired(&c,
		[2]string{"ownerDetails.name", o.Name},
		[2]string{"ownerDetails.email", o.Email},
		[2]string{"ownerDetails.contact_number", o.ContactNumber},
		[2]string{"ownerDetails.password", o.Password},
		[2]string{"shopDetails.shop_name", sh.ShopName},
		[2]string{"shopDetails.address", sh.Address},
	)
	if o.Email != "" {
		checkEmail(&c, "ownerDetails.email", o.Email)
	}
	if err := c.Err("validation failed"); err != nil {
		return model.ShopOwner{}, err
	}

	field, err := s.owners.FindConflict(ctx, o.Email, o.ContactNumber)
	if err != nil {
		return model.ShopOwner{}, internal(s.logger, "register shop owner: conflict lookup", err)
	}
	if field != "" {
		return model.ShopOwner{}, apperr.Conflict(field, "shop owner already exists with this "+field)
	}

	hash, err := utils.HashPassword(o.Password, s.cfg.BcryptCost)
	if err != nil {
		return model.ShopOwner{}, internal(s.logger, "register shop owner: hash password", err)
	}
	services := sh.ServiceOffered
	if services == nil {
		services = []string{}
	}
	offered, err := json.Marshal(services)
	if err != nil {
		return model.ShopOwner{}, internal(s.logger, "register shop owner: encode services", err)
	}
	owner := model.ShopOwner{
		ID:               uuid.NewString(),
		Name:             o.Name,
		Email:            o.Email,
		ContactNumber:    o.ContactNumber,
		PasswordHash:     hash,
		ShopName:         sh.ShopName,
		Address:          sh.Address,
		ShopOpeningHours: strings.TrimSpace(sh.ShopOpeningHours),
		ServiceOffered:   string(offered),
	}
	if err := s.owners.Create(ctx, &owner); err != nil {
		if de, ok := repository.IsDuplicate(err); ok {
			return model.ShopOwner{}, apperr.Conflict(de.Field, "shop owner already exists with this "+de.Field)
		}
		return model.ShopOwner{}, internal(s.logger, "register shop owner: create", err)
	}
	return owner, nil
}

// SendOTP generates a login code for the owner of contact and hands it to
// the delivery queue.
func (s *AuthService) SendOTP(ctx context.Context, contact string) error {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return apperr.Validation("validation failed", apperr.FieldError{Field: "contact_number", Message: "contact_number is required"})
	}
	owner, err := s.owners.GetByContactNumber(ctx, contact)
	if err != nil {
		if isNotFound(err) {
			return apperr.NotFound("shop owner not found with provided contact number")
		}
		return internal(s.logger, "send otp: lookup", err)
	}

	code, err := utils.NewOTP()
	if err != nil {
		return internal(s.logger, "send otp: generate", err)
	}
	now := s.now()
	var expires *time.Time
	if s.cfg.OTPTTL > 0 {
		t := now.Add(s.cfg.OTPTTL)
		expires = &t
	}
	if err := s.owners.SetOTP(ctx, owner.ID, code, expires); err != nil {
		return internal(s.logger, "send otp: store", err)
	}

	publish(ctx, s.publisher, s.logger, queue.QueueOTPIssued, queue.OTPIssuedEvent{
		ContactNumber: owner.ContactNumber,
		OTP:           code,
		ExpiresAt:     expires,
		IssuedAt:      now,
	})
	s.logger.Info("otp issued", "shop_owner_id", owner.ID)
	return nil
}

// ShopOwnerLogin is the result of a successful OTP verification.
type ShopOwnerLogin struct {
	Token     string
	ExpiresAt time.Time
	Owner     model.ShopOwner
}

// VerifyOTP exchanges a matching, unexpired code for a token.  Every older
// session of the owner is revoked so at most one stays live.
func (s *AuthService) VerifyOTP(ctx context.Context, contact, otp string) (ShopOwnerLogin, error) {
	owner, err := s.owners.GetByContactNumber(ctx, strings.TrimSpace(contact))
	if err != nil {
		if isNotFound(err) {
			return ShopOwnerLogin{}, apperr.NotFound("shop owner not found")
		}
		return ShopOwnerLogin{}, internal(s.logger, "verify otp: lookup", err)
	}
	if owner.OTP == "" || owner.OTP != otp {
		return ShopOwnerLogin{}, apperr.InvalidOTP()
	}
	if owner.OTPExpiresAt != nil && !s.now().Before(*owner.OTPExpiresAt) {
		return ShopOwnerLogin{}, apperr.InvalidOTP()
	}

	if err := s.sessions.RevokeAllForSubject(ctx, model.SubjectShopOwner, owner.ID); err != nil {
		return ShopOwnerLogin{}, internal(s.logger, "verify otp: revoke sessions", err)
	}
	tok, err := s.issue(ctx, utils.TokenSubject{
		ID:         owner.ID,
		Identifier: owner.ContactNumber,
		Kind:       model.SubjectShopOwner,
	}, s.cfg.ShopOwnerTokenTTL)
	if err != nil {
		return ShopOwnerLogin{}, err
	}
	if err := s.owners.CompleteOTPLogin(ctx, owner.ID, tok.Token); err != nil {
		return ShopOwnerLogin{}, internal(s.logger, "verify otp: complete login", err)
	}
	owner.OTP = ""
	owner.OTPExpiresAt = nil
	owner.OTPVerified = true
	owner.Token = tok.Token
	return ShopOwnerLogin{Token: tok.Token, ExpiresAt: tok.Exp, Owner: owner}, nil
}

// Authenticate resolves a raw bearer token to an Identity.  All failures
// collapse to one Unauthorized error; the reason is only logged.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (Identity, error) {
	fail := apperr.Unauthorized("unauthorized")

	claims, err := utils.ParseAccessToken(s.cfg.JWTSecret, raw)
	if err != nil {
		s.logger.Debug("authenticate: token rejected", "err", err)
		return Identity{}, fail
	}
	sess, err := s.sessions.Get(ctx, claims.JTI)
	if err != nil {
		if !isNotFound(err) {
			s.logger.Error("authenticate: session lookup", "err", err)
		} else {
			s.logger.Debug("authenticate: unknown session", "jti", claims.JTI)
		}
		return Identity{}, fail
	}
	if !sess.Active(s.now()) || sess.SubjectID != claims.ID || sess.SubjectKind != claims.Kind {
		s.logger.Debug("authenticate: session inactive", "jti", claims.JTI)
		return Identity{}, fail
	}
	return Identity{
		ID:         claims.ID,
		Identifier: claims.Identifier,
		Kind:       claims.Kind,
		Role:       claims.Role,
		SessionID:  claims.JTI,
	}, nil
}

// Logout revokes the session behind the caller's token.
func (s *AuthService) Logout(ctx context.Context, id Identity) error {
	if err := s.sessions.Revoke(ctx, id.SessionID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return internal(s.logger, "logout: revoke", err)
	}
	return nil
}

// ShopOwner returns the owner behind id, for handlers that echo it back.
func (s *AuthService) ShopOwner(ctx context.Context, id string) (model.ShopOwner, error) {
	o, err := s.owners.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return model.ShopOwner{}, apperr.NotFound("shop owner not found")
		}
		return model.ShopOwner{}, internal(s.logger, "shop owner lookup", err)
	}
	return o, nil
}

func userSubject(u model.User) utils.TokenSubject {
	return utils.TokenSubject{ID: u.ID, Identifier: u.UserName, Kind: model.SubjectUser, Role: u.Role}
}

// issue signs a token and records its session.
func (s *AuthService) issue(ctx context.Context, sub utils.TokenSubject, ttl time.Duration) (utils.AccessToken, error) {
	tok, err := utils.NewAccessToken(s.cfg.JWTSecret, sub, ttl)
	if err != nil {
		return utils.AccessToken{}, internal(s.logger, "issue token: sign", err)
	}
	err = s.sessions.Create(ctx, model.Session{
		ID:          tok.JTI,
		SubjectKind: sub.Kind,
		SubjectID:   sub.ID,
		ExpiresAt:   tok.Exp,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return utils.AccessToken{}, internal(s.logger, "issue token: store session", err)
	}
	return tok, nil
}
