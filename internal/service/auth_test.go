package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Subham7008/Quick-Serve/internal/apperr"
	"github.com/Subham7008/Quick-Serve/internal/model"
	"github.com/Subham7008/Quick-Serve/internal/utils"
)

func TestSignupThenLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	in := validSignup("alice1")
	in.Email = "  Alice1@Example.COM "
	res, err := e.auth.Signup(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "alice1@example.com", res.User.Email)
	assert.Equal(t, model.RoleCustomer, res.User.Role)
	assert.NotEqual(t, "Abc12345!", res.User.PasswordHash)

	login, err := e.auth.Login(ctx, LoginInput{UserName: "alice1", Password: "Abc12345!"})
	require.NoError(t, err)

	claims, err := utils.ParseAccessToken(testSecret, login.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.ID)
	assert.Equal(t, "alice1", claims.Identifier)
	assert.Equal(t, model.SubjectUser, claims.Kind)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), login.ExpiresAt, time.Minute)
}

func TestSignupDuplicateUserName(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.auth.Signup(ctx, validSignup("alice1"))
	require.NoError(t, err)

	again := validSignup("alice1")
	again.Email = "other@example.com"
	_, err = e.auth.Signup(ctx, again)
	ae := requireKind(t, err, apperr.KindConflict)
	assert.Equal(t, "username", ae.Field)
}

func TestSignupDuplicateEmailAndPhone(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	first := validSignup("alice1")
	_, err := e.auth.Signup(ctx, first)
	require.NoError(t, err)

	byEmail := validSignup("bob22")
	byEmail.Email = "ALICE1@example.com"
	_, err = e.auth.Signup(ctx, byEmail)
	assert.Equal(t, "email", requireKind(t, err, apperr.KindConflict).Field)

	byPhone := validSignup("carol3")
	byPhone.PhoneNumber = first.PhoneNumber
	_, err = e.auth.Signup(ctx, byPhone)
	assert.Equal(t, "phone_number", requireKind(t, err, apperr.KindConflict).Field)
}

func TestSignupCollectsEveryViolation(t *testing.T) {
	e := newEnv(t)
	_, err := e.auth.Signup(context.Background(), SignupInput{
		UserName:    "a!",
		FirstName:   "J",
		LastName:    "D0e",
		Email:       "nope",
		Password:    "short",
		PhoneNumber: "123",
		Role:        "root",
	})
	ae := requireKind(t, err, apperr.KindValidation)
	for _, f := range []string{"user_name", "first_name", "last_name", "business_name", "email", "phone_number", "password", "role"} {
		assert.True(t, hasField(ae, f), "missing violation for %s", f)
	}

	var pw int
	for _, f := range ae.Fields {
		if f.Field == "password" {
			pw++
		}
	}
	// short, no uppercase, no digit, no symbol
	assert.Equal(t, 4, pw)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.auth.Signup(ctx, validSignup("alice1"))
	require.NoError(t, err)

	_, errUser := e.auth.Login(ctx, LoginInput{UserName: "nobody", Password: "Abc12345!"})
	_, errPass := e.auth.Login(ctx, LoginInput{UserName: "alice1", Password: "wrong"})
	a := requireKind(t, errUser, apperr.KindUnauthorized)
	b := requireKind(t, errPass, apperr.KindUnauthorized)
	assert.Equal(t, a.Message, b.Message)
}

func TestAuthenticateAndLogout(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	res, err := e.auth.Signup(ctx, validSignup("alice1"))
	require.NoError(t, err)

	id, err := e.auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id.ID)
	assert.Equal(t, model.SubjectUser, id.Kind)
	assert.NotEmpty(t, id.SessionID)

	require.NoError(t, e.auth.Logout(ctx, id))
	_, err = e.auth.Authenticate(ctx, res.Token)
	requireKind(t, err, apperr.KindUnauthorized)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.auth.Authenticate(ctx, "garbage")
	requireKind(t, err, apperr.KindUnauthorized)

	// correctly signed but never registered as a session
	tok, err := utils.NewAccessToken(testSecret, utils.TokenSubject{ID: "x", Kind: model.SubjectUser}, time.Hour)
	require.NoError(t, err)
	_, err = e.auth.Authenticate(ctx, tok.Token)
	requireKind(t, err, apperr.KindUnauthorized)

	other, err := utils.NewAccessToken("other-secret", utils.TokenSubject{ID: "x", Kind: model.SubjectUser}, time.Hour)
	require.NoError(t, err)
	_, err = e.auth.Authenticate(ctx, other.Token)
	requireKind(t, err, apperr.KindUnauthorized)
}

func TestProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.signupUser(t, "alice1")

	u, err := e.auth.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice1", u.UserName)

	_, err = e.auth.UpdateProfile(ctx, id, model.UserProfileUpdate{})
	requireKind(t, err, apperr.KindValidation)

	bad := "x"
	phone := "12ab"
	email := "broken"
	empty := "  "
	_, err = e.auth.UpdateProfile(ctx, id, model.UserProfileUpdate{
		FirstName: &bad, BusinessPhone: &phone, BusinessEmail: &email, BusinessAddress: &empty,
	})
	ae := requireKind(t, err, apperr.KindValidation)
	assert.Len(t, ae.Fields, 4)

	first := "Alicia"
	bizEmail := "Shop@Example.com"
	u, err = e.auth.UpdateProfile(ctx, id, model.UserProfileUpdate{FirstName: &first, BusinessEmail: &bizEmail})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", u.FirstName)
	assert.Equal(t, "shop@example.com", u.BusinessEmail)
	assert.Equal(t, "Smith", u.LastName)
}

func TestProfileRejectsShopOwners(t *testing.T) {
	e := newEnv(t)
	_, err := e.auth.GetProfile(context.Background(), Identity{ID: "o", Kind: model.SubjectShopOwner})
	requireKind(t, err, apperr.KindForbidden)
}

func TestRegisterShopOwner(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	o := e.registerOwner(t, "9000000001")
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, `["screen"]`, o.ServiceOffered)
	assert.False(t, o.OTPVerified)

	// weak passwords are accepted on this path
	_, err := e.auth.RegisterShopOwner(ctx, RegisterShopOwnerInput{
		OwnerDetails: OwnerDetails{Name: "C", Email: "c@shop.com", ContactNumber: "9000000001", Password: "x"},
		ShopDetails:  ShopDetailsInput{ShopName: "C", Address: "A"},
	})
	assert.Equal(t, "contact_number", requireKind(t, err, apperr.KindConflict).Field)

	_, err = e.auth.RegisterShopOwner(ctx, RegisterShopOwnerInput{})
	ae := requireKind(t, err, apperr.KindValidation)
	assert.True(t, hasField(ae, "ownerDetails.name"))
	assert.True(t, hasField(ae, "shopDetails.address"))
}

func TestOTPFlow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	o := e.registerOwner(t, "9000000001")

	err := e.auth.SendOTP(ctx, "9999999999")
	requireKind(t, err, apperr.KindNotFound)

	require.NoError(t, e.auth.SendOTP(ctx, o.ContactNumber))
	sent := e.pub.otps()
	require.Len(t, sent, 1)
	code := sent[0].OTP
	assert.Len(t, code, utils.OTPLength)
	require.NotNil(t, sent[0].ExpiresAt)

	_, err = e.auth.VerifyOTP(ctx, "9999999999", code)
	requireKind(t, err, apperr.KindNotFound)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err = e.auth.VerifyOTP(ctx, o.ContactNumber, wrong)
	requireKind(t, err, apperr.KindInvalidOTP)

	login, err := e.auth.VerifyOTP(ctx, o.ContactNumber, code)
	require.NoError(t, err)
	assert.True(t, login.Owner.OTPVerified)

	stored, err := e.st.ShopOwners.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.OTP)
	assert.True(t, stored.OTPVerified)
	assert.Equal(t, login.Token, stored.Token)

	id, err := e.auth.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, model.SubjectShopOwner, id.Kind)
	assert.Equal(t, o.ContactNumber, id.Identifier)

	// the code is single use
	_, err = e.auth.VerifyOTP(ctx, o.ContactNumber, code)
	requireKind(t, err, apperr.KindInvalidOTP)
}

func TestOTPLoginRevokesPreviousSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	o := e.registerOwner(t, "9000000001")

	login := func() string {
		require.NoError(t, e.auth.SendOTP(ctx, o.ContactNumber))
		sent := e.pub.otps()
		res, err := e.auth.VerifyOTP(ctx, o.ContactNumber, sent[len(sent)-1].OTP)
		require.NoError(t, err)
		return res.Token
	}
	first := login()
	second := login()

	_, err := e.auth.Authenticate(ctx, first)
	requireKind(t, err, apperr.KindUnauthorized)
	_, err = e.auth.Authenticate(ctx, second)
	assert.NoError(t, err)
}

func TestOTPExpires(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	o := e.registerOwner(t, "9000000001")
	require.NoError(t, e.auth.SendOTP(ctx, o.ContactNumber))
	code := e.pub.otps()[0].OTP

	e.auth.now = func() time.Time { return time.Now().UTC().Add(11 * time.Minute) }
	_, err := e.auth.VerifyOTP(ctx, o.ContactNumber, code)
	requireKind(t, err, apperr.KindInvalidOTP)
}

func TestSendOTPSurvivesPublishFailure(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	o := e.registerOwner(t, "9000000001")
	e.pub.err = assert.AnError

	require.NoError(t, e.auth.SendOTP(ctx, o.ContactNumber))
	stored, err := e.st.ShopOwners.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, stored.OTP, utils.OTPLength)
}
