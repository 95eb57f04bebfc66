// Package identity talks to Firebase Authentication through the Identity
// Toolkit API.
//
// Two API clients are used.  The user client is authenticated with the
// project's web API key and performs the calls a browser would make
// (password sign-in, sign-up).  The admin client is authenticated with
// service account credentials and performs privileged calls (account
// lookup, custom claims, password resets).
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

var (
	ErrEmailExists        = errors.New("email already in use")
	ErrWeakPassword       = errors.New("password too weak")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("no user with that email")
	ErrNotDoctor          = errors.New("account lacks the doctor claim")
)

// Localized messages for auth failures.
const (
	MsgSignInFailed      = "Giriş başarısız. Lütfen bilgilerinizi kontrol edin."
	MsgNotDoctor         = "Bu panele giriş yetkiniz yok (Sadece doktorlar)."
	MsgEmailExists       = "Bu e-posta adresi zaten kullanımda."
	MsgWeakPassword      = "Şifre en az 6 karakter olmalıdır."
	MsgSignUpFailed      = "Kayıt başarısız. Lütfen tekrar deneyin."
	MsgGrantFailed       = "Yetki verilirken hata oluştu."
	MsgUpdateFailed      = "Güncelleme sırasında bir hata oluştu."
	grantSucceededFormat = "%s kullanıcısına doktor yetkisi verildi."
)

// Account is a Firebase Authentication user.
type Account struct {
	UID         string
	Email       string
	DisplayName string
	Doctor      bool
}

type Provider struct {
	user     *identitytoolkit.Service
	admin    *identitytoolkit.Service
	verifier *TokenVerifier
}

func NewProvider(user, admin *identitytoolkit.Service, verifier *TokenVerifier) *Provider {
	return &Provider{
		user:     user,
		admin:    admin,
		verifier: verifier,
	}
}

// NewUserService builds an Identity Toolkit client authenticated with a web
// API key.
func NewUserService(ctx context.Context, apiKey string) (*identitytoolkit.Service, error) {
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("while creating identity toolkit user client: %w", err)
	}
	return svc, nil
}

// NewAdminService builds an Identity Toolkit client authenticated with
// application default credentials.
func NewAdminService(ctx context.Context) (*identitytoolkit.Service, error) {
	ts, err := google.DefaultTokenSource(ctx, identitytoolkit.CloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("while loading default credentials: %w", err)
	}
	svc, err := identitytoolkit.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("while creating identity toolkit admin client: %w", err)
	}
	return svc, nil
}

// classify maps Identity Toolkit error codes onto this package's sentinel
// errors.  Anything unrecognized is returned unchanged.
func classify(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	code := apiErr.Message
	if i := strings.IndexAny(code, " :"); i >= 0 {
		code = code[:i]
	}

	switch code {
	case "EMAIL_EXISTS":
		return fmt.Errorf("%w: %w", ErrEmailExists, err)
	case "WEAK_PASSWORD":
		return fmt.Errorf("%w: %w", ErrWeakPassword, err)
	case "INVALID_PASSWORD", "EMAIL_NOT_FOUND", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL", "USER_DISABLED":
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	return err
}

// SignInMessage is the message to show after a failed SignIn.
func SignInMessage(err error) string {
	if errors.Is(err, ErrNotDoctor) {
		return MsgNotDoctor
	}
	return MsgSignInFailed
}

// SignUpMessage is the message to show after a failed SignUp.
func SignUpMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmailExists):
		return MsgEmailExists
	case errors.Is(err, ErrWeakPassword):
		return MsgWeakPassword
	}
	return MsgSignUpFailed
}

// GrantMessage is the message to show after GrantDoctor.
func GrantMessage(email string, err error) string {
	if err != nil {
		return MsgGrantFailed
	}
	return fmt.Sprintf(grantSucceededFormat, email)
}

// SignIn checks an email and password and returns the account only if it
// carries the doctor claim.  Accounts without it get ErrNotDoctor.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Account, error) {
	resp, err := p.user.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("while verifying password: %w", classify(err))
	}

	claims, err := p.doctorClaims(ctx, resp.IdToken)
	if err != nil {
		return nil, fmt.Errorf("while checking sign-in token: %w", err)
	}

	return &Account{
		UID:         claims.Subject,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		Doctor:      true,
	}, nil
}

// SignUp creates a password account.  New accounts never carry the doctor
// claim.
func (p *Provider) SignUp(ctx context.Context, displayName, email, password string) (*Account, error) {
	resp, err := p.user.Relyingparty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		DisplayName: displayName,
		Email:       email,
		Password:    password,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("while signing up: %w", classify(err))
	}

	return &Account{
		UID:         resp.LocalId,
		Email:       resp.Email,
		DisplayName: displayName,
	}, nil
}

// doctorClaims verifies idToken and returns its claims, or ErrNotDoctor if the
// token is valid but lacks the doctor claim.
func (p *Provider) doctorClaims(ctx context.Context, idToken string) (*Claims, error) {
	claims, err := p.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if !claims.Doctor {
		slog.InfoContext(ctx, "Token lacks the doctor claim", slog.String("uid", claims.Subject))
		return nil, ErrNotDoctor
	}
	return claims, nil
}

// CheckDoctorRole reports whether idToken is valid and carries the doctor
// claim.  Any verification failure reports false.
func (p *Provider) CheckDoctorRole(ctx context.Context, idToken string) bool {
	if _, err := p.doctorClaims(ctx, idToken); err != nil {
		slog.InfoContext(ctx, "Doctor role check failed", slog.Any("err", err))
		return false
	}
	return true
}

func accountFromUserInfo(u *identitytoolkit.UserInfo) *Account {
	acct := &Account{
		UID:         u.LocalId,
		Email:       u.Email,
		DisplayName: u.DisplayName,
	}
	if u.CustomAttributes != "" {
		attrs := struct {
			Doctor bool `json:"doctor"`
		}{}
		if err := json.Unmarshal([]byte(u.CustomAttributes), &attrs); err == nil {
			acct.Doctor = attrs.Doctor
		}
	}
	return acct
}

func (p *Provider) lookup(ctx context.Context, req *identitytoolkit.IdentitytoolkitRelyingpartyGetAccountInfoRequest) (*Account, error) {
	resp, err := p.admin.Relyingparty.GetAccountInfo(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("while looking up account: %w", classify(err))
	}
	if len(resp.Users) == 0 {
		return nil, ErrUserNotFound
	}
	return accountFromUserInfo(resp.Users[0]), nil
}

// LookupByEmail fetches an account by email.
func (p *Provider) LookupByEmail(ctx context.Context, email string) (*Account, error) {
	return p.lookup(ctx, &identitytoolkit.IdentitytoolkitRelyingpartyGetAccountInfoRequest{
		Email: []string{email},
	})
}

// GrantDoctor sets the doctor custom claim on the account with the given
// email.  The claim shows up in ID tokens minted after the next sign-in.
func (p *Provider) GrantDoctor(ctx context.Context, email string) error {
	acct, err := p.LookupByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("while finding %s: %w", email, err)
	}

	_, err = p.admin.Relyingparty.SetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{
		LocalId:          acct.UID,
		CustomAttributes: `{"doctor":true}`,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("while setting doctor claim on %s: %w", acct.UID, classify(err))
	}

	slog.InfoContext(ctx, "Granted doctor claim", slog.String("uid", acct.UID), slog.String("email", email))
	return nil
}

// UpdateProfile sets the account's display name and, when password is
// non-empty, its password.
func (p *Provider) UpdateProfile(ctx context.Context, uid, displayName, password string) error {
	req := &identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{
		LocalId:     uid,
		DisplayName: displayName,
	}
	if password != "" {
		req.Password = password
	}

	if _, err := p.admin.Relyingparty.SetAccountInfo(req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("while updating profile of %s: %w", uid, classify(err))
	}
	return nil
}
