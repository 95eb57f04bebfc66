package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

const testProject = "test-project"

type testKeys struct {
	priv *rsa.PrivateKey
	kid  string
}

func newTestKeys(t *testing.T) *testKeys {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Error generating key: %v", err)
	}
	return &testKeys{priv: priv, kid: "key-1"}
}

func (k *testKeys) certsJSON(t *testing.T) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(&k.priv.PublicKey)
	if err != nil {
		t.Fatalf("Error marshaling public key: %v", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	out, err := json.Marshal(map[string]string{k.kid: string(pemBytes)})
	if err != nil {
		t.Fatalf("Error marshaling certs: %v", err)
	}
	return out
}

func (k *testKeys) sign(t *testing.T, kid string, claims *Claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	s, err := tok.SignedString(k.priv)
	if err != nil {
		t.Fatalf("Error signing token: %v", err)
	}
	return s
}

func goodClaims(doctor bool) *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://securetoken.google.com/" + testProject,
			Audience:  jwt.ClaimStrings{testProject},
			Subject:   "uid-1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Email:  "dr@example.com",
		Doctor: doctor,
	}
}

func certsServer(t *testing.T, keys *testKeys) *httptest.Server {
	t.Helper()
	body := keys.certsJSON(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testVerifier(certsURL string) *TokenVerifier {
	v := NewTokenVerifier(testProject)
	v.certsURL = certsURL
	return v
}

func TestVerify(t *testing.T) {
	keys := newTestKeys(t)
	srv := certsServer(t, keys)

	wrongAudience := goodClaims(true)
	wrongAudience.Audience = jwt.ClaimStrings{"other-project"}

	wrongIssuer := goodClaims(true)
	wrongIssuer.Issuer = "https://securetoken.google.com/other-project"

	expired := goodClaims(true)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	noSubject := goodClaims(true)
	noSubject.Subject = ""

	testCases := []struct {
		desc    string
		token   string
		wantErr error
	}{
		{desc: "good", token: keys.sign(t, keys.kid, goodClaims(true))},
		{desc: "wrong audience", token: keys.sign(t, keys.kid, wrongAudience), wantErr: jwt.ErrTokenInvalidAudience},
		{desc: "wrong issuer", token: keys.sign(t, keys.kid, wrongIssuer), wantErr: jwt.ErrTokenInvalidIssuer},
		{desc: "expired", token: keys.sign(t, keys.kid, expired), wantErr: jwt.ErrTokenExpired},
		{desc: "unknown kid", token: keys.sign(t, "key-2", goodClaims(true)), wantErr: ErrUnknownKeyID},
		{desc: "no subject", token: keys.sign(t, keys.kid, noSubject), wantErr: ErrNoSubject},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			claims, err := testVerifier(srv.URL).Verify(context.Background(), tc.token)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if claims.Subject != "uid-1" || !claims.Doctor {
					t.Errorf("Bad claims: %+v", claims)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestVerifyRejectsOtherSigner(t *testing.T) {
	keys := newTestKeys(t)
	srv := certsServer(t, keys)

	impostor := newTestKeys(t)
	token := impostor.sign(t, keys.kid, goodClaims(true))

	if _, err := testVerifier(srv.URL).Verify(context.Background(), token); !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		t.Errorf("Verify() error = %v, want %v", err, jwt.ErrTokenSignatureInvalid)
	}
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		message string
		want    error
	}{
		{message: "EMAIL_EXISTS", want: ErrEmailExists},
		{message: "WEAK_PASSWORD : Password should be at least 6 characters", want: ErrWeakPassword},
		{message: "INVALID_PASSWORD", want: ErrInvalidCredentials},
		{message: "EMAIL_NOT_FOUND", want: ErrInvalidCredentials},
		{message: "INVALID_LOGIN_CREDENTIALS", want: ErrInvalidCredentials},
	}

	for _, tc := range testCases {
		t.Run(tc.message, func(t *testing.T) {
			err := classify(&googleapi.Error{Code: http.StatusBadRequest, Message: tc.message})
			if !errors.Is(err, tc.want) {
				t.Errorf("classify(%q) = %v, want %v", tc.message, err, tc.want)
			}
		})
	}

	other := &googleapi.Error{Code: http.StatusInternalServerError, Message: "BACKEND_ERROR"}
	if got := classify(other); got != error(other) {
		t.Errorf("classify(unknown) = %v, want it unchanged", got)
	}
}

func TestMessages(t *testing.T) {
	got := []string{
		SignUpMessage(fmt.Errorf("x: %w", ErrEmailExists)),
		SignUpMessage(fmt.Errorf("x: %w", ErrWeakPassword)),
		SignUpMessage(errors.New("boom")),
		SignInMessage(ErrNotDoctor),
		SignInMessage(ErrInvalidCredentials),
		GrantMessage("a@b.com", nil),
		GrantMessage("a@b.com", errors.New("boom")),
	}
	want := []string{
		"Bu e-posta adresi zaten kullanımda.",
		"Şifre en az 6 karakter olmalıdır.",
		"Kayıt başarısız. Lütfen tekrar deneyin.",
		"Bu panele giriş yetkiniz yok (Sadece doktorlar).",
		"Giriş başarısız. Lütfen bilgilerinizi kontrol edin.",
		"a@b.com kullanıcısına doktor yetkisi verildi.",
		"Yetki verilirken hata oluştu.",
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad messages; diff (-got +want)\n%s", diff)
	}
}

// fakeToolkit serves the Identity Toolkit relyingparty endpoints the
// provider calls, plus the signing certificates.
type fakeToolkit struct {
	keys   *testKeys
	doctor bool
}

func writeAPIError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprintf(w, `{"error":{"code":400,"message":%q,"errors":[{"message":%q,"domain":"global","reason":"invalid"}]}}`, message, message)
}

func (f *fakeToolkit) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	certs := f.keys.certsJSON(t)
	mux.HandleFunc("/certs", func(w http.ResponseWriter, r *http.Request) {
		w.Write(certs)
	})
	mux.HandleFunc("/verifyPassword", func(w http.ResponseWriter, r *http.Request) {
		req := identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "correct" {
			writeAPIError(w, "INVALID_PASSWORD")
			return
		}
		json.NewEncoder(w).Encode(&identitytoolkit.VerifyPasswordResponse{
			Email:       req.Email,
			DisplayName: "Dr. Ali",
			LocalId:     "uid-1",
			IdToken:     f.keys.sign(t, f.keys.kid, goodClaims(f.doctor)),
		})
	})
	mux.HandleFunc("/signupNewUser", func(w http.ResponseWriter, r *http.Request) {
		req := identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Email == "taken@example.com" {
			writeAPIError(w, "EMAIL_EXISTS")
			return
		}
		json.NewEncoder(w).Encode(&identitytoolkit.SignupNewUserResponse{
			Email:   req.Email,
			LocalId: "uid-new",
		})
	})
	return mux
}

func newTestProvider(t *testing.T, doctor bool) *Provider {
	t.Helper()
	ctx := context.Background()
	fake := &fakeToolkit{keys: newTestKeys(t), doctor: doctor}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	svc, err := identitytoolkit.NewService(ctx, option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	if err != nil {
		t.Fatalf("Error creating identity toolkit client: %v", err)
	}
	return NewProvider(svc, svc, testVerifier(srv.URL+"/certs"))
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()

	got, err := newTestProvider(t, true).SignIn(ctx, "dr@example.com", "correct")
	if err != nil {
		t.Fatalf("Unexpected error from SignIn: %v", err)
	}
	want := &Account{UID: "uid-1", Email: "dr@example.com", DisplayName: "Dr. Ali", Doctor: true}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad account; diff (-got +want)\n%s", diff)
	}

	_, err = newTestProvider(t, true).SignIn(ctx, "dr@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("SignIn with wrong password: err = %v, want ErrInvalidCredentials", err)
	}

	_, err = newTestProvider(t, false).SignIn(ctx, "patient@example.com", "correct")
	if !errors.Is(err, ErrNotDoctor) {
		t.Errorf("SignIn as non-doctor: err = %v, want ErrNotDoctor", err)
	}
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t, false)

	acct, err := p.SignUp(ctx, "Ayşe", "new@example.com", "secret1")
	if err != nil {
		t.Fatalf("Unexpected error from SignUp: %v", err)
	}
	if acct.UID != "uid-new" || acct.Doctor {
		t.Errorf("Bad new account: %+v", acct)
	}

	_, err = p.SignUp(ctx, "Ayşe", "taken@example.com", "secret1")
	if got := SignUpMessage(err); got != MsgEmailExists {
		t.Errorf("SignUpMessage(duplicate) = %q, want %q", got, MsgEmailExists)
	}
}

func TestCheckDoctorRole(t *testing.T) {
	keys := newTestKeys(t)
	srv := certsServer(t, keys)
	p := NewProvider(nil, nil, testVerifier(srv.URL))
	ctx := context.Background()

	if !p.CheckDoctorRole(ctx, keys.sign(t, keys.kid, goodClaims(true))) {
		t.Errorf("CheckDoctorRole(doctor token) = false, want true")
	}
	if p.CheckDoctorRole(ctx, keys.sign(t, keys.kid, goodClaims(false))) {
		t.Errorf("CheckDoctorRole(patient token) = true, want false")
	}
	if p.CheckDoctorRole(ctx, "not-a-token") {
		t.Errorf("CheckDoctorRole(garbage) = true, want false")
	}

	if _, err := p.doctorClaims(ctx, keys.sign(t, keys.kid, goodClaims(false))); !errors.Is(err, ErrNotDoctor) {
		t.Errorf("doctorClaims(patient token): err = %v, want ErrNotDoctor", err)
	}
}

func TestAccountFromUserInfo(t *testing.T) {
	got := accountFromUserInfo(&identitytoolkit.UserInfo{
		LocalId:          "uid-1",
		Email:            "dr@example.com",
		CustomAttributes: `{"doctor":true}`,
	})
	want := &Account{UID: "uid-1", Email: "dr@example.com", Doctor: true}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad account; diff (-got +want)\n%s", diff)
	}
}
