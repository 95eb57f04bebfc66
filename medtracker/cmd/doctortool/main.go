// doctortool grants the doctor claim to a console account, optionally creating
// the account first.  It is how the first doctor gets into the console.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"
	"time"

	"ilac-cebimde/medtracker/admin"
	"ilac-cebimde/medtracker/dblayer"
	"ilac-cebimde/medtracker/dbtypes"
	"ilac-cebimde/medtracker/identity"
	"ilac-cebimde/medtracker/secrets"

	"cloud.google.com/go/firestore"
	"golang.org/x/term"
)

var (
	dataProject  = flag.String("data-project", "", "Firebase project that contains the application state.")
	apiKey       = flag.String("api-key", "", "Firebase web API key, needed with --create.  Takes precedence over --api-key-secret.")
	apiKeySecret = flag.String("api-key-secret", "firebase-api-key", "GCP Secret Manager secret name containing the Firebase web API key.")

	email       = flag.String("email", "", "Email of the account to grant.")
	create      = flag.Bool("create", false, "Create the account first.  The password is read from the terminal.")
	displayName = flag.String("display-name", "", "Display name for a created account.")
)

func readPassword() (string, error) {
	fmt.Print("Password: ")
	pass, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("while reading password: %w", err)
	}

	fmt.Print("Password (again): ")
	again, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("while reading password: %w", err)
	}

	if string(pass) != string(again) {
		return "", admin.ErrPasswordMatch
	}
	return string(pass), nil
}

func createAccount(ctx context.Context, provider *identity.Provider, db *dblayer.DB) error {
	password, err := readPassword()
	if err != nil {
		return err
	}

	reg := admin.Registration{
		Name:     *displayName,
		Email:    *email,
		Password: password,
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("invalid account: %s", admin.ValidationMessage(err))
	}

	acct, err := provider.SignUp(ctx, reg.Name, reg.Email, reg.Password)
	if err != nil {
		return fmt.Errorf("while creating account: %w", err)
	}

	if err := db.CreatePatient(ctx, acct.UID, &dbtypes.Patient{
		Email:       acct.Email,
		DisplayName: reg.Name,
		CreatedAt:   time.Now(),
	}); err != nil {
		return fmt.Errorf("while creating profile document: %w", err)
	}

	log.Printf("Created account %s", acct.UID)
	return nil
}

func do(ctx context.Context) error {
	*email = strings.TrimSpace(*email)
	if *email == "" {
		return fmt.Errorf("--email is required")
	}

	adminService, err := identity.NewAdminService(ctx)
	if err != nil {
		return err
	}

	var provider *identity.Provider
	if *create {
		key := *apiKey
		if key == "" {
			key, err = secrets.Latest(ctx, *dataProject, *apiKeySecret)
			if err != nil {
				return fmt.Errorf("while loading Firebase API key: %w", err)
			}
		}
		userService, err := identity.NewUserService(ctx, key)
		if err != nil {
			return err
		}
		provider = identity.NewProvider(userService, adminService, identity.NewTokenVerifier(*dataProject))

		fstore, err := firestore.NewClient(ctx, *dataProject)
		if err != nil {
			return fmt.Errorf("while creating FireStore client: %w", err)
		}
		defer fstore.Close()

		if err := createAccount(ctx, provider, dblayer.New(fstore)); err != nil {
			return err
		}
	} else {
		provider = identity.NewProvider(nil, adminService, identity.NewTokenVerifier(*dataProject))
	}

	if err := provider.GrantDoctor(ctx, *email); err != nil {
		return err
	}

	acct, err := provider.LookupByEmail(ctx, *email)
	if err != nil {
		return err
	}
	fmt.Printf("uid=%s email=%s doctor=%v\n", acct.UID, acct.Email, acct.Doctor)
	fmt.Println(identity.GrantMessage(*email, nil))
	return nil
}

func main() {
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := do(ctx); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
