// Package secrets reads configuration values out of Secret Manager.
package secrets

import (
	"context"
	"fmt"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// VersionName is the resource name of the latest version of a secret.
func VersionName(project, secret string) string {
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, secret)
}

// Latest returns the payload of the latest version of secret, with
// surrounding whitespace removed.
func Latest(ctx context.Context, project, secret string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	secretClient, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("while creating Secret Manager client: %w", err)
	}
	defer secretClient.Close()

	resp, err := secretClient.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: VersionName(project, secret),
	})
	if err != nil {
		return "", fmt.Errorf("while pulling secret %s: %w", secret, err)
	}

	return strings.TrimSpace(string(resp.GetPayload().GetData())), nil
}
