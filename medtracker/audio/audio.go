// Package audio produces short-lived playback links for the voice notes
// attached to medicines.
package audio

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ilac-cebimde/medtracker/dblayer"

	"cloud.google.com/go/storage"
)

// URLSigner signs object URLs.  *storage.BucketHandle implements it.
type URLSigner interface {
	SignedURL(object string, opts *storage.SignedURLOptions) (string, error)
}

type Links struct {
	bucket URLSigner
	ttl    time.Duration
	now    func() time.Time
}

func New(bucket URLSigner, ttl time.Duration) *Links {
	return &Links{
		bucket: bucket,
		ttl:    ttl,
		now:    time.Now,
	}
}

// URL returns a signed GET URL for audioPath.  A nil Links, or an empty path,
// yields "".
func (l *Links) URL(audioPath string) (string, error) {
	audioPath = strings.TrimPrefix(audioPath, "/")
	if l == nil || audioPath == "" {
		return "", nil
	}

	u, err := l.bucket.SignedURL(audioPath, &storage.SignedURLOptions{
		Method:  http.MethodGet,
		Expires: l.now().Add(l.ttl),
		Scheme:  storage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("while signing url for %s: %w", audioPath, err)
	}
	return u, nil
}

// ForMedicines maps medicine id to playback URL for every medicine with
// audio.  Signing failures are logged and the medicine is left out.
func (l *Links) ForMedicines(ctx context.Context, meds []dblayer.MedicineDoc) map[string]string {
	out := map[string]string{}
	for _, m := range meds {
		u, err := l.URL(m.Medicine.AudioPath)
		if err != nil {
			slog.ErrorContext(ctx, "Error while signing audio url", slog.String("medicine", m.ID), slog.Any("err", err))
			continue
		}
		if u != "" {
			out[m.ID] = u
		}
	}
	return out
}
