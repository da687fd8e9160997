package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// FirebaseStore writes objects to the project's Cloud Storage bucket. The
// bucket must allow public reads for PublicURL links to resolve.
type FirebaseStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

type FirebaseConfig struct {
	CredentialsFile string
	ProjectID       string
	Bucket          string
}

func NewFirebaseStore(ctx context.Context, cfg FirebaseConfig, log zerolog.Logger) (*FirebaseStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("firebase storage bucket is not configured")
	}

	log.Info().Str("project", cfg.ProjectID).Str("bucket", cfg.Bucket).Msg("🔄 Initializing Firebase storage")

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.Bucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app initialization failed: %w", err)
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase storage client: %w", err)
	}
	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("firebase bucket: %w", err)
	}

	log.Info().Msg("✅ Firebase storage ready")
	return &FirebaseStore{bucket: bucket, bucketName: cfg.Bucket}, nil
}

func (s *FirebaseStore) Upload(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) (string, error) {
	err := writeObject(ctx, func(wctx context.Context) io.WriteCloser {
		w := s.bucket.Object(objectPath).NewWriter(wctx)
		w.ContentType = contentType
		return w
	}, r)
	if err != nil {
		return "", fmt.Errorf("write %s: %w", objectPath, err)
	}
	return objectPath, nil
}

// writeObject streams r into a writer bound to its own context. A bucket
// writer commits the object on Close, so a failed copy cancels instead and
// nothing partial is published.
func writeObject(ctx context.Context, open func(context.Context) io.WriteCloser, r io.Reader) error {
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := open(wctx)
	if _, err := io.Copy(w, r); err != nil {
		cancel()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize: %w", err)
	}
	return nil
}

func (s *FirebaseStore) PublicURL(objectPath string) string {
	segments := strings.Split(objectPath, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, strings.Join(segments, "/"))
}

func (s *FirebaseStore) Delete(ctx context.Context, objectPath string) error {
	err := s.bucket.Object(objectPath).Delete(ctx)
	if err == gcs.ErrObjectNotExist {
		return nil
	}
	return err
}
