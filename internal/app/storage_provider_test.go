package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/dmhernandez2525/learning-hall/internal/platform/gcp"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
)

func TestClassifyStorageProviderBootstrapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want StorageProviderBootstrapErrorCode
	}{
		{"invalid mode", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidMode}, StorageProviderBootstrapErrorInvalidMode},
		{"missing host", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorMissingEmulatorHost}, StorageProviderBootstrapErrorMissingEmulatorHost},
		{"invalid host", &gcp.ObjectStorageConfigError{Code: gcp.ObjectStorageConfigErrorInvalidEmulatorHost}, StorageProviderBootstrapErrorInvalidEmulatorHost},
		{"connect", errors.New("dial tcp: connection refused"), StorageProviderBootstrapErrorConnectFailed},
	}
	for _, tc := range cases {
		err := classifyStorageProviderBootstrapError(gcp.ObjectStorageConfig{Mode: gcp.ObjectStorageModeGCS}, tc.err)
		var got *StorageProviderBootstrapError
		if !errors.As(err, &got) {
			t.Fatalf("%s: expected StorageProviderBootstrapError, got=%T", tc.name, err)
		}
		if got.Code != tc.want {
			t.Fatalf("%s: code want=%q got=%q", tc.name, tc.want, got.Code)
		}
		if !errors.Is(err, tc.err) {
			t.Fatalf("%s: cause should stay reachable", tc.name)
		}
	}
}

func stubTemplateBucket(t *testing.T) *gcp.BucketConfig {
	t.Helper()
	orig := newTemplateBucket
	t.Cleanup(func() { newTemplateBucket = orig })

	captured := &gcp.BucketConfig{}
	newTemplateBucket = func(_ *logger.Logger, cfg gcp.BucketConfig) (gcp.TemplateBucket, error) {
		*captured = cfg
		return testBucket{}, nil
	}
	return captured
}

func TestResolveTemplateBucketDisabledWithoutName(t *testing.T) {
	captured := stubTemplateBucket(t)
	bucket, err := resolveTemplateBucket(logger.Nop(), Config{ObjectStorageMode: "nonsense"})
	if err != nil || bucket != nil {
		t.Fatalf("no bucket name: want nil,nil got=%v,%v", bucket, err)
	}
	if captured.Name != "" {
		t.Fatalf("constructor should not run")
	}
}

func TestResolveTemplateBucketModes(t *testing.T) {
	captured := stubTemplateBucket(t)

	bucket, err := resolveTemplateBucket(logger.Nop(), Config{
		TemplateBucketName: "templates",
		ObjectStorageMode:  string(gcp.ObjectStorageModeGCS),
	})
	if err != nil || bucket == nil {
		t.Fatalf("gcs: got=%v,%v", bucket, err)
	}
	if captured.Name != "templates" || captured.Storage.Mode != gcp.ObjectStorageModeGCS {
		t.Fatalf("gcs config: %+v", captured)
	}

	_, err = resolveTemplateBucket(logger.Nop(), Config{
		TemplateBucketName:  "templates",
		StorageEmulatorHost: "http://fake-gcs:4443/",
	})
	if err != nil {
		t.Fatalf("implied emulator: %v", err)
	}
	if captured.Storage.Mode != gcp.ObjectStorageModeGCSEmulator || captured.Storage.EmulatorHost != "http://fake-gcs:4443" {
		t.Fatalf("emulator config: %+v", captured.Storage)
	}
}

func TestResolveTemplateBucketRejectsBadStorageConfig(t *testing.T) {
	stubTemplateBucket(t)
	cases := []struct {
		mode, host string
		want       StorageProviderBootstrapErrorCode
	}{
		{"invalid", "", StorageProviderBootstrapErrorInvalidMode},
		{string(gcp.ObjectStorageModeGCSEmulator), "", StorageProviderBootstrapErrorMissingEmulatorHost},
		{string(gcp.ObjectStorageModeGCSEmulator), "not-a-url", StorageProviderBootstrapErrorInvalidEmulatorHost},
	}
	for _, tc := range cases {
		_, err := resolveTemplateBucket(logger.Nop(), Config{
			TemplateBucketName:  "templates",
			ObjectStorageMode:   tc.mode,
			StorageEmulatorHost: tc.host,
		})
		if got := storageProviderBootstrapErrorCode(err); got != tc.want {
			t.Fatalf("mode=%q host=%q: want=%q got=%q (%v)", tc.mode, tc.host, tc.want, got, err)
		}
	}
}

type testBucket struct{}

func (testBucket) UploadFile(context.Context, string, io.Reader) error { return nil }
func (testBucket) DeleteFile(context.Context, string) error            { return nil }
func (testBucket) GetPublicURL(string) string                          { return "" }
