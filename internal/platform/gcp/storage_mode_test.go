package gcp

import (
	"errors"
	"testing"
)

func TestResolveObjectStorageConfig(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		host     string
		wantMode ObjectStorageMode
		implied  bool
		wantCode ObjectStorageConfigErrorCode
	}{
		{name: "default gcs", wantMode: ObjectStorageModeGCS},
		{name: "host implies emulator", host: "http://fake-gcs:4443/", wantMode: ObjectStorageModeGCSEmulator, implied: true},
		{name: "explicit emulator", mode: "GCS_EMULATOR", host: "http://fake-gcs:4443", wantMode: ObjectStorageModeGCSEmulator},
		{name: "explicit gcs ignores host", mode: "gcs", host: "http://fake-gcs:4443", wantMode: ObjectStorageModeGCS},
		{name: "invalid mode", mode: "s3", wantCode: ObjectStorageConfigErrorInvalidMode},
		{name: "emulator without host", mode: "gcs_emulator", wantCode: ObjectStorageConfigErrorMissingEmulatorHost},
		{name: "emulator relative host", mode: "gcs_emulator", host: "fake-gcs:4443", wantCode: ObjectStorageConfigErrorInvalidEmulatorHost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ResolveObjectStorageConfig(tt.mode, tt.host)
			if tt.wantCode != "" {
				var cfgErr *ObjectStorageConfigError
				if !errors.As(err, &cfgErr) || cfgErr.Code != tt.wantCode {
					t.Fatalf("error: want code=%s got=%v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveObjectStorageConfig: %v", err)
			}
			if cfg.Mode != tt.wantMode {
				t.Fatalf("mode: want=%s got=%s", tt.wantMode, cfg.Mode)
			}
			if cfg.ImpliedByEmulatorHost != tt.implied {
				t.Fatalf("implied: want=%v got=%v", tt.implied, cfg.ImpliedByEmulatorHost)
			}
		})
	}
}

func TestObjectStorageConfigErrorMessages(t *testing.T) {
	err := &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: "s3"}
	if got := err.Error(); got != `invalid OBJECT_STORAGE_MODE="s3" (allowed: "gcs", "gcs_emulator")` {
		t.Fatalf("message: %s", got)
	}
	var nilErr *ObjectStorageConfigError
	if nilErr.Error() != "invalid object storage config" || nilErr.Unwrap() != nil {
		t.Fatalf("nil receiver should be safe")
	}
}
