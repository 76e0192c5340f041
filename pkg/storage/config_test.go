package storage_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/guidesync/pkg/storage"
)

func TestConfigFinalizeDefaults(t *testing.T) {
	var c storage.Config
	if err := c.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if c.Provider != storage.ProviderS3 {
		t.Errorf("provider = %q, want s3", c.Provider)
	}
	if c.Bucket != "guidelinesync-guidelines" || c.Region != "eu-west-2" {
		t.Errorf("bucket/region = %q/%q", c.Bucket, c.Region)
	}
}

func TestConfigFinalizeEnv(t *testing.T) {
	t.Setenv("TEST_STORAGE_PROVIDER", "azure")
	t.Setenv("TEST_STORAGE_CONN", "UseDevelopmentStorage=true")

	var c storage.Config
	err := c.Finalize(&storage.Env{
		Provider:         "TEST_STORAGE_PROVIDER",
		ConnectionString: "TEST_STORAGE_CONN",
	})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if c.Provider != storage.ProviderAzure {
		t.Errorf("provider = %q, want azure", c.Provider)
	}
	if c.ContainerName != "guidelines" {
		t.Errorf("container = %q, want default", c.ContainerName)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr bool
	}{
		{"azure without credentials", storage.Config{Provider: storage.ProviderAzure}, true},
		{"azure with service url", storage.Config{Provider: storage.ProviderAzure, ServiceURL: "https://acct.blob.core.windows.net"}, false},
		{"s3 defaults", storage.Config{Provider: storage.ProviderS3}, false},
		{"unknown provider", storage.Config{Provider: "gcs"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.Finalize(nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigUnknownProviderError(t *testing.T) {
	c := storage.Config{Provider: "gcs"}
	if err := c.Finalize(nil); !errors.Is(err, storage.ErrUnknownProvider) {
		t.Errorf("err = %v, want ErrUnknownProvider", err)
	}
}

func TestConfigMerge(t *testing.T) {
	base := storage.Config{Provider: storage.ProviderS3, Bucket: "base", Region: "eu-west-2"}
	base.Merge(&storage.Config{Bucket: "overlay"})

	if base.Bucket != "overlay" {
		t.Errorf("bucket = %q, want overlay", base.Bucket)
	}
	if base.Region != "eu-west-2" {
		t.Errorf("region = %q, want unchanged", base.Region)
	}
}
