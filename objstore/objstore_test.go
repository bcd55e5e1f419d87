package objstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		url     string
		want    Location
		wantErr bool
	}{
		{url: "gs://bucket/renders/frame.png", want: Location{Bucket: "bucket", Object: "renders/frame.png"}},
		{url: "out/frame.ppm", want: Location{Path: "out/frame.ppm"}},
		{url: "/abs/scene.yaml", want: Location{Path: "/abs/scene.yaml"}},
		{url: "gs://bucket", wantErr: true},
		{url: "gs://bucket/", wantErr: true},
		{url: "gs:///object", wantErr: true},
		{url: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			got, err := Parse(tc.url)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) = %v, want error", tc.url, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Errorf("Wrong location; diff (-got +want)\n%s", diff)
			}
			if got.String() != tc.url {
				t.Errorf("String() = %q, want %q", got.String(), tc.url)
			}
		})
	}
}

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()
	defer s.Close()

	url := filepath.Join(t.TempDir(), "nested", "dir", "frame.ppm")
	want := []byte("P3\n1 1\n255\n255 0 0\n")

	if err := s.WriteAll(ctx, url, want); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	got, err := s.ReadAll(ctx, url)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Wrong contents; diff (-got +want)\n%s", diff)
	}

	// A second write replaces the object.
	if err := s.WriteAll(ctx, url, []byte("x")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	got, err = os.ReadFile(url)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(got) != "x" {
		t.Errorf("Contents after overwrite = %q, want %q", got, "x")
	}
}

func TestLocalNotExist(t *testing.T) {
	s := New()
	defer s.Close()

	_, err := s.Open(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	if !IsNotExist(err) {
		t.Errorf("Open() error = %v, want not-exist", err)
	}
}

func TestCloseWithoutClient(t *testing.T) {
	s := New()
	if _, err := s.ReadAll(context.Background(), filepath.Join(t.TempDir(), "missing.yaml")); !IsNotExist(err) {
		t.Fatalf("ReadAll() error = %v, want not-exist", err)
	}

	// Local files never create a GCS client, so there is nothing to close.
	for i := 0; i < 2; i++ {
		if err := s.Close(); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	if s.gcs != nil {
		t.Errorf("Store holds a GCS client after only local reads")
	}
}
