package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"tournament-dashboard/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestR2StorePut(t *testing.T) {
	api := &fakeS3{}
	store := newR2Store(api, "avatars", "https://cdn.example.com/")

	url, err := store.Put(context.Background(), "users/u1/a.png", "image/png", strings.NewReader("png"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "https://cdn.example.com/users/u1/a.png" {
		t.Errorf("url = %q", url)
	}
	if aws.ToString(api.in.Bucket) != "avatars" || aws.ToString(api.in.ContentType) != "image/png" || api.body != "png" {
		t.Errorf("unexpected input bucket=%q type=%q body=%q", aws.ToString(api.in.Bucket), aws.ToString(api.in.ContentType), api.body)
	}
}

func TestR2StorePutError(t *testing.T) {
	store := newR2Store(&fakeS3{err: errors.New("denied")}, "b", "https://cdn")
	if _, err := store.Put(context.Background(), "k", "text/plain", strings.NewReader("x")); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewR2StoreDisabled(t *testing.T) {
	store, err := NewR2Store(context.Background(), config.R2Config{})
	if err != nil || store != nil {
		t.Fatalf("expected nil store without config, got %v %v", store, err)
	}
}
