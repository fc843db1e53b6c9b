package r2

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	appconfig "pdfquiz/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

// TestNewClientDisabled verifies an incomplete config disables archiving without an error.
func TestNewClientDisabled(t *testing.T) {
	c, err := NewClient(context.Background(), appconfig.R2Config{Bucket: "b"})
	if err != nil || c != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", c, err)
	}
	if _, err := c.UploadFile(context.Background(), uuid.New(), uuid.New(), "a.pdf", strings.NewReader("x")); err == nil {
		t.Fatalf("expected an error from a nil client")
	}
}

// TestObjectKey verifies keys are scoped by session and upload and strip directories.
func TestObjectKey(t *testing.T) {
	s := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	u := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	if got := ObjectKey(s, u, "../../etc/notes.pdf"); got != "uploads/"+s.String()+"/"+u.String()+"/notes.pdf" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := ObjectKey(s, u, ""); !strings.HasSuffix(got, "/document.pdf") {
		t.Fatalf("expected a default name, got %q", got)
	}
}

// TestUploadFile verifies the object is written and the public URL is returned.
func TestUploadFile(t *testing.T) {
	api := &fakePutter{}
	c := newClient(api, "quizzes", "https://pub.example.dev/base")
	s, u := uuid.New(), uuid.New()

	got, err := c.UploadFile(context.Background(), s, u, "notes.pdf", bytes.NewReader([]byte("%PDF-1.4")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	want := "https://pub.example.dev/base/" + ObjectKey(s, u, "notes.pdf")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if aws.ToString(api.input.Bucket) != "quizzes" || aws.ToString(api.input.ContentType) != "application/pdf" {
		t.Fatalf("unexpected input bucket=%q type=%q", aws.ToString(api.input.Bucket), aws.ToString(api.input.ContentType))
	}
	if string(api.body) != "%PDF-1.4" {
		t.Fatalf("unexpected body %q", api.body)
	}
}

// TestUploadFileError verifies storage failures are wrapped.
func TestUploadFileError(t *testing.T) {
	boom := errors.New("boom")
	c := newClient(&fakePutter{err: boom}, "quizzes", "https://pub.example.dev")
	if _, err := c.UploadFile(context.Background(), uuid.New(), uuid.New(), "a.pdf", strings.NewReader("x")); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
