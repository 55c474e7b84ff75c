package delivery

import (
	"context"
	"errors"
	"io"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/config"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/report"
)

func sampleDoc() *report.Document {
	return &report.Document{
		Title:       "竞品分析: FinTech",
		Markdown:    "# Report\n",
		HTML:        "<h1>Report</h1>",
		GeneratedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

type recordingChannel struct {
	destinations []string
	err          error
}

func (r *recordingChannel) Deliver(_ context.Context, _ *report.Document, destination string) error {
	r.destinations = append(r.destinations, destination)
	return r.err
}

func TestRouter_Routes(t *testing.T) {
	email := &recordingChannel{}
	object := &recordingChannel{}
	r := NewRouter(email, object)

	require.NoError(t, r.Deliver(context.Background(), sampleDoc(), "pm@example.com"))
	require.NoError(t, r.Deliver(context.Background(), sampleDoc(), " s3://reports/fintech/ "))

	assert.Equal(t, []string{"pm@example.com"}, email.destinations)
	assert.Equal(t, []string{"s3://reports/fintech/"}, object.destinations)
}

func TestRouter_Errors(t *testing.T) {
	r := NewRouter(nil, nil)

	err := r.Deliver(context.Background(), sampleDoc(), "pm@example.com")
	assert.ErrorIs(t, err, ErrUnsupportedDestination)

	err = r.Deliver(context.Background(), sampleDoc(), "ftp://somewhere")
	assert.ErrorIs(t, err, ErrUnsupportedDestination)

	cause := errors.New("connection refused")
	r = NewRouter(&recordingChannel{err: cause}, nil)
	err = r.Deliver(context.Background(), sampleDoc(), "pm@example.com")
	assert.ErrorIs(t, err, cause)
}

func TestSMTPChannel_Deliver(t *testing.T) {
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  string
		gotAuth smtp.Auth
	)
	ch := NewSMTPChannel(config.SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "bot@example.com", Password: "pw"})
	ch.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, string(msg)
		return nil
	}

	require.NoError(t, ch.Deliver(context.Background(), sampleDoc(), "pm@example.com"))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, "bot@example.com", gotFrom)
	assert.Equal(t, []string{"pm@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "To: pm@example.com\r\n")
	assert.Contains(t, gotMsg, "Subject: =?utf-8?q?")
	assert.Contains(t, gotMsg, "multipart/alternative")
	assert.Contains(t, gotMsg, "# Report")
	assert.Contains(t, gotMsg, "<h1>Report</h1>")
}

func TestSMTPChannel_SendError(t *testing.T) {
	ch := NewSMTPChannel(config.SMTPConfig{Host: "smtp.example.com", Port: 25})
	ch.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("554 rejected")
	}
	err := ch.Deliver(context.Background(), sampleDoc(), "pm@example.com")
	assert.ErrorContains(t, err, "554 rejected")
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	data, _ := io.ReadAll(in.Body)
	f.body = string(data)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Channel_Deliver(t *testing.T) {
	tests := []struct {
		dest        string
		wantBucket  string
		wantKey     string
		wantBody    string
		contentType string
	}{
		{"s3://reports/fintech/", "reports", "fintech/competitor-report-20260301-093000.html", "<h1>Report</h1>", "text/html; charset=utf-8"},
		{"s3://reports/latest.md", "reports", "latest.md", "# Report\n", "text/markdown; charset=utf-8"},
		{"s3://reports", "reports", "competitor-report-20260301-093000.html", "<h1>Report</h1>", "text/html; charset=utf-8"},
	}
	for _, tt := range tests {
		t.Run(tt.dest, func(t *testing.T) {
			p := &fakePutter{}
			ch := &S3Channel{client: p}
			require.NoError(t, ch.Deliver(context.Background(), sampleDoc(), tt.dest))

			assert.Equal(t, tt.wantBucket, *p.input.Bucket)
			assert.Equal(t, tt.wantKey, *p.input.Key)
			assert.Equal(t, tt.contentType, *p.input.ContentType)
			assert.Equal(t, tt.wantBody, p.body)
		})
	}
}

func TestS3Channel_Error(t *testing.T) {
	ch := &S3Channel{client: &fakePutter{err: errors.New("AccessDenied")}}
	err := ch.Deliver(context.Background(), sampleDoc(), "s3://reports/x.html")
	assert.ErrorContains(t, err, "AccessDenied")
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := ParseS3URI("s3://b/a/b/c.html")
	require.NoError(t, err)
	assert.Equal(t, "b", bucket)
	assert.Equal(t, "a/b/c.html", key)

	_, _, err = ParseS3URI("s3:///key")
	assert.ErrorIs(t, err, ErrUnsupportedDestination)

	_, _, err = ParseS3URI("https://b/key")
	assert.True(t, strings.Contains(err.Error(), "not an s3 uri"))
}
