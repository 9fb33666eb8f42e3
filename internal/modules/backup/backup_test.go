package backup

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/pdfsummarizer/core/internal/config"
	"github.com/pdfsummarizer/core/internal/models"
)

type staticSource struct {
	records []models.SummaryRecord
	err     error
}

func (s staticSource) All(context.Context) ([]models.SummaryRecord, error) {
	return s.records, s.err
}

type memUploader struct {
	key         string
	body        []byte
	contentType string
	err         error
}

func (u *memUploader) Upload(_ context.Context, key string, body []byte, contentType string) error {
	u.key, u.body, u.contentType = key, body, contentType
	return u.err
}

func TestRunUploadsArchive(t *testing.T) {
	created := time.Date(2025, time.March, 4, 5, 6, 7, 0, time.UTC)
	src := staticSource{records: []models.SummaryRecord{
		{ID: 1, Filename: "a.pdf", SummaryText: "sum", SummaryType: "brief", PageCount: 2, WordCount: 4, CreatedAt: created},
	}}
	up := &memUploader{}
	svc := NewService(src, up, "/docsum/history/", nil)
	svc.now = func() time.Time { return time.Date(2025, time.June, 9, 10, 11, 12, 0, time.UTC) }

	key, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := "docsum/history/2025/06/backup-2025-06-09T10-11-12.zip"
	if key != want || up.key != want {
		t.Fatalf("key = %q, uploaded %q, want %q", key, up.key, want)
	}
	if up.contentType != zipContentType {
		t.Errorf("content type = %q", up.contentType)
	}

	zr, err := zip.NewReader(bytes.NewReader(up.body), int64(len(up.body)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != archiveEntry {
		t.Fatalf("archive entries = %v", zr.File)
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if len(rows) != 1 || rows[0]["filename"] != "a.pdf" || rows[0]["created_at"] != "2025-03-04 05:06:07" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestRunEmptyHistoryWritesEmptyArray(t *testing.T) {
	up := &memUploader{}
	if _, err := NewService(staticSource{}, up, "", nil).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(up.body), int64(len(up.body)))
	if err != nil {
		t.Fatal(err)
	}
	rc, _ := zr.File[0].Open()
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "[]" {
		t.Fatalf("entry = %s", data)
	}
}

func TestRunPropagatesErrors(t *testing.T) {
	if _, err := NewService(staticSource{err: errors.New("db down")}, &memUploader{}, "", nil).Run(context.Background()); err == nil {
		t.Error("source error should fail the run")
	}
	if _, err := NewService(staticSource{}, &memUploader{err: errors.New("denied")}, "", nil).Run(context.Background()); err == nil {
		t.Error("upload error should fail the run")
	}
	if _, err := NewService(staticSource{}, nil, "", nil).Run(context.Background()); err == nil {
		t.Error("missing uploader should fail the run")
	}
}

func TestNewS3UploaderRequiresBucketAndRegion(t *testing.T) {
	if _, err := NewS3Uploader(config.BackupConfig{Bucket: "b"}); err == nil {
		t.Fatal("missing region should be rejected")
	}
	up, err := NewS3Uploader(config.BackupConfig{
		Bucket:          "b",
		Region:          "us-east-1",
		Endpoint:        "minio.local:9000",
		AccessKeyID:     "ak",
		SecretAccessKey: "sk",
	})
	if err != nil || up.bucket != "b" {
		t.Fatalf("uploader = %+v, err = %v", up, err)
	}
	if !up.client.Options().UsePathStyle {
		t.Error("custom endpoint should force path-style addressing")
	}
}
