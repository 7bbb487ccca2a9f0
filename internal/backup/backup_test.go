package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/neonmatrix/neonmatrix/internal/database"
	"github.com/neonmatrix/neonmatrix/internal/model"
	"github.com/neonmatrix/neonmatrix/internal/store"
)

type fakeS3 struct {
	objects map[string][]byte
	putErr  error
	deleted []string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*input.Key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *input.Key)
	f.deleted = append(f.deleted, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func setupManager(t *testing.T) (*Manager, *fakeS3, *store.BackupStore) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	backups := store.NewBackupStore(db)
	cfg := Config{
		S3:         S3Config{Bucket: "test-bucket", Region: "auto", AccessKey: "k", SecretKey: "s"},
		DBPath:     dbPath,
		Passphrase: "test passphrase",
	}
	m := NewManager(cfg, db, backups, nil, slog.Default())

	fake := newFakeS3()
	m.client = fake
	return m, fake, backups
}

func TestManagerDisabledWithoutConfig(t *testing.T) {
	m := NewManager(Config{}, nil, nil, nil, slog.Default())
	if m.Enabled() {
		t.Error("manager enabled without S3 config")
	}
	if m.Status().State != StateDisabled {
		t.Errorf("state = %q, want disabled", m.Status().State)
	}
	if _, err := m.RunNow(context.Background()); err == nil {
		t.Error("RunNow succeeded while disabled")
	}
}

func TestRunNowUploadsEncryptedCopy(t *testing.T) {
	m, fake, backups := setupManager(t)

	id, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}

	record, err := backups.GetByID(id)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if record.Status != model.BackupStatusCompleted {
		t.Errorf("status = %q, want completed", record.Status)
	}
	if record.SizeBytes <= 0 {
		t.Error("size not recorded")
	}

	data, ok := fake.objects[record.S3Key]
	if !ok {
		t.Fatal("object not uploaded")
	}
	if int64(len(data)) != record.SizeBytes {
		t.Errorf("uploaded %d bytes, record says %d", len(data), record.SizeBytes)
	}

	// The upload must decrypt back to a SQLite database.
	plain, err := Decrypt(data, "test passphrase")
	if err != nil {
		t.Fatalf("decrypt upload: %v", err)
	}
	if !bytes.HasPrefix(plain, []byte("SQLite format 3")) {
		t.Error("decrypted upload is not a SQLite database")
	}

	if m.Status().State != StateIdle {
		t.Errorf("state = %q, want idle", m.Status().State)
	}
	if m.Status().LastBackup == nil {
		t.Error("last backup time not set")
	}
}

func TestRunNowMarksFailureOnUploadError(t *testing.T) {
	m, fake, backups := setupManager(t)
	fake.putErr = errors.New("bucket unavailable")

	if _, err := m.RunNow(context.Background()); err == nil {
		t.Fatal("expected upload error")
	}

	list, err := backups.List(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d records, want 1", len(list))
	}
	if list[0].Status != model.BackupStatusFailed {
		t.Errorf("status = %q, want failed", list[0].Status)
	}
	if list[0].ErrorMessage == "" {
		t.Error("error message not recorded")
	}
	if m.Status().State != StateError {
		t.Errorf("state = %q, want error", m.Status().State)
	}
}

func TestCleanupDeletesExpiredBackups(t *testing.T) {
	m, fake, backups := setupManager(t)

	id, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}
	record, _ := backups.GetByID(id)

	// Age the record past retention.
	m.cfg.RetentionDays = 0
	time.Sleep(10 * time.Millisecond)

	if err := m.Cleanup(context.Background()); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	if len(fake.deleted) != 1 || fake.deleted[0] != record.S3Key {
		t.Errorf("deleted keys = %v, want [%s]", fake.deleted, record.S3Key)
	}
	gone, err := backups.GetByID(id)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if gone != nil {
		t.Error("backup row not deleted")
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	m, _, _ := setupManager(t)

	id, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}

	restorePath := filepath.Join(t.TempDir(), "restored.db")
	m.cfg.DBPath = restorePath
	if err := m.Restore(context.Background(), id); err != nil {
		t.Fatalf("restore: %v", err)
	}

	db, err := database.Open(restorePath)
	if err != nil {
		t.Fatalf("open restored db: %v", err)
	}
	defer db.Close()

	restored := store.NewBackupStore(db)
	list, err := restored.List(10)
	if err != nil {
		t.Fatalf("list from restored db: %v", err)
	}
	if len(list) == 0 {
		t.Error("restored database missing backup records")
	}
}

func TestRestoreUnknownBackup(t *testing.T) {
	m, _, _ := setupManager(t)
	if err := m.Restore(context.Background(), 999); err == nil {
		t.Error("expected error for unknown backup id")
	}
}
