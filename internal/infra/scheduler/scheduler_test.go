package scheduler

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"attendance_exception_bot/internal/app"
	"attendance_exception_bot/internal/domain/attendance"
	"attendance_exception_bot/internal/infra/storage"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

type sentMessage struct {
	chatID int64
	text   string
}

type sentDocument struct {
	chatID   int64
	fileName string
	data     []byte
	caption  string
}

type fakeClient struct {
	sent   []sentMessage
	docs   []sentDocument
	err    error
	docErr error
}

func (f *fakeClient) SendMessage(chatID int64, text string, _ *telebot.SendOptions) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeClient) SendDocument(chatID int64, fileName string, data []byte, caption string) error {
	if f.docErr != nil {
		return f.docErr
	}
	f.docs = append(f.docs, sentDocument{chatID: chatID, fileName: fileName, data: data, caption: caption})
	return nil
}

func newService(t *testing.T) *app.AttendanceService {
	t.Helper()
	kst := time.FixedZone("KST", 9*60*60)
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, kst)
	store := app.NewRecordStore(storage.NewMemoryBackend(),
		app.WithClock(func() time.Time { return now }),
		app.WithLocation(kst),
	)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, typ := range []attendance.Type{attendance.TypeLate, attendance.TypeOuting} {
		_, err := store.Add(context.Background(), attendance.Candidate{
			StudentName:    "Kim",
			StudentClass:   "3-1",
			AttendanceType: typ,
			Reason:         "clinic",
		})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	return app.NewAttendanceService(store, app.NewQueryEngine(30, kst))
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestSendDigestDeliversToTeacher(t *testing.T) {
	client := &fakeClient{}
	s := NewWeeklyDigestScheduler(newService(t), client, 42, quietLogger(), "0 17 * * 5")

	if err := s.SendDigest(time.Time{}); err != nil {
		t.Fatalf("SendDigest: %v", err)
	}
	if len(client.sent) != 1 || client.sent[0].chatID != 42 {
		t.Fatalf("unexpected deliveries %+v", client.sent)
	}
	msg := client.sent[0].text
	if !strings.Contains(msg, "2024-05-03 ~ 2024-05-10") || !strings.Contains(msg, "전체 2건") {
		t.Fatalf("unexpected digest %q", msg)
	}

	if len(client.docs) != 1 {
		t.Fatalf("expected the weekly export attached, got %d documents", len(client.docs))
	}
	doc := client.docs[0]
	if doc.chatID != 42 || doc.fileName != "attendance_2024-05-10.csv" {
		t.Fatalf("unexpected document %s to %d", doc.fileName, doc.chatID)
	}
	lines := strings.Split(strings.TrimRight(string(doc.data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got %q", doc.data)
	}
}

func TestSendDigestSkipsAttachmentForEmptyWeek(t *testing.T) {
	client := &fakeClient{}
	s := NewWeeklyDigestScheduler(newService(t), client, 42, quietLogger(), "0 17 * * 5")

	if err := s.SendDigest(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("SendDigest: %v", err)
	}
	if len(client.sent) != 1 || len(client.docs) != 0 {
		t.Fatalf("expected summary only, got %d messages and %d documents", len(client.sent), len(client.docs))
	}
}

func TestSendDigestReportsAttachmentFailure(t *testing.T) {
	client := &fakeClient{docErr: errors.New("file too big")}
	s := NewWeeklyDigestScheduler(newService(t), client, 42, quietLogger(), "0 17 * * 5")

	if err := s.SendDigest(time.Time{}); err == nil {
		t.Fatalf("expected attachment error")
	}
}

func TestSendDigestPropagatesClientError(t *testing.T) {
	client := &fakeClient{err: errors.New("chat not found")}
	s := NewWeeklyDigestScheduler(newService(t), client, 42, quietLogger(), "0 17 * * 5")

	if err := s.SendDigest(time.Time{}); err == nil {
		t.Fatalf("expected error from client")
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := NewWeeklyDigestScheduler(newService(t), &fakeClient{}, 42, quietLogger(), "every friday")
	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatalf("expected invalid cron spec to fail")
	}
}
