package scheduler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bububa/marksix-agents/marksix/history"
)

type memorySource struct {
	records []history.Record
}

func (s *memorySource) Load(context.Context) ([]history.Record, error) {
	if len(s.records) == 0 {
		return nil, history.ErrNotAvailable
	}
	return s.records, nil
}

type document struct {
	chatID  int64
	name    string
	data    []byte
	caption string
}

type notifier struct {
	sent []document
	err  error
}

func (n *notifier) SendDocument(_ context.Context, chatID int64, name string, data []byte, caption string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, document{chatID, name, data, caption})
	return nil
}

type refresher struct {
	source *memorySource
	err    error
	calls  int
}

func (r *refresher) Refresh(context.Context) error {
	r.calls++
	if r.err != nil {
		return r.err
	}
	extra := 38
	r.source.records = append([]history.Record{{
		Draw:    "25/002",
		Date:    time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC),
		Numbers: [6]int{3, 14, 22, 27, 41, 49},
		Extra:   &extra,
	}}, r.source.records...)
	return nil
}

type archiver struct {
	keys []string
	body []byte
}

func (a *archiver) Put(_ context.Context, key string, body io.ReadSeeker, contentType string) error {
	if contentType != ChartContentType {
		return errors.New("unexpected content type " + contentType)
	}
	bs, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	a.keys = append(a.keys, key)
	a.body = bs
	return nil
}

func sampleRecords() []history.Record {
	extra := 7
	return []history.Record{{
		Draw:    "25/001",
		Date:    time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		Numbers: [6]int{1, 9, 15, 23, 34, 45},
		Extra:   &extra,
	}}
}

func fixedClock() time.Time {
	return time.Date(2025, 1, 4, 14, 0, 0, 0, time.UTC)
}

func TestRunOnce(t *testing.T) {
	source := &memorySource{records: sampleRecords()}
	n := new(notifier)
	r := &refresher{source: source}
	a := new(archiver)
	s, err := New("", source, n, 42, WithRefresher(r), WithArchiver(a, "charts/"), withClock(fixedClock), WithLocation(time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if r.calls != 1 || len(n.sent) != 1 {
		t.Fatalf("expecting 1 refresh and 1 document, but got %d / %d", r.calls, len(n.sent))
	}
	doc := n.sent[0]
	if doc.chatID != 42 || doc.name != "marksix-frequency-2025-01-04.xlsx" {
		t.Errorf("unexpected document %d %s", doc.chatID, doc.name)
	}
	if !bytes.HasPrefix(doc.data, []byte("PK")) {
		t.Error("expecting a zip encoded xlsx workbook")
	}
	expected := "📊 Mark Six number frequency over 2 draws (2025-01-02 to 2025-01-04)\nLatest draw 25/002 2025-01-04: 3, 14, 22, 27, 41, 49 + Extra: 38"
	if doc.caption != expected {
		t.Errorf("expecting caption %q, but got %q", expected, doc.caption)
	}
	if len(a.keys) != 1 || a.keys[0] != "charts/marksix-frequency-2025-01-04.xlsx" || !bytes.Equal(a.body, doc.data) {
		t.Errorf("unexpected archive %v", a.keys)
	}
}

func TestRunOnceRefreshFailure(t *testing.T) {
	source := &memorySource{records: sampleRecords()}
	n := new(notifier)
	s, err := New(DefaultSpec, source, n, 1, WithRefresher(&refresher{source: source, err: errors.New("upstream down")}))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("expecting stored history to be used, but got %v", err)
	}
	if len(n.sent) != 1 || !strings.Contains(n.sent[0].caption, "over 1 draws") {
		t.Errorf("unexpected documents %+v", n.sent)
	}
}

func TestRunOnceErrors(t *testing.T) {
	s, err := New(DefaultSpec, &memorySource{}, new(notifier), 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RunOnce(context.Background()); !errors.Is(err, history.ErrNotAvailable) {
		t.Errorf("expecting ErrNotAvailable, but got %v", err)
	}
	sendErr := errors.New("telegram down")
	s, _ = New(DefaultSpec, &memorySource{records: sampleRecords()}, &notifier{err: sendErr}, 1)
	if err := s.RunOnce(context.Background()); !errors.Is(err, sendErr) {
		t.Errorf("expecting send error, but got %v", err)
	}
	s.running.Store(true)
	if err := s.RunOnce(context.Background()); !errors.Is(err, ErrRunning) {
		t.Errorf("expecting ErrRunning, but got %v", err)
	}
}

func TestNew(t *testing.T) {
	if _, err := New("every day", &memorySource{}, new(notifier), 1); err == nil {
		t.Error("expecting invalid schedule error")
	}
	loc, err := time.LoadLocation("Asia/Hong_Kong")
	if err != nil {
		t.Skip(err)
	}
	s, err := New(DefaultSpec, &memorySource{}, new(notifier), 1, WithLocation(loc))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	next := s.Next().In(loc)
	if next.Hour() != 22 || next.Minute() != 0 {
		t.Errorf("expecting next run at 22:00 Hong Kong time, but got %v", next)
	}
	cancel()
	s.Stop()
}

func TestCaption(t *testing.T) {
	records := sampleRecords()
	records[0].Draw = ""
	records[0].Extra = nil
	expected := "📊 Mark Six number frequency over 1 draws (2025-01-02 to 2025-01-02)\nLatest draw 2025-01-02: 1, 9, 15, 23, 34, 45 + Extra: N/A"
	if got := Caption(records); got != expected {
		t.Errorf("expecting %q, but got %q", expected, got)
	}
}
