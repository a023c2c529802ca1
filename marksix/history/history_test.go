package history

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

const sampleCSV = `draw,date,n1,n2,n3,n4,n5,n6,special_number
24/002,2024-01-04,1,2,3,4,5,6,7
24/001,2024-01-02,1,8,9,10,11,12,
23/150,2023-12-30,13,2.0,14,15,16,17,1
`

func writeSample(t *testing.T) *FileSource {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return NewFileSource(path)
}

func TestFileSource(t *testing.T) {
	ctx := context.Background()
	if _, err := NewFileSource(filepath.Join(t.TempDir(), "missing.csv")).Load(ctx); !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("expecting ErrNotAvailable, but got %v", err)
	}
	src := writeSample(t)
	records, err := src.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expecting 3 records, but got %d", len(records))
	}
	if records[0].Draw != "24/002" || records[0].FormatDate() != "2024-01-04" || *records[0].Extra != 7 {
		t.Errorf("unexpected first record %+v", records[0])
	}
	if records[1].Extra != nil {
		t.Errorf("expecting no extra number, but got %d", *records[1].Extra)
	}
	if records[2].Numbers[1] != 2 {
		t.Errorf("expecting 2.0 parsed as 2, but got %d", records[2].Numbers[1])
	}
	if err := src.Save(records[:1]); err != nil {
		t.Fatal(err)
	}
	saved, err := src.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != 1 || saved[0].Numbers != records[0].Numbers {
		t.Errorf("unexpected saved records %+v", saved)
	}
}

func TestParseCSVErrors(t *testing.T) {
	for _, content := range []string{
		"date,n1,n2,n3,n4,n5\n2024-01-01,1,2,3,4,5\n",
		"date,n1,n2,n3,n4,n5,n6\nyesterday,1,2,3,4,5,6\n",
		"date,n1,n2,n3,n4,n5,n6\n2024-01-01,1,2,3,4,5,six\n",
	} {
		if _, err := ParseCSV(strings.NewReader(content)); err == nil {
			t.Errorf("expecting error parsing %q", content)
		}
	}
	records, err := ParseCSV(strings.NewReader(""))
	if err != nil || len(records) != 0 {
		t.Errorf("expecting no records, but got %v, %v", records, err)
	}
}

func TestMainFrequencies(t *testing.T) {
	records, err := ParseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	counts := MainFrequencies(records)
	if len(counts) != 16 {
		t.Fatalf("expecting 16 distinct numbers, but got %d", len(counts))
	}
	// 1 and 2 are drawn twice, 1 is first seen in column n1
	expected := []Count{{1, 2}, {2, 2}, {13, 1}, {8, 1}, {3, 1}}
	for i, c := range expected {
		if counts[i] != c {
			t.Errorf("position %d: expecting %+v, but got %+v", i, c, counts[i])
		}
	}
	drawn, extra := NumberFrequency(records, 1)
	if drawn != 2 || extra != 1 {
		t.Errorf("expecting 2/1, but got %d/%d", drawn, extra)
	}
	histogram := Histogram(records)
	if histogram[2] != 2 || histogram[49] != 0 {
		t.Errorf("unexpected histogram %v", histogram)
	}
}

func TestScrapeRefresher(t *testing.T) {
	page := `<html><body><table>
<tr><th>Draw</th><th>Date</th><th>Numbers</th><th>Extra</th></tr>
<tr><td>24/001</td><td>02/01/2024</td><td>1, 8, 9, 10, 11, 12</td><td>20</td></tr>
<tr><td>24/002</td><td>04/01/2024</td><td>1</td><td>2</td><td>3</td><td>4</td><td>5</td><td>6</td><td>7</td></tr>
<tr><td>bad</td><td>04/01/2024</td><td>1 2 3</td></tr>
<tr><td>24/003</td><td>06/01/2024</td><td>1 2 3 4 5 60</td></tr>
</table></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()
	file := NewFileSource(filepath.Join(t.TempDir(), "history.csv"))
	if err := NewScrapeRefresher(srv.URL, file, srv.Client()).Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	records, err := file.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expecting 2 records, but got %d", len(records))
	}
	if records[0].Draw != "24/002" || *records[0].Extra != 7 || records[1].Numbers[5] != 12 || *records[1].Extra != 20 {
		t.Errorf("unexpected records %+v", records)
	}
}

func TestCommandRefresher(t *testing.T) {
	ok, err := NewCommandRefresher("echo refreshed", t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := ok.Refresh(context.Background()); err != nil {
		t.Error(err)
	}
	fail, _ := NewCommandRefresher("false", "", 0)
	if err := fail.Refresh(context.Background()); err == nil {
		t.Error("expecting command error")
	}
	if _, err := NewCommandRefresher("  ", "", 0); err == nil {
		t.Error("expecting empty command error")
	}
}

func TestFrequencyChart(t *testing.T) {
	records, err := ParseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	buf, err := FrequencyChart(records)
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	v, err := f.GetCellValue(chartSheet, "B3")
	if err != nil {
		t.Fatal(err)
	}
	if v != "2" {
		t.Errorf("expecting number 2 drawn 2 times, but got %s", v)
	}
}
