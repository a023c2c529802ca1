package history

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/bububa/marksix-agents/marksix"
)

// Refresher updates the stored history from an upstream
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefresherFunc adapts a function to Refresher
type RefresherFunc func(ctx context.Context) error

// Refresh implements Refresher
func (f RefresherFunc) Refresh(ctx context.Context) error {
	return f(ctx)
}

// Mirror runs r then copies the refreshed file history into the bucket
func Mirror(r Refresher, file *FileSource, bucket *S3Source) Refresher {
	return RefresherFunc(func(ctx context.Context) error {
		if err := r.Refresh(ctx); err != nil {
			return err
		}
		records, err := file.Load(ctx)
		if err != nil {
			return err
		}
		return bucket.Save(ctx, records)
	})
}

// DefaultCommandTimeout bounds a refresh command run
const DefaultCommandTimeout = 5 * time.Minute

// CommandRefresher runs an external update script
type CommandRefresher struct {
	name    string
	args    []string
	dir     string
	timeout time.Duration
}

var _ Refresher = (*CommandRefresher)(nil)

// NewCommandRefresher parses a command line such as "python update_history.py"
func NewCommandRefresher(command string, dir string, timeout time.Duration) (*CommandRefresher, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty refresh command")
	}
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &CommandRefresher{
		name:    fields[0],
		args:    fields[1:],
		dir:     dir,
		timeout: timeout,
	}, nil
}

// Refresh implements Refresher
func (r *CommandRefresher) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, r.name, r.args...)
	cmd.Dir = r.dir
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("refresh command %s failed: %w: %s", r.name, err, strings.TrimSpace(output.String()))
	}
	return nil
}

var numberRegex = regexp.MustCompile(`\d+`)

// ScrapeRefresher downloads a results page, reads its result table and replaces the csv file
type ScrapeRefresher struct {
	url    string
	file   *FileSource
	client *http.Client
}

var _ Refresher = (*ScrapeRefresher)(nil)

func NewScrapeRefresher(url string, file *FileSource, client *http.Client) *ScrapeRefresher {
	if client == nil {
		client = http.DefaultClient
	}
	return &ScrapeRefresher{
		url:    url,
		file:   file,
		client: client,
	}
}

// Refresh implements Refresher
func (r *ScrapeRefresher) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %s", r.url, resp.Status)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return err
	}
	records := ScrapeRecords(doc)
	if len(records) == 0 {
		return fmt.Errorf("no draw found at %s", r.url)
	}
	return r.file.Save(records)
}

// ScrapeRecords reads table rows shaped as: draw | date | numbers... | extra.
// Numbers may be spread over cells or grouped in one cell, rows without a date
// and 6 or 7 valid numbers are skipped.
func ScrapeRecords(doc *goquery.Document) []Record {
	var records []Record
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td").Map(func(_ int, cell *goquery.Selection) string {
			return strings.TrimSpace(cell.Text())
		})
		if len(cells) < 3 {
			return
		}
		date, err := parseDate(cells[1])
		if err != nil {
			return
		}
		var numbers []int
		for _, cell := range cells[2:] {
			for _, v := range numberRegex.FindAllString(cell, -1) {
				n, _ := strconv.Atoi(v)
				numbers = append(numbers, n)
			}
		}
		if len(numbers) != marksix.NumbersCount && len(numbers) != marksix.NumbersCount+1 {
			return
		}
		record := Record{
			Draw: cells[0],
			Date: date,
		}
		copy(record.Numbers[:], numbers)
		if len(numbers) > marksix.NumbersCount {
			extra := numbers[marksix.NumbersCount]
			record.Extra = &extra
		}
		for _, n := range numbers {
			if n < marksix.MinNumber || n > marksix.MaxNumber {
				return
			}
		}
		records = append(records, record)
	})
	SortNewestFirst(records)
	return records
}
