package markdown

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/harrisonrobin/workbench/pkg/model"
)

// DefaultBucket is the bucket of tasks that appear before any heading.
const DefaultBucket = "Docs"

// Kind tags the classification of a single Markdown line.
type Kind int

const (
	Other Kind = iota
	Heading
	CheckboxBullet
	PlainBullet
)

func (k Kind) String() string {
	switch k {
	case Heading:
		return "heading"
	case CheckboxBullet:
		return "checkbox"
	case PlainBullet:
		return "bullet"
	default:
		return "other"
	}
}

// Line is a classified Markdown line. Text is the heading or item text,
// already trimmed. Done is only meaningful for CheckboxBullet.
type Line struct {
	Kind Kind
	Text string
	Done bool
}

var (
	headingRegex  = regexp.MustCompile(`^#{1,3}\s+(.+)$`)
	checkboxRegex = regexp.MustCompile(`^[-*]\s+\[([ xX])\]\s+(.+)$`)
	bulletRegex   = regexp.MustCompile(`^[-*]\s+(.+)$`)
)

// Classify tests line against heading, checkbox and plain bullet patterns,
// in that order, and reports the first match.
func Classify(line string) Line {
	line = strings.TrimSpace(line)
	if m := headingRegex.FindStringSubmatch(line); m != nil {
		return Line{Kind: Heading, Text: strings.TrimSpace(m[1])}
	}
	if m := checkboxRegex.FindStringSubmatch(line); m != nil {
		return Line{Kind: CheckboxBullet, Text: strings.TrimSpace(m[2]), Done: strings.EqualFold(m[1], "x")}
	}
	if m := bulletRegex.FindStringSubmatch(line); m != nil {
		return Line{Kind: PlainBullet, Text: strings.TrimSpace(m[1])}
	}
	return Line{Kind: Other}
}

// DraftTask is a task found in Markdown, before normalization.
type DraftTask struct {
	Title  string
	Col    model.Column
	Bucket string
}

// Input converts d into a TaskInput for the normalizer.
func (d DraftTask) Input() model.TaskInput {
	title, bucket := d.Title, d.Bucket
	return model.TaskInput{Title: &title, Col: string(d.Col), Bucket: &bucket}
}

type Options struct {
	// DefaultBucket is the bucket before the first heading. Empty means "Docs".
	DefaultBucket string
}

func (o Options) bucket() string {
	if o.DefaultBucket != "" {
		return o.DefaultBucket
	}
	return DefaultBucket
}

// Extract returns the tasks found in text, in line order.
func Extract(text string, opts Options) []DraftTask {
	drafts, _ := ExtractReader(strings.NewReader(text), opts)
	return drafts
}

// ExtractReader reads Markdown line by line from r. Both "\n" and "\r\n" end
// a line and lines may be of any length. A nil reader yields no tasks. On a
// read error the tasks found so far are returned with the error.
func ExtractReader(r io.Reader, opts Options) ([]DraftTask, error) {
	drafts := []DraftTask{}
	if r == nil {
		return drafts, nil
	}

	reader := bufio.NewReader(r)
	bucket := opts.bucket()

	for {
		raw, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return drafts, err
		}
		if raw == "" && err == io.EOF {
			return drafts, nil
		}

		line := Classify(strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r"))
		switch line.Kind {
		case Heading:
			bucket = line.Text
		case CheckboxBullet:
			col := model.ColumnTodo
			if line.Done {
				col = model.ColumnDone
			}
			drafts = append(drafts, DraftTask{Title: line.Text, Col: col, Bucket: bucket})
		case PlainBullet:
			drafts = append(drafts, DraftTask{Title: line.Text, Col: model.ColumnTodo, Bucket: bucket})
		}

		if err == io.EOF {
			return drafts, nil
		}
	}
}

func extractFile(path string, opts Options) ([]DraftTask, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ExtractReader(f, opts)
}

// ExtractFiles extracts tasks from each file in turn. Every file starts over
// from opts.DefaultBucket.
func ExtractFiles(paths []string, opts Options) ([]DraftTask, error) {
	var all []DraftTask
	for _, path := range paths {
		drafts, err := extractFile(path, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, drafts...)
	}
	return all, nil
}

// FilterBucket returns the drafts that belong to bucket.
func FilterBucket(drafts []DraftTask, bucket string) []DraftTask {
	var filtered []DraftTask
	for _, d := range drafts {
		if d.Bucket == bucket {
			filtered = append(filtered, d)
		}
	}
	return filtered
}
