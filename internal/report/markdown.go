package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/markdown"
)

// WriteMarkdown renders a human-readable summary of resp.
func WriteMarkdown(w io.Writer, resp Response) error {
	md := markdown.NewMarkdown(w)

	md.H1("Driver License Extraction")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Request", "`" + resp.RequestID + "`"},
			{"Document", resp.DocumentType},
			{"Status", string(resp.Status)},
		},
	})
	md.PlainText("")

	switch resp.Status {
	case StatusFailed:
		md.Warningf("Extraction failed: %s", lastWarning(resp.Warnings))
	case StatusPartial:
		md.Note("Some fields are missing or need manual review.")
	}
	md.PlainText("")

	md.H2("Fields")
	md.PlainText("")
	rows := make([][]string, 0, len(FieldNames))
	for _, name := range FieldNames {
		f := resp.Fields[name]
		rows = append(rows, []string{name, formatValue(f), fmt.Sprintf("%.3f", f.Confidence)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value", "Confidence"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(resp.Warnings) > 0 {
		md.H2("Warnings")
		md.PlainText("")
		md.BulletList(resp.Warnings...)
		md.PlainText("")
	}

	if len(resp.Images) > 0 {
		md.H2("Images")
		md.PlainText("")
		rows := make([][]string, 0, len(resp.Images))
		for _, img := range resp.Images {
			url := "-"
			if img.StorageURL != nil {
				url = *img.StorageURL
			}
			rows = append(rows, []string{img.Role, url, "`" + img.ContentHash + "`"})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Role", "Storage URL", "SHA-256"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	return md.Build()
}

func formatValue(f Field) string {
	if f.Empty() {
		return "-"
	}
	switch v := f.Value.(type) {
	case []string:
		return strings.Join(v, ", ")
	default:
		return fmt.Sprint(v)
	}
}

func lastWarning(warnings []string) string {
	if len(warnings) == 0 {
		return "unknown reason"
	}
	return warnings[len(warnings)-1]
}
