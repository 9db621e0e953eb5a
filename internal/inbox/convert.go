package inbox

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jbec2912-cell/csv-filter-tool/internal/core"
)

func stemOf(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// ConvertFile converts the export at in and writes the result to out.
// The output is assembled in memory and renamed into place, so out is
// never left half written. req.Body and req.FileName are filled from in.
func ConvertFile(ctx context.Context, svc *core.Service, req core.Request, in, out string) (*core.Result, error) {
	f, err := os.Open(in)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	req.FileName = in
	req.Body = f

	var buf bytes.Buffer
	res, err := svc.Convert(ctx, req, &buf)
	if err != nil {
		return nil, err
	}

	if err := writeAtomic(out, buf.Bytes()); err != nil {
		return nil, err
	}
	return res, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".csvfilter-*")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// ServiceConverter returns a ConvertFunc that writes each input to
// outputDir as "<input stem>_<output name>".
func ServiceConverter(svc *core.Service, outputDir string) ConvertFunc {
	return func(ctx context.Context, path string) (string, error) {
		settings := svc.Settings()
		format, err := core.ParseFormat(settings.Format)
		if err != nil {
			return "", err
		}
		dir := outputDir
		if dir == "" {
			dir = filepath.Dir(path)
		}
		name := stemOf(filepath.Base(path)) + "_" + core.OutputFileName(settings.OutputName, format)
		out := filepath.Join(dir, name)

		if _, err := ConvertFile(ctx, svc, core.Request{Source: core.SourceInbox}, path, out); err != nil {
			return "", err
		}
		return out, nil
	}
}
