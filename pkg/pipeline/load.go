package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/moocn/pkg/dataset"
	"github.com/matzehuels/moocn/pkg/errors"
	"github.com/matzehuels/moocn/pkg/observability"
)

// source returns the raw dataset bytes, their format and a default name.
func source(opts Options) ([]byte, dataset.Format, string, error) {
	if opts.Data != nil {
		return opts.Data, opts.Format, opts.Name, nil
	}
	format := opts.Format
	if format == "" {
		f, err := dataset.FormatFromPath(opts.Path)
		if err != nil {
			return nil, "", "", err
		}
		format = f
	}
	raw, err := os.ReadFile(opts.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", "", errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset file %s", opts.Path)
		}
		return nil, "", "", errors.Wrap(errors.ErrCodeStorage, err, "read %s", opts.Path)
	}
	name := opts.Name
	if name == "" {
		base := filepath.Base(opts.Path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return raw, format, name, nil
}

// Load reads and validates the dataset named by opts, without caching.
func Load(ctx context.Context, opts Options) (*dataset.Dataset, error) {
	raw, format, name, err := source(opts)
	if err != nil {
		return nil, err
	}
	return decode(ctx, raw, format, name, opts)
}

func decode(ctx context.Context, raw []byte, format dataset.Format, name string, opts Options) (*dataset.Dataset, error) {
	label := opts.Path
	if label == "" {
		label = name
	}
	observability.Pipeline().OnLoadStart(ctx, label)
	start := time.Now()

	var (
		d   *dataset.Dataset
		err error
	)
	if format == dataset.FormatXLSX {
		d, err = dataset.ReadXLSX(bytes.NewReader(raw), opts.Sheet)
		if err == nil {
			d.Normalize()
			err = d.Validate()
		}
	} else {
		d, err = dataset.Decode(bytes.NewReader(raw), format)
	}
	if err != nil {
		observability.Pipeline().OnLoadComplete(ctx, label, 0, 0, time.Since(start), err)
		return nil, err
	}
	if name != "" {
		d.Name = name
	}
	observability.Pipeline().OnLoadComplete(ctx, label, d.Len(), d.SeriesCount(), time.Since(start), nil)
	return d, nil
}
