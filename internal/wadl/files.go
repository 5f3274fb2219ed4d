package wadl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wadling/wadling/internal/lexicon"
)

// ErrIOFailure matches every error raised while writing output files.
var ErrIOFailure = errors.New("io failure")

// IOError reports a failed write of one output file.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("wadl: write %s: %v", e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }
func (e *IOError) Is(target error) bool { return target == ErrIOFailure }

// FileName is the output file of one resource: {dir}/{prefixed id}.wadl.
func FileName(dir, id, prefix string) string {
	return filepath.Join(dir, ApplyPrefix(id, prefix)+".wadl")
}

// RenderFiles writes one standalone document per resource into dir and
// returns the written paths in lexicon order.
//
// An empty lexicon writes nothing and does not look at dir. Otherwise dir must
// be an existing directory ("path invalid") and the whole lexicon is validated
// before the first write. Files are written one after another; a failed write
// stops the run and leaves the files already written in place.
func (t *Translator) RenderFiles(resources any, dir, prefix string) ([]string, error) {
	res, err := checkFiles(resources, dir)
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(res))
	for _, r := range res {
		name := FileName(dir, r.ID, prefix)
		if err := WriteFile(name, t.Document(lexicon.Resources{r}, prefix)); err != nil {
			return written, err
		}
		written = append(written, name)
	}
	return written, nil
}

// PlanFiles returns the paths RenderFiles would write, after the same checks,
// without writing anything.
func PlanFiles(resources any, dir, prefix string) ([]string, error) {
	res, err := checkFiles(resources, dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(res))
	for _, r := range res {
		names = append(names, FileName(dir, r.ID, prefix))
	}
	return names, nil
}

func checkFiles(resources any, dir string) (lexicon.Resources, error) {
	m, err := lexicon.AsMap(resources)
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, nil
	}
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return nil, lexicon.NewInvalidArgument(lexicon.ReasonPathInvalid)
	}
	return lexicon.ParseMap(m)
}

// WriteFile creates or replaces name through a temp file and rename, so a
// reader never sees a half-written document. Failures are *IOError.
func WriteFile(name, content string) error {
	tmp := name + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return &IOError{Path: name, Err: err}
	}
	if err := os.Rename(tmp, name); err != nil {
		_ = os.Remove(tmp)
		return &IOError{Path: name, Err: err}
	}
	return nil
}
