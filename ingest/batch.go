package ingest

import (
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/stratfolio/pkg/id"
	"github.com/rustyeddy/stratfolio/pkg/logger"
	"github.com/rustyeddy/stratfolio/strategy"
)

// MaxUploadSize is the largest accepted upload, inclusive.
const MaxUploadSize = 50 << 20

// FileInfo is what eligibility is decided on: no content is read.
type FileInfo struct {
	Name string
	Size int64
}

// Upload is one file handed to the batch.
type Upload struct {
	Name string
	Data []byte
}

func (u Upload) Info() FileInfo {
	return FileInfo{Name: u.Name, Size: int64(len(u.Data))}
}

// ParsedFile is the records one upload produced.
type ParsedFile struct {
	Name       string              `json:"name"`
	Strategies []strategy.Strategy `json:"strategies"`
	UploadedAt time.Time           `json:"uploadedAt"`
}

// BatchResult holds the surviving files and the rejected ones, each in
// upload order.
type BatchResult struct {
	Files  []ParsedFile
	Errors []FileError
}

// Strategies flattens the records of every surviving file.
func (r BatchResult) Strategies() []strategy.Strategy {
	var out []strategy.Strategy
	for _, f := range r.Files {
		out = append(out, f.Strategies...)
	}
	return out
}

// Normalizer runs batches. The zero value is usable.
type Normalizer struct {
	Workers        int   // concurrent files; 0 means one per CPU
	MaxUploadBytes int64 // 0 means MaxUploadSize
	IDFunc         func() string
	Now            func() time.Time
	Logger         *logger.Logger
}

var defaultNormalizer = &Normalizer{}

// CheckUploadEligible refuses files that are not .json or exceed
// MaxUploadSize.
func CheckUploadEligible(info FileInfo) error {
	return defaultNormalizer.CheckUploadEligible(info)
}

// CheckUploadEligible applies this normalizer's size limit.
func (n *Normalizer) CheckUploadEligible(info FileInfo) error {
	var reasons []string
	if !strings.EqualFold(filepath.Ext(info.Name), ".json") {
		reasons = append(reasons, "File must have .json extension")
	}
	if info.Size > n.maxBytes() {
		reasons = append(reasons, "File size must be less than 50MB")
	}
	if len(reasons) > 0 {
		return &EligibilityError{Name: info.Name, Reasons: reasons}
	}
	return nil
}

// NormalizeBatch parses uploads with the default normalizer.
func NormalizeBatch(uploads []Upload) (BatchResult, error) {
	return defaultNormalizer.NormalizeBatch(uploads)
}

// NormalizeBatch checks and parses every upload concurrently. A rejected
// file is reported in BatchResult.Errors; a *BatchError is returned only
// when uploads were given and none of them survived.
func (n *Normalizer) NormalizeBatch(uploads []Upload) (BatchResult, error) {
	files := make([]*ParsedFile, len(uploads))
	errs := make([]error, len(uploads))

	var g errgroup.Group
	g.SetLimit(n.workers())
	for i, up := range uploads {
		i, up := i, up
		g.Go(func() error {
			files[i], errs[i] = n.parseFile(up)
			return nil
		})
	}
	_ = g.Wait()

	res := BatchResult{Files: []ParsedFile{}, Errors: []FileError{}}
	for i, up := range uploads {
		if errs[i] != nil {
			res.Errors = append(res.Errors, FileError{Name: up.Name, Err: errs[i]})
			continue
		}
		res.Files = append(res.Files, *files[i])
	}

	log := n.log().WithFields(map[string]interface{}{
		"files":    len(uploads),
		"parsed":   len(res.Files),
		"rejected": len(res.Errors),
	})
	for _, fe := range res.Errors {
		n.log().WithField("file", fe.Name).WithError(fe.Err).Warn("upload rejected")
	}

	if len(uploads) > 0 && len(res.Files) == 0 {
		log.Error("no upload could be parsed")
		return res, &BatchError{Errors: res.Errors}
	}
	log.Info("batch normalized")
	return res, nil
}

func (n *Normalizer) parseFile(up Upload) (*ParsedFile, error) {
	if err := n.CheckUploadEligible(up.Info()); err != nil {
		return nil, err
	}
	ss, err := n.NormalizePayload(up.Data, up.Name)
	if err != nil {
		return nil, err
	}
	return &ParsedFile{Name: up.Name, Strategies: ss, UploadedAt: n.now()}, nil
}

// IsRejected reports whether err came from validation or eligibility
// rather than from I/O around the batch.
func IsRejected(err error) bool {
	var v *ValidationError
	var e *EligibilityError
	var b *BatchError
	return errors.As(err, &v) || errors.As(err, &e) || errors.As(err, &b)
}

func (n *Normalizer) workers() int {
	if n.Workers > 0 {
		return n.Workers
	}
	return runtime.NumCPU()
}

func (n *Normalizer) maxBytes() int64 {
	if n.MaxUploadBytes > 0 {
		return n.MaxUploadBytes
	}
	return MaxUploadSize
}

func (n *Normalizer) newID() string {
	if n.IDFunc != nil {
		return n.IDFunc()
	}
	return id.New()
}

func (n *Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now().UTC()
}

func (n *Normalizer) log() *logger.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return logger.Nop()
}
