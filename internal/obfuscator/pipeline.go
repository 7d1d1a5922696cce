package obfuscator

import (
	"context"
	"fmt"
	"os"
	"time"

	"gdpr-obfuscator/internal/audit"
	"gdpr-obfuscator/internal/masking"
	"gdpr-obfuscator/internal/reference"
	"gdpr-obfuscator/internal/scratch"
	"gdpr-obfuscator/internal/storage"
	"gdpr-obfuscator/internal/tabular"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Result describes a completed run.
type Result struct {
	RunID             string                   `json:"run_id"`
	Source            reference.Reference      `json:"source"`
	DestinationBucket string                   `json:"destination_bucket"`
	DestinationKey    string                   `json:"destination_key"`
	Rows              int                      `json:"rows"`
	MaskedValues      int                      `json:"masked_values"`
	SkippedNulls      int                      `json:"skipped_nulls"`
	Metadata          storage.ResponseMetadata `json:"ResponseMetadata"`
}

// DestinationURI renders the uploaded object as an s3:// URI.
func (r *Result) DestinationURI() string {
	if r.DestinationKey == "" {
		return ""
	}
	return fmt.Sprintf("s3://%s/%s", r.DestinationBucket, r.DestinationKey)
}

// Pipeline runs requests one at a time against a Store: download, load,
// mask, save, upload.
type Pipeline struct {
	store      storage.Store
	engine     *masking.Engine
	dest       Destination
	scratchDir string
	logger     *logrus.Logger
	recorder   audit.Recorder
}

type Option func(*Pipeline)

func WithEngine(e *masking.Engine) Option {
	return func(p *Pipeline) { p.engine = e }
}

func WithDestination(d Destination) Option {
	return func(p *Pipeline) { p.dest = d }
}

// WithScratchDir sets the directory per-run scratch arenas are created in.
func WithScratchDir(dir string) Option {
	return func(p *Pipeline) { p.scratchDir = dir }
}

func WithLogger(l *logrus.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

func WithRecorder(r audit.Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

func New(store storage.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:    store,
		engine:   masking.New(),
		dest:     DefaultDestination(),
		logger:   logrus.StandardLogger(),
		recorder: audit.NopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle is the invocation entry point: it decodes a JSON event and runs it.
func (p *Pipeline) Handle(ctx context.Context, raw []byte) (*Result, error) {
	req, err := ParseEvent(raw)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, req)
}

// Run obfuscates one object. A failing stage stops the run and its error is
// returned as is; nothing is uploaded after a failure.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()
	res := &Result{RunID: uuid.NewString()}
	log := p.logger.WithField("run_id", res.RunID)

	err := p.run(ctx, req, res, log)
	p.record(ctx, req, res, err, started, log)

	if err != nil {
		log.WithError(err).Error("obfuscation failed")
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"destination": res.DestinationURI(),
		"rows":        res.Rows,
		"masked":      res.MaskedValues,
		"status":      res.Metadata.HTTPStatusCode,
		"duration":    time.Since(started).String(),
	}).Info("obfuscation complete")
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, req Request, res *Result, log *logrus.Entry) error {
	if err := req.Validate(); err != nil {
		return err
	}

	ref, err := reference.Parse(req.FileToObfuscate)
	if err != nil {
		return err
	}
	if err := ref.Validate(); err != nil {
		return err
	}
	res.Source = ref
	bucket, key := p.dest.Resolve(ref)
	log = log.WithFields(logrus.Fields{"bucket": ref.Bucket, "key": ref.Key})

	arena, err := scratch.New(p.scratchDir, res.RunID)
	if err != nil {
		return err
	}
	defer func() {
		if err := arena.Release(); err != nil {
			log.WithError(err).WithField("dir", arena.Dir()).Warn("failed to remove scratch directory")
		}
	}()

	src := arena.Path(ref.ObjectName)
	log.Debug("downloading source object")
	if err := p.store.Download(ctx, ref.Bucket, ref.Key, src); err != nil {
		return err
	}

	ds, err := tabular.Load(src, ref.Format)
	if err != nil {
		return err
	}
	log.WithField("rows", ds.Len()).Debug("loaded dataset")

	masked, stats, err := p.engine.Mask(ds, req.PIIFields)
	if err != nil {
		return err
	}
	if len(stats.IgnoredFields) > 0 {
		log.WithField("fields", stats.IgnoredFields).Warn("ignoring fields that are not columns of the dataset")
	}
	res.Rows, res.MaskedValues, res.SkippedNulls = stats.Rows, stats.Masked, stats.SkippedNulls

	out := arena.Path(OutputName(ref.ObjectName))
	if err := tabular.Save(out, masked, tabular.WithIndex(p.dest.KeepIndex)); err != nil {
		return err
	}
	body, err := os.ReadFile(out)
	if err != nil {
		return fmt.Errorf("failed to read obfuscated file %s: %w", out, err)
	}

	log.WithFields(logrus.Fields{"dest_bucket": bucket, "dest_key": key}).Debug("uploading obfuscated object")
	md, err := p.store.Upload(ctx, body, bucket, key)
	if err != nil {
		return err
	}
	res.DestinationBucket, res.DestinationKey = bucket, key
	res.Metadata = md
	return nil
}

// record writes the audit entry. The upload has already happened, so a
// recorder failure is only logged.
func (p *Pipeline) record(ctx context.Context, req Request, res *Result, runErr error, started time.Time, log *logrus.Entry) {
	e := audit.Entry{
		RunID:       res.RunID,
		Source:      req.FileToObfuscate,
		Destination: res.DestinationURI(),
		Fields:      req.PIIFields,
		Rows:        res.Rows,
		Masked:      res.MaskedValues,
		Status:      audit.StatusSucceeded,
		StartedAt:   started,
		FinishedAt:  time.Now(),
	}
	if runErr != nil {
		e.Status = audit.StatusFailed
		e.Error = runErr.Error()
	}
	if err := p.recorder.Record(ctx, e); err != nil {
		log.WithError(err).Warn("failed to record audit entry")
	}
}
