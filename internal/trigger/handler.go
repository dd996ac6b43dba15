// Package trigger implements the object-created handler that turns uploads
// into thumbnails.
//
// The handler writes its output into the bucket it was triggered from, so
// the thumbnail upload raises another object-created event. Keys ending in
// thumbnail.Suffix are ignored; that check is the only thing preventing the
// function from invoking itself forever.
//
// The object write and the metadata insert are independent calls. If the
// insert fails the thumbnail object remains without a record.
package trigger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/sakarghimire/thumbnail-service/internal/logger"
	"github.com/sakarghimire/thumbnail-service/internal/metadata"
	"github.com/sakarghimire/thumbnail-service/internal/metrics"
	"github.com/sakarghimire/thumbnail-service/internal/storage"
	"github.com/sakarghimire/thumbnail-service/internal/thumbnail"
)

// ErrMalformedEvent is returned for notifications without a usable record.
var ErrMalformedEvent = errors.New("malformed s3 event")

type recordStore interface {
	Put(ctx context.Context, rec metadata.Record) error
}

type recorder interface {
	ThumbnailGenerated()
	TriggerSkipped()
	TriggerFailed(stage string)
}

// Result is returned to the invoker after a thumbnail was produced.
type Result struct {
	URL              string `json:"url"`
	ID               string `json:"id"`
	ApproxReduceSize string `json:"approxReduceSize"`
}

// Handler generates a thumbnail for each uploaded image.
type Handler struct {
	objects storage.ObjectStore
	records recordStore
	size    int
	log     *zap.Logger
	metrics recorder
	now     func() time.Time
}

// NewHandler wires the handler to its collaborators. size is the edge length
// of the square thumbnails.
func NewHandler(objects storage.ObjectStore, records recordStore, size int, log *zap.Logger, rec recorder) *Handler {
	return &Handler{
		objects: objects,
		records: records,
		size:    size,
		log:     log,
		metrics: rec,
		now:     time.Now,
	}
}

// Handle processes the first record of an S3 object-created notification.
// It returns nil and no error when the key belongs to a thumbnail.
func (h *Handler) Handle(ctx context.Context, event events.S3Event) (*Result, error) {
	log := logger.ForInvocation(ctx, h.log)

	if len(event.Records) == 0 {
		return nil, fmt.Errorf("%w: no records", ErrMalformedEvent)
	}
	entity := event.Records[0].S3
	bucket := entity.Bucket.Name
	key := entity.Object.URLDecodedKey
	if key == "" {
		key = entity.Object.Key
	}
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("%w: bucket %q key %q", ErrMalformedEvent, bucket, key)
	}
	size := entity.Object.Size

	log = log.With(zap.String("bucket", bucket), zap.String("key", key))
	log.Info("object created", zap.Int64("size", size))

	if thumbnail.IsThumbnailKey(key) {
		h.metrics.TriggerSkipped()
		log.Info("skipping generated thumbnail")
		return nil, nil
	}

	source, err := h.objects.GetObject(ctx, bucket, key)
	if err != nil {
		h.metrics.TriggerFailed(metrics.StageRead)
		return nil, fmt.Errorf("read source image: %w", err)
	}

	png, err := thumbnail.Generate(bytes.NewReader(source), h.size)
	if err != nil {
		h.metrics.TriggerFailed(metrics.StageResize)
		return nil, fmt.Errorf("generate thumbnail for %s: %w", key, err)
	}

	thumbKey := thumbnail.DeriveKey(key)
	if err := h.objects.PutObject(ctx, bucket, thumbKey, png, thumbnail.ContentType); err != nil {
		h.metrics.TriggerFailed(metrics.StageWrite)
		return nil, fmt.Errorf("write thumbnail: %w", err)
	}

	url := h.objects.URL(bucket, thumbKey)
	log.Info("thumbnail uploaded", zap.String("thumbnail_key", thumbKey), zap.Int("bytes", len(png)))

	rec := metadata.NewRecord(url, thumbnail.ApproxReduceSize(size), h.now())
	if err := h.records.Put(ctx, rec); err != nil {
		h.metrics.TriggerFailed(metrics.StageRecord)
		log.Error("thumbnail stored without metadata record", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("record thumbnail metadata: %w", err)
	}

	h.metrics.ThumbnailGenerated()
	log.Info("thumbnail recorded", zap.String("id", rec.ID), zap.String("approx_reduce_size", rec.ApproxReduceSize))

	return &Result{URL: url, ID: rec.ID, ApproxReduceSize: rec.ApproxReduceSize}, nil
}
