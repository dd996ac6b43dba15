// Package storage provides the object-store gateway used by the thumbnail
// trigger: whole-object reads and public-read writes addressed by bucket and
// key, backed by Amazon S3 or MinIO.
package storage

import (
	"context"
	"net/url"
	"strings"
)

// ACLPublicRead is the canned ACL applied to every written object.
const ACLPublicRead = "public-read"

// ObjectStore reads and writes whole objects.
type ObjectStore interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	PutObject(ctx context.Context, bucket, key string, body []byte, contentType string) error
	URL(bucket, key string) string
}

// joinURL builds a path-style object URL. Each key segment is escaped so
// keys holding spaces, '#', '?' or '%' still resolve to the object.
func joinURL(endpoint, bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimRight(endpoint, "/") + "/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}
