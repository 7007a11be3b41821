package storage

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tasket/tasket-server/internal/constants"
	"github.com/tasket/tasket-server/internal/models"
)

// Cleaner deletes attachment blobs by URL, routing each URL to the backend
// that owns it. URLs that match neither backend are external links and are
// never touched.
type Cleaner struct {
	objects ObjectStore
	local   *LocalStore
	timeout time.Duration
	log     *logrus.Logger
}

func NewCleaner(objects ObjectStore, local *LocalStore, log *logrus.Logger) *Cleaner {
	return &Cleaner{
		objects: objects,
		local:   local,
		timeout: constants.AttachmentDeleteTimeout,
		log:     log,
	}
}

// DeleteByURL removes the blob behind one attachment URL, or does nothing
// when the URL is external or the owning backend is not configured. Object
// keys are the URL's final path segment.
func (c *Cleaner) DeleteByURL(ctx context.Context, rawURL string) error {
	switch {
	case strings.Contains(rawURL, r2URLMarker):
		if c.objects == nil || !c.objects.Configured() {
			c.log.WithField("url", rawURL).Warn("object storage not configured, skipping attachment deletion")
			return nil
		}
		tctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return c.objects.Delete(tctx, path.Base(rawURL))
	case strings.HasPrefix(rawURL, constants.LocalUploadPrefix):
		return c.local.Delete(rawURL)
	default:
		return nil
	}
}

// DeleteAll attempts every attachment independently and returns how many
// deletions failed. One failure never aborts the rest; errors are logged
// here and not propagated.
func (c *Cleaner) DeleteAll(ctx context.Context, attachments models.AttachmentList) int {
	failed := 0
	for _, att := range attachments {
		if att.URL == "" {
			continue
		}
		if err := c.DeleteByURL(ctx, att.URL); err != nil {
			failed++
			c.log.WithError(err).WithField("url", att.URL).Error("failed to delete attachment file")
		}
	}
	return failed
}
