package review

import (
	"github.com/JoelJacobStephen/litxplore"
	"github.com/JoelJacobStephen/litxplore/log"
	"github.com/JoelJacobStephen/litxplore/uploads"
)

// Cleaner removes uploaded PDFs once a review no longer needs them. It is
// best effort: failures are logged and swallowed so a cleanup problem can
// never change the outcome of the work that triggered it.
type Cleaner struct {
	Uploads *uploads.Store
	Logger  log.Logger
}

func NewCleaner(store *uploads.Store, logger log.Logger) *Cleaner {
	return &Cleaner{Uploads: store, Logger: logger}
}

func (c *Cleaner) CleanupUploads(ids []litxplore.PaperID) {
	for _, id := range ids {
		if id.Kind != litxplore.KindUpload {
			continue
		}
		if err := c.Uploads.Delete(id.Value); err != nil {
			c.Logger.Warnf("could not clean up upload %s: %v", id.Value, err)
		}
	}
}
