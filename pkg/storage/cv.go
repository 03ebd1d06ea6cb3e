package storage

import (
	"go.uber.org/zap"

	"github.com/cvault/cvault/pkg/entity"
	"github.com/cvault/cvault/pkg/store"
)

// UploadCV validates and stores a new CV. The whole read-max-version,
// compute-next, insert sequence runs under the owner's lock so two
// concurrent uploads can never allocate the same version.
func (c *Context) UploadCV(cv *entity.CV) error {
	if err := validateCV(cv); err != nil {
		return err
	}
	ok, err := c.userExists(cv.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return InvalidReference("User does not exist")
	}

	unlock := c.lockOwner(cv.UserID)
	defer unlock()

	key := entity.DeriveKey(cv.ID)
	exists, err := c.cvs.Contains(key)
	if err != nil {
		return SystemError("check cv existence", err)
	}
	if exists {
		return AlreadyExists("CV already exists")
	}

	maxVersion, err := c.maxCVVersion(cv.UserID)
	if err != nil {
		return err
	}

	now := c.clock()
	cv.Version = maxVersion + 1
	cv.Status = entity.AnalysisNotStarted
	cv.Feedback = ""
	cv.CreatedAt = now
	cv.UpdatedAt = now
	if _, err := c.cvs.Insert(key, cv.Encode()); err != nil {
		return SystemError("store cv", err)
	}
	c.logger.Info("cv uploaded",
		zap.String("cv_id", cv.ID),
		zap.String("user_id", cv.UserID),
		zap.Uint32("version", cv.Version))
	return nil
}

// GetCV loads a CV by id.
func (c *Context) GetCV(id string) (*entity.CV, error) {
	data, err := c.cvs.Get(entity.DeriveKey(id))
	if err == store.ErrKeyNotFound {
		return nil, NotFound("CV not found")
	}
	if err != nil {
		return nil, SystemError("load cv", err)
	}
	cv, err := entity.DecodeCV(data)
	if err != nil {
		return nil, SystemError("decode cv record", err)
	}
	return cv, nil
}

// CVsByUser returns every CV the owner holds, in key order. Linear in the
// total number of CVs.
func (c *Context) CVsByUser(userID string) ([]*entity.CV, error) {
	var out []*entity.CV
	err := c.cvs.Iterate(func(_ entity.Key, data []byte) error {
		cv, err := entity.DecodeCV(data)
		if err != nil {
			return err
		}
		if cv.UserID == userID {
			out = append(out, cv)
		}
		return nil
	})
	if err != nil {
		return nil, SystemError("scan cv records", err)
	}
	return out, nil
}

// LatestCV returns the owner's highest-version CV.
func (c *Context) LatestCV(userID string) (*entity.CV, error) {
	cvs, err := c.CVsByUser(userID)
	if err != nil {
		return nil, err
	}
	var latest *entity.CV
	for _, cv := range cvs {
		if latest == nil || cv.Version > latest.Version {
			latest = cv
		}
	}
	if latest == nil {
		return nil, NotFound("CV not found")
	}
	return latest, nil
}

// UpdateCV overwrites an existing CV. A content change resets the analysis
// status and clears stored feedback regardless of prior state; the version
// never changes on update.
func (c *Context) UpdateCV(cv *entity.CV) (contentChanged bool, err error) {
	if err := validateCV(cv); err != nil {
		return false, err
	}
	existing, err := c.GetCV(cv.ID)
	if err != nil {
		return false, err
	}
	if existing.UserID != cv.UserID {
		return false, NotFound("CV not found")
	}

	contentChanged = existing.Content != cv.Content
	cv.Version = existing.Version
	cv.CreatedAt = existing.CreatedAt
	cv.UpdatedAt = c.clock()
	if contentChanged {
		cv.Status = entity.AnalysisNotStarted
		cv.Feedback = ""
	} else {
		cv.Status = existing.Status
		cv.Feedback = existing.Feedback
	}

	if _, err := c.cvs.Insert(entity.DeriveKey(cv.ID), cv.Encode()); err != nil {
		return false, SystemError("store cv", err)
	}
	c.logger.Info("cv updated",
		zap.String("cv_id", cv.ID), zap.Bool("content_changed", contentChanged))
	return contentChanged, nil
}

// SetAnalysisStatus moves a CV through the analysis lifecycle. Feedback is
// only written alongside a Completed status; a Failed transition keeps the
// feedback empty.
func (c *Context) SetAnalysisStatus(cvID string, status entity.AnalysisStatus, feedback string) error {
	cv, err := c.GetCV(cvID)
	if err != nil {
		return err
	}
	cv.Status = status
	if status == entity.AnalysisCompleted {
		cv.Feedback = feedback
	} else {
		cv.Feedback = ""
	}
	cv.UpdatedAt = c.clock()
	if _, err := c.cvs.Insert(entity.DeriveKey(cvID), cv.Encode()); err != nil {
		return SystemError("store cv", err)
	}
	return nil
}

// DeleteCV removes a CV owned by userID.
func (c *Context) DeleteCV(id, userID string) error {
	cv, err := c.GetCV(id)
	if err != nil {
		return err
	}
	if cv.UserID != userID {
		return NotFound("CV not found")
	}
	if _, err := c.cvs.Remove(entity.DeriveKey(id)); err != nil {
		return SystemError("delete cv", err)
	}
	c.logger.Info("cv deleted", zap.String("cv_id", id))
	return nil
}

// maxCVVersion scans the owner's CVs for the highest allocated version.
// Callers hold the owner lock.
func (c *Context) maxCVVersion(userID string) (uint32, error) {
	cvs, err := c.CVsByUser(userID)
	if err != nil {
		return 0, err
	}
	var max uint32
	for _, cv := range cvs {
		if cv.Version > max {
			max = cv.Version
		}
	}
	return max, nil
}
