package storage

import (
	"go.uber.org/zap"

	"github.com/cvault/cvault/pkg/entity"
	"github.com/cvault/cvault/pkg/store"
)

// EducationRecordID returns the deterministic record id for an owner. Record
// ids are never taken from request payloads, so a write can only ever land on
// the caller's own record.
func EducationRecordID(userID string) string {
	return "edu_" + userID
}

// SaveEducation stores a new education record. The owner must exist, and may
// hold at most one education record.
func (c *Context) SaveEducation(rec *entity.EducationRecord) error {
	ok, err := c.userExists(rec.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return InvalidReference("User does not exist")
	}

	unlock := c.lockOwner(rec.UserID)
	defer unlock()

	rec.ID = EducationRecordID(rec.UserID)
	exists, err := c.edu.Contains(entity.DeriveKey(rec.ID))
	if err != nil {
		return SystemError("check education record", err)
	}
	if exists {
		return AlreadyExists("User already has an education record")
	}

	now := c.clock()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if _, err := c.edu.Insert(entity.DeriveKey(rec.ID), rec.Encode()); err != nil {
		return SystemError("store education record", err)
	}
	c.logger.Info("education record saved",
		zap.String("record_id", rec.ID), zap.String("user_id", rec.UserID))
	return nil
}

// GetEducation loads a record by id.
func (c *Context) GetEducation(id string) (*entity.EducationRecord, error) {
	data, err := c.edu.Get(entity.DeriveKey(id))
	if err == store.ErrKeyNotFound {
		return nil, NotFound("Education record not found")
	}
	if err != nil {
		return nil, SystemError("load education record", err)
	}
	rec, err := entity.DecodeEducationRecord(data)
	if err != nil {
		return nil, SystemError("decode education record", err)
	}
	return rec, nil
}

// EducationByUser loads the owner's record through its deterministic id.
func (c *Context) EducationByUser(userID string) (*entity.EducationRecord, error) {
	return c.GetEducation(EducationRecordID(userID))
}

// UpdateEducation overwrites the owner's existing record, keeping its
// creation time. The record id is derived from the owner, never trusted from
// the input.
func (c *Context) UpdateEducation(rec *entity.EducationRecord) error {
	rec.ID = EducationRecordID(rec.UserID)
	existing, err := c.GetEducation(rec.ID)
	if err != nil {
		return err
	}

	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = c.clock()
	if _, err := c.edu.Insert(entity.DeriveKey(rec.ID), rec.Encode()); err != nil {
		return SystemError("store education record", err)
	}
	c.logger.Info("education record updated", zap.String("record_id", rec.ID))
	return nil
}
