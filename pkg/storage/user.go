package storage

import (
	"go.uber.org/zap"

	"github.com/cvault/cvault/pkg/entity"
	"github.com/cvault/cvault/pkg/store"
)

// CreateUser validates and stores a new profile. The id must be unused.
func (c *Context) CreateUser(u *entity.UserProfile) error {
	if err := validateUser(u); err != nil {
		return err
	}
	key := entity.DeriveKey(u.ID)
	exists, err := c.users.Contains(key)
	if err != nil {
		return SystemError("check user existence", err)
	}
	if exists {
		return AlreadyExists("User already exists")
	}

	now := c.clock()
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := c.users.Insert(key, u.Encode()); err != nil {
		return SystemError("store user", err)
	}
	c.logger.Info("user created", zap.String("user_id", u.ID))
	return nil
}

// GetUser loads a profile by id.
func (c *Context) GetUser(id string) (*entity.UserProfile, error) {
	data, err := c.users.Get(entity.DeriveKey(id))
	if err == store.ErrKeyNotFound {
		return nil, NotFound("User not found")
	}
	if err != nil {
		return nil, SystemError("load user", err)
	}
	u, err := entity.DecodeUserProfile(data)
	if err != nil {
		return nil, SystemError("decode user record", err)
	}
	return u, nil
}

// UpdateUser validates the profile and its cross-references, then overwrites
// the stored record. The profile must already exist.
func (c *Context) UpdateUser(u *entity.UserProfile) error {
	if err := validateUser(u); err != nil {
		return err
	}
	existing, err := c.GetUser(u.ID)
	if err != nil {
		return err
	}
	if err := c.validateUserReferences(u); err != nil {
		return err
	}

	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = c.clock()
	if _, err := c.users.Insert(entity.DeriveKey(u.ID), u.Encode()); err != nil {
		return SystemError("store user", err)
	}
	c.logger.Info("user updated", zap.String("user_id", u.ID))
	return nil
}

// DeleteUser removes a profile. Records owned by the user are left in place
// with dangling owner references.
func (c *Context) DeleteUser(id string) error {
	_, err := c.users.Remove(entity.DeriveKey(id))
	if err == store.ErrKeyNotFound {
		return NotFound("User not found")
	}
	if err != nil {
		return SystemError("delete user", err)
	}
	c.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}

// userExists is the owner check shared by dependent-entity writes.
func (c *Context) userExists(id string) (bool, error) {
	ok, err := c.users.Contains(entity.DeriveKey(id))
	if err != nil {
		return false, SystemError("check user existence", err)
	}
	return ok, nil
}

// validateUserReferences confirms the profile's education and bank pointers
// resolve to live records.
func (c *Context) validateUserReferences(u *entity.UserProfile) error {
	if u.EducationID != nil {
		ok, err := c.edu.Contains(entity.DeriveKey(*u.EducationID))
		if err != nil {
			return SystemError("check education reference", err)
		}
		if !ok {
			return InvalidReference("Referenced education record not found")
		}
	}
	if u.BankInfoID != nil {
		ok, err := c.bank.Contains(entity.DeriveKey(*u.BankInfoID))
		if err != nil {
			return SystemError("check bank reference", err)
		}
		if !ok {
			return InvalidReference("Referenced bank information not found")
		}
	}
	return nil
}
