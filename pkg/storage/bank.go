package storage

import (
	"go.uber.org/zap"

	"github.com/cvault/cvault/pkg/entity"
	"github.com/cvault/cvault/pkg/store"
)

// BankRecordID returns the deterministic record id for an owner. Record ids
// are never taken from request payloads, so a write can only ever land on the
// caller's own record.
func BankRecordID(userID string) string {
	return "bank_" + userID
}

// SaveBankInformation stores a new payout record. The owner must exist, may
// hold at most one record, and the SWIFT code must be well-formed.
func (c *Context) SaveBankInformation(info *entity.BankInformation) error {
	ok, err := c.userExists(info.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return InvalidReference("User does not exist")
	}

	unlock := c.lockOwner(info.UserID)
	defer unlock()

	info.ID = BankRecordID(info.UserID)
	exists, err := c.bank.Contains(entity.DeriveKey(info.ID))
	if err != nil {
		return SystemError("check bank information", err)
	}
	if exists {
		return AlreadyExists("User already has bank information")
	}
	if err := validateSwift(info.SwiftCode); err != nil {
		return err
	}

	now := c.clock()
	info.CreatedAt = now
	info.UpdatedAt = now
	if _, err := c.bank.Insert(entity.DeriveKey(info.ID), info.Encode()); err != nil {
		return SystemError("store bank information", err)
	}
	c.logger.Info("bank information saved",
		zap.String("record_id", info.ID), zap.String("user_id", info.UserID))
	return nil
}

// GetBankInformation loads a record by id.
func (c *Context) GetBankInformation(id string) (*entity.BankInformation, error) {
	data, err := c.bank.Get(entity.DeriveKey(id))
	if err == store.ErrKeyNotFound {
		return nil, NotFound("Bank information not found")
	}
	if err != nil {
		return nil, SystemError("load bank information", err)
	}
	info, err := entity.DecodeBankInformation(data)
	if err != nil {
		return nil, SystemError("decode bank record", err)
	}
	return info, nil
}

// BankInformationByUser loads the owner's record through its deterministic
// id.
func (c *Context) BankInformationByUser(userID string) (*entity.BankInformation, error) {
	return c.GetBankInformation(BankRecordID(userID))
}

// UpdateBankInformation overwrites the owner's existing record after
// revalidating the SWIFT code. The record id is derived from the owner, never
// trusted from the input.
func (c *Context) UpdateBankInformation(info *entity.BankInformation) error {
	info.ID = BankRecordID(info.UserID)
	existing, err := c.GetBankInformation(info.ID)
	if err != nil {
		return err
	}
	if err := validateSwift(info.SwiftCode); err != nil {
		return err
	}

	info.CreatedAt = existing.CreatedAt
	info.UpdatedAt = c.clock()
	if _, err := c.bank.Insert(entity.DeriveKey(info.ID), info.Encode()); err != nil {
		return SystemError("store bank information", err)
	}
	c.logger.Info("bank information updated", zap.String("record_id", info.ID))
	return nil
}
