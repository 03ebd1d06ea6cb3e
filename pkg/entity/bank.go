package entity

// BankInformationSize is the encoded length of a BankInformation record:
// seven 32-byte strings and two timestamps.
const BankInformationSize = 7*FixedStringSize + 2*timestampSize

// BankInformation holds a user's payout details. At most one record exists
// per owner; the SWIFT code must be 8 or 11 alphanumeric characters at
// validation time.
type BankInformation struct {
	ID                string `json:"id"`
	UserID            string `json:"user_id"`
	AccountHolderName string `json:"account_holder_name"`
	BankName          string `json:"bank_name"`
	SwiftCode         string `json:"swift_code"`
	AccountNumber     string `json:"account_number"`
	BankCountry       string `json:"bank_country"`
	CreatedAt         uint64 `json:"created_at"`
	UpdatedAt         uint64 `json:"updated_at"`
}

// Encode serializes the record to its fixed BankInformationSize layout.
func (i *BankInformation) Encode() []byte {
	b := newRecordBuf(BankInformationSize)
	b.putString(i.ID, FixedStringSize)
	b.putString(i.UserID, FixedStringSize)
	b.putString(i.AccountHolderName, FixedStringSize)
	b.putString(i.BankName, FixedStringSize)
	b.putString(i.SwiftCode, FixedStringSize)
	b.putString(i.AccountNumber, FixedStringSize)
	b.putString(i.BankCountry, FixedStringSize)
	b.putUint64(i.CreatedAt)
	b.putUint64(i.UpdatedAt)
	return b.data
}

// DecodeBankInformation rebuilds a record from its fixed layout.
func DecodeBankInformation(data []byte) (*BankInformation, error) {
	if len(data) != BankInformationSize {
		return nil, ErrBadRecord
	}
	b := wrapRecordBuf(data)
	i := &BankInformation{}
	i.ID = b.getString(FixedStringSize)
	i.UserID = b.getString(FixedStringSize)
	i.AccountHolderName = b.getString(FixedStringSize)
	i.BankName = b.getString(FixedStringSize)
	i.SwiftCode = b.getString(FixedStringSize)
	i.AccountNumber = b.getString(FixedStringSize)
	i.BankCountry = b.getString(FixedStringSize)
	i.CreatedAt = b.getUint64()
	i.UpdatedAt = b.getUint64()
	return i, nil
}
