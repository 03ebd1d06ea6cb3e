package entity

// UserProfileSize is the encoded length of a UserProfile record:
// six 32-byte strings, two optional 32-byte references (presence byte plus
// payload each), status and completion bytes, and two timestamps.
const UserProfileSize = 6*FixedStringSize + 2*(presenceByteSize+FixedStringSize) + 2 + 2*timestampSize

// UserStatus tracks account state as a single byte.
type UserStatus uint8

const (
	UserActive UserStatus = iota
	UserInactive
	UserSuspended
)

// userStatusFromByte tolerates unknown bytes written by newer revisions by
// falling back to UserActive.
func userStatusFromByte(b byte) UserStatus {
	switch UserStatus(b) {
	case UserInactive:
		return UserInactive
	case UserSuspended:
		return UserSuspended
	default:
		return UserActive
	}
}

// UserProfile is the identity record for a caller. Cross-references to
// education and bank records are plain identifier strings resolved by a
// fresh lookup; deleting the target leaves the reference dangling.
type UserProfile struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	PhoneNumber       string  `json:"phone_number"`
	City              string  `json:"city"`
	Country           string  `json:"country"`
	EducationID       *string `json:"education_id,omitempty"`
	BankInfoID        *string `json:"bank_info_id,omitempty"`
	Status            UserStatus
	ProfileCompletion uint8  `json:"profile_completion"`
	CreatedAt         uint64 `json:"created_at"`
	UpdatedAt         uint64 `json:"updated_at"`
}

// Encode serializes the profile to its fixed UserProfileSize layout.
func (u *UserProfile) Encode() []byte {
	b := newRecordBuf(UserProfileSize)
	b.putString(u.ID, FixedStringSize)
	b.putString(u.Name, FixedStringSize)
	b.putString(u.Email, FixedStringSize)
	b.putString(u.PhoneNumber, FixedStringSize)
	b.putString(u.City, FixedStringSize)
	b.putString(u.Country, FixedStringSize)
	b.putOptionalString(u.EducationID, FixedStringSize)
	b.putOptionalString(u.BankInfoID, FixedStringSize)
	b.putByte(byte(u.Status))
	b.putByte(u.ProfileCompletion)
	b.putUint64(u.CreatedAt)
	b.putUint64(u.UpdatedAt)
	return b.data
}

// DecodeUserProfile rebuilds a profile from its fixed layout. A buffer of the
// wrong length is corrupted storage and yields ErrBadRecord.
func DecodeUserProfile(data []byte) (*UserProfile, error) {
	if len(data) != UserProfileSize {
		return nil, ErrBadRecord
	}
	b := wrapRecordBuf(data)
	u := &UserProfile{}
	u.ID = b.getString(FixedStringSize)
	u.Name = b.getString(FixedStringSize)
	u.Email = b.getString(FixedStringSize)
	u.PhoneNumber = b.getString(FixedStringSize)
	u.City = b.getString(FixedStringSize)
	u.Country = b.getString(FixedStringSize)
	u.EducationID = b.getOptionalString(FixedStringSize)
	u.BankInfoID = b.getOptionalString(FixedStringSize)
	u.Status = userStatusFromByte(b.getByte())
	u.ProfileCompletion = b.getByte()
	u.CreatedAt = b.getUint64()
	u.UpdatedAt = b.getUint64()
	return u, nil
}
