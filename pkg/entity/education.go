package entity

// EducationRecordSize is the encoded length of an EducationRecord: eight
// 32-byte strings, level and status bytes, the start year, two optional
// 4-byte integers, and two timestamps.
const EducationRecordSize = 8*FixedStringSize + 2 + yearSize + 2*(presenceByteSize+yearSize) + 2*timestampSize

// EducationLevel is a byte-encoded enum; unknown bytes decode as Other so
// records written by a newer revision stay readable.
type EducationLevel uint8

const (
	LevelHighSchool EducationLevel = iota
	LevelBachelor
	LevelMaster
	LevelPhD
	LevelOther
)

func educationLevelFromByte(b byte) EducationLevel {
	if b > byte(LevelOther) {
		return LevelOther
	}
	return EducationLevel(b)
}

// EducationStatus is a byte-encoded enum; unknown bytes decode as OnHold.
type EducationStatus uint8

const (
	EducationInProgress EducationStatus = iota
	EducationCompleted
	EducationDiscontinued
	EducationOnHold
)

func educationStatusFromByte(b byte) EducationStatus {
	if b > byte(EducationOnHold) {
		return EducationOnHold
	}
	return EducationStatus(b)
}

// EducationRecord is the single education summary a user may hold. Adding a
// new high-school or university entry overwrites the summary fields rather
// than appending; only the latest entry survives a restart. GPA is stored
// scaled by 100, truncating precision beyond two decimals.
type EducationRecord struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	SchoolName     string          `json:"school_name"`
	Track          string          `json:"track"`
	UniversityName string          `json:"university_name"`
	Major          string          `json:"major"`
	City           string          `json:"city"`
	Country        string          `json:"country"`
	Level          EducationLevel  `json:"education_level"`
	Status         EducationStatus `json:"status"`
	StartYear      uint32          `json:"start_year"`
	EndYear        *uint32         `json:"end_year,omitempty"`
	GPA            *uint32         `json:"gpa,omitempty"`
	CreatedAt      uint64          `json:"created_at"`
	UpdatedAt      uint64          `json:"updated_at"`
}

// Encode serializes the record to its fixed EducationRecordSize layout.
func (e *EducationRecord) Encode() []byte {
	b := newRecordBuf(EducationRecordSize)
	b.putString(e.ID, FixedStringSize)
	b.putString(e.UserID, FixedStringSize)
	b.putString(e.SchoolName, FixedStringSize)
	b.putString(e.Track, FixedStringSize)
	b.putString(e.UniversityName, FixedStringSize)
	b.putString(e.Major, FixedStringSize)
	b.putString(e.City, FixedStringSize)
	b.putString(e.Country, FixedStringSize)
	b.putByte(byte(e.Level))
	b.putByte(byte(e.Status))
	b.putUint32(e.StartYear)
	b.putOptionalUint32(e.EndYear)
	b.putOptionalUint32(e.GPA)
	b.putUint64(e.CreatedAt)
	b.putUint64(e.UpdatedAt)
	return b.data
}

// DecodeEducationRecord rebuilds a record from its fixed layout.
func DecodeEducationRecord(data []byte) (*EducationRecord, error) {
	if len(data) != EducationRecordSize {
		return nil, ErrBadRecord
	}
	b := wrapRecordBuf(data)
	e := &EducationRecord{}
	e.ID = b.getString(FixedStringSize)
	e.UserID = b.getString(FixedStringSize)
	e.SchoolName = b.getString(FixedStringSize)
	e.Track = b.getString(FixedStringSize)
	e.UniversityName = b.getString(FixedStringSize)
	e.Major = b.getString(FixedStringSize)
	e.City = b.getString(FixedStringSize)
	e.Country = b.getString(FixedStringSize)
	e.Level = educationLevelFromByte(b.getByte())
	e.Status = educationStatusFromByte(b.getByte())
	e.StartYear = b.getUint32()
	e.EndYear = b.getOptionalUint32()
	e.GPA = b.getOptionalUint32()
	e.CreatedAt = b.getUint64()
	e.UpdatedAt = b.getUint64()
	return e, nil
}
