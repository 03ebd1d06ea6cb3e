package entity

// APIUsageSize is the encoded length of an APIUsage record.
const APIUsageSize = FixedStringSize + 4 + 2*timestampSize

// APIUsage counts assistant requests per user. DailyRequests resets once the
// reset interval has elapsed since LastReset; TotalRequests only grows.
type APIUsage struct {
	UserID        string `json:"user_id"`
	DailyRequests uint32 `json:"daily_requests"`
	LastReset     uint64 `json:"last_reset"`
	TotalRequests uint64 `json:"total_requests"`
}

// Encode serializes the counter to its fixed APIUsageSize layout.
func (u *APIUsage) Encode() []byte {
	b := newRecordBuf(APIUsageSize)
	b.putString(u.UserID, FixedStringSize)
	b.putUint32(u.DailyRequests)
	b.putUint64(u.LastReset)
	b.putUint64(u.TotalRequests)
	return b.data
}

// DecodeAPIUsage rebuilds a counter from its fixed layout.
func DecodeAPIUsage(data []byte) (*APIUsage, error) {
	if len(data) != APIUsageSize {
		return nil, ErrBadRecord
	}
	b := wrapRecordBuf(data)
	u := &APIUsage{}
	u.UserID = b.getString(FixedStringSize)
	u.DailyRequests = b.getUint32()
	u.LastReset = b.getUint64()
	u.TotalRequests = b.getUint64()
	return u, nil
}
