package entity

// CVSize is the encoded length of a CV record: two 32-byte identifiers, the
// title, the content payload, a version counter, two timestamps, a status
// byte, and the feedback payload. The title field is TitleSize wide so that
// any title accepted by validation round-trips without truncation. Content
// and feedback share the same 1024-byte budget.
const CVSize = 2*FixedStringSize + TitleSize + ContentSize + 4 + 2*timestampSize + 1 + ContentSize

// AnalysisStatus tracks the lifecycle of the background quality analysis.
type AnalysisStatus uint8

const (
	AnalysisNotStarted AnalysisStatus = iota
	AnalysisInProgress
	AnalysisCompleted
	AnalysisFailed
)

// analysisStatusFromByte keeps records readable when a newer revision adds
// variants: anything out of range decodes as AnalysisCompleted.
func analysisStatusFromByte(b byte) AnalysisStatus {
	if b > byte(AnalysisFailed) {
		return AnalysisCompleted
	}
	return AnalysisStatus(b)
}

// CV is one uploaded resume. Versions are allocated per owner as
// max(existing)+1; editing the content resets the analysis status and clears
// any stored feedback.
type CV struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Version   uint32         `json:"version"`
	CreatedAt uint64         `json:"created_at"`
	UpdatedAt uint64         `json:"updated_at"`
	Status    AnalysisStatus `json:"analysis_status"`
	Feedback  string         `json:"feedback,omitempty"`
}

// Encode serializes the CV to its fixed CVSize layout.
func (cv *CV) Encode() []byte {
	b := newRecordBuf(CVSize)
	b.putString(cv.ID, FixedStringSize)
	b.putString(cv.UserID, FixedStringSize)
	b.putString(cv.Title, TitleSize)
	b.putString(cv.Content, ContentSize)
	b.putUint32(cv.Version)
	b.putUint64(cv.CreatedAt)
	b.putUint64(cv.UpdatedAt)
	b.putByte(byte(cv.Status))
	b.putString(cv.Feedback, ContentSize)
	return b.data
}

// DecodeCV rebuilds a CV from its fixed layout.
func DecodeCV(data []byte) (*CV, error) {
	if len(data) != CVSize {
		return nil, ErrBadRecord
	}
	b := wrapRecordBuf(data)
	cv := &CV{}
	cv.ID = b.getString(FixedStringSize)
	cv.UserID = b.getString(FixedStringSize)
	cv.Title = b.getString(TitleSize)
	cv.Content = b.getString(ContentSize)
	cv.Version = b.getUint32()
	cv.CreatedAt = b.getUint64()
	cv.UpdatedAt = b.getUint64()
	cv.Status = analysisStatusFromByte(b.getByte())
	cv.Feedback = b.getString(ContentSize)
	return cv, nil
}
