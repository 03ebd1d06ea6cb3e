package storage

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cvault/cvault/pkg/entity"
	"github.com/cvault/cvault/pkg/store"
)

func newTestContext(t *testing.T, opts ...Option) *Context {
	t.Helper()
	arena, _, err := store.OpenLogArena(t.TempDir())
	require.NoError(t, err)
	ctx := NewContext(arena, zaptest.NewLogger(t), opts...)
	t.Cleanup(func() { ctx.Close() })
	return ctx
}

func validUser(id string) *entity.UserProfile {
	return &entity.UserProfile{
		ID:          id,
		Name:        "Ada Lovelace",
		Email:       "ada@example.com",
		PhoneNumber: "+31 6 1234 5678",
		City:        "Amsterdam",
		Country:     "Netherlands",
	}
}

func TestCreateUserValidation(t *testing.T) {
	ctx := newTestContext(t)

	cases := []struct {
		name    string
		mutate  func(*entity.UserProfile)
		message string
	}{
		{"empty phone", func(u *entity.UserProfile) { u.PhoneNumber = "" }, "Phone number cannot be empty"},
		{"short phone", func(u *entity.UserProfile) { u.PhoneNumber = "12345" }, "Invalid phone number"},
		{"bad email", func(u *entity.UserProfile) { u.Email = "not-an-email" }, "Invalid email address"},
		{"no name", func(u *entity.UserProfile) { u.Name = "" }, "Name is required"},
		{"no city", func(u *entity.UserProfile) { u.City = "" }, "Location fields are required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := validUser("user_1")
			tc.mutate(u)
			err := ctx.CreateUser(u)
			require.Error(t, err)
			assert.True(t, IsKind(err, KindValidationError))
			var se *StorageError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.message, se.Message)
		})
	}
}

func TestCreateAndGetUser(t *testing.T) {
	ctx := newTestContext(t)

	require.NoError(t, ctx.CreateUser(validUser("user_1")))

	got, err := ctx.GetUser("user_1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.NotZero(t, got.CreatedAt)
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)

	err = ctx.CreateUser(validUser("user_1"))
	assert.True(t, IsKind(err, KindAlreadyExists))

	_, err = ctx.GetUser("missing")
	assert.True(t, IsKind(err, KindNotFound))
}

func TestUpdateUserReferences(t *testing.T) {
	ctx := newTestContext(t)
	require.NoError(t, ctx.CreateUser(validUser("user_1")))

	dangling := "edu_missing"
	u := validUser("user_1")
	u.EducationID = &dangling
	err := ctx.UpdateUser(u)
	assert.True(t, IsKind(err, KindInvalidReference))

	require.NoError(t, ctx.SaveEducation(&entity.EducationRecord{
		UserID:     "user_1",
		SchoolName: "Trinity",
		Level:      entity.LevelBachelor,
		StartYear:  2018,
	}))

	eduID := EducationRecordID("user_1")
	u = validUser("user_1")
	u.EducationID = &eduID
	require.NoError(t, ctx.UpdateUser(u))

	got, err := ctx.GetUser("user_1")
	require.NoError(t, err)
	require.NotNil(t, got.EducationID)
	assert.Equal(t, EducationRecordID("user_1"), *got.EducationID)
}

func TestEducationOnePerOwner(t *testing.T) {
	ctx := newTestContext(t)
	require.NoError(t, ctx.CreateUser(validUser("user_1")))

	err := ctx.SaveEducation(&entity.EducationRecord{UserID: "ghost"})
	assert.True(t, IsKind(err, KindInvalidReference))

	first := &entity.EducationRecord{UserID: "user_1", SchoolName: "Trinity"}
	require.NoError(t, ctx.SaveEducation(first))
	assert.Equal(t, EducationRecordID("user_1"), first.ID)

	// A second save for the same owner conflicts; updates go through
	// UpdateEducation.
	err = ctx.SaveEducation(&entity.EducationRecord{UserID: "user_1", SchoolName: "Cambridge"})
	assert.True(t, IsKind(err, KindAlreadyExists))

	require.NoError(t, ctx.UpdateEducation(&entity.EducationRecord{
		UserID: "user_1", SchoolName: "Cambridge",
	}))

	rec, err := ctx.EducationByUser("user_1")
	require.NoError(t, err)
	assert.Equal(t, "Cambridge", rec.SchoolName)

	// Updating an owner without a record is NotFound, not an implicit save.
	err = ctx.UpdateEducation(&entity.EducationRecord{UserID: "user_2", SchoolName: "Oxford"})
	assert.True(t, IsKind(err, KindNotFound))

	_, err = ctx.EducationByUser("user_2")
	assert.True(t, IsKind(err, KindNotFound))
}

func TestBankInformationRules(t *testing.T) {
	ctx := newTestContext(t)
	require.NoError(t, ctx.CreateUser(validUser("user_1")))

	info := &entity.BankInformation{
		UserID:            "ghost",
		AccountHolderName: "Ada Lovelace",
		SwiftCode:         "INGBNL2A",
	}
	err := ctx.SaveBankInformation(info)
	assert.True(t, IsKind(err, KindInvalidReference))

	info.UserID = "user_1"
	info.SwiftCode = "TOOSHORT1"
	err = ctx.SaveBankInformation(info)
	assert.True(t, IsKind(err, KindValidationError))

	info.SwiftCode = "INGBNL2A"
	require.NoError(t, ctx.SaveBankInformation(info))

	second := &entity.BankInformation{UserID: "user_1", SwiftCode: "ABNANL2A"}
	err = ctx.SaveBankInformation(second)
	assert.True(t, IsKind(err, KindAlreadyExists))

	got, err := ctx.BankInformationByUser("user_1")
	require.NoError(t, err)
	assert.Equal(t, BankRecordID("user_1"), got.ID)

	got.SwiftCode = "INGBNL2AXXX"
	require.NoError(t, ctx.UpdateBankInformation(got))
}

func TestBankUpdateScopedToOwner(t *testing.T) {
	ctx := newTestContext(t)
	require.NoError(t, ctx.CreateUser(validUser("alice")))
	require.NoError(t, ctx.CreateUser(validUser("bob")))

	require.NoError(t, ctx.SaveBankInformation(&entity.BankInformation{
		UserID: "alice", AccountHolderName: "Alice", SwiftCode: "INGBNL2A",
	}))
	require.NoError(t, ctx.SaveBankInformation(&entity.BankInformation{
		UserID: "bob", AccountHolderName: "Bob", SwiftCode: "ABNANL2A",
	}))

	// An update only ever lands on the caller's own record, whatever id the
	// input carries.
	require.NoError(t, ctx.UpdateBankInformation(&entity.BankInformation{
		ID: BankRecordID("alice"), UserID: "bob",
		AccountHolderName: "Bob Updated", SwiftCode: "ABNANL2A",
	}))

	alices, err := ctx.BankInformationByUser("alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", alices.AccountHolderName)
	assert.Equal(t, "alice", alices.UserID)

	bobs, err := ctx.BankInformationByUser("bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob Updated", bobs.AccountHolderName)

	// Still exactly one record per owner.
	assert.NotEqual(t, alices.ID, bobs.ID)
}

func TestCVVersionMonotonicity(t *testing.T) {
	ctx := newTestContext(t)
	require.NoError(t, ctx.CreateUser(validUser("user_1")))

	for i := 1; i <= 3; i++ {
		cv := &entity.CV{
			ID:      fmt.Sprintf("cv_%d", i),
			UserID:  "user_1",
			Title:   "Resume",
			Content: "experience and skills",
		}
		require.NoError(t, ctx.UploadCV(cv))
		assert.Equal(t, uint32(i), cv.Version)
		assert.Equal(t, entity.AnalysisNotStarted, cv.Status)
	}

	latest, err := ctx.LatestCV("user_1")
	require.NoError(t, err)
	assert.Equal(t, "cv_3", latest.ID)

	cvs, err := ctx.CVsByUser("user_1")
	require.NoError(t, err)
	assert.Len(t, cvs, 3)

	// Deleting the latest does not reuse its version.
	require.NoError(t, ctx.DeleteCV("cv_3", "user_1"))
	cv := &entity.CV{ID: "cv_4", UserID: "user_1", Title: "Resume", Content: "x"}
	require.NoError(t, ctx.UploadCV(cv))
	assert.Equal(t, uint32(3), cv.Version)
}

func TestConcurrentUploadsUniqueVersions(t *testing.T) {
	ctx := newTestContext(t)
	require.NoError(t, ctx.CreateUser(validUser("user_1")))

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cv := &entity.CV{
				ID:      fmt.Sprintf("cv_%02d", i),
				UserID:  "user_1",
				Title:   "Resume",
				Content: "content",
			}
			assert.NoError(t, ctx.UploadCV(cv))
		}(i)
	}
	wg.Wait()

	cvs, err := ctx.CVsByUser("user_1")
	require.NoError(t, err)
	require.Len(t, cvs, n)

	seen := make(map[uint32]bool)
	for _, cv := range cvs {
		assert.False(t, seen[cv.Version], "version %d allocated twice", cv.Version)
		seen[cv.Version] = true
	}
}

func TestUpdateCVContentResetsAnalysis(t *testing.T) {
	ctx := newTestContext(t)
	require.NoError(t, ctx.CreateUser(validUser("user_1")))

	cv := &entity.CV{ID: "cv_1", UserID: "user_1", Title: "Resume", Content: "original"}
	require.NoError(t, ctx.UploadCV(cv))
	require.NoError(t, ctx.SetAnalysisStatus("cv_1", entity.AnalysisCompleted, "looks good"))

	stored, err := ctx.GetCV("cv_1")
	require.NoError(t, err)
	assert.Equal(t, entity.AnalysisCompleted, stored.Status)
	assert.Equal(t, "looks good", stored.Feedback)

	// Title-only edit keeps the analysis result.
	changed, err := ctx.UpdateCV(&entity.CV{
		ID: "cv_1", UserID: "user_1", Title: "Better Title", Content: "original",
	})
	require.NoError(t, err)
	assert.False(t, changed)

	stored, err = ctx.GetCV("cv_1")
	require.NoError(t, err)
	assert.Equal(t, entity.AnalysisCompleted, stored.Status)

	// Content edit resets status and clears feedback.
	changed, err = ctx.UpdateCV(&entity.CV{
		ID: "cv_1", UserID: "user_1", Title: "Better Title", Content: "rewritten",
	})
	require.NoError(t, err)
	assert.True(t, changed)

	stored, err = ctx.GetCV("cv_1")
	require.NoError(t, err)
	assert.Equal(t, entity.AnalysisNotStarted, stored.Status)
	assert.Empty(t, stored.Feedback)
	assert.Equal(t, uint32(1), stored.Version)
}

func TestUploadCVKeepsAcceptedTitle(t *testing.T) {
	ctx := newTestContext(t)
	require.NoError(t, ctx.CreateUser(validUser("user_1")))

	// Any title that passes validation must read back unmodified.
	title := strings.Repeat("T", 52)
	require.NoError(t, ctx.UploadCV(&entity.CV{
		ID: "cv_1", UserID: "user_1", Title: title, Content: "text",
	}))

	cv, err := ctx.GetCV("cv_1")
	require.NoError(t, err)
	assert.Equal(t, title, cv.Title)

	err = ctx.UploadCV(&entity.CV{
		ID: "cv_2", UserID: "user_1",
		Title: strings.Repeat("T", entity.TitleSize+1), Content: "text",
	})
	assert.True(t, IsKind(err, KindValidationError))
}

func TestAnalysisFailureKeepsNoFeedback(t *testing.T) {
	ctx := newTestContext(t)
	require.NoError(t, ctx.CreateUser(validUser("user_1")))
	require.NoError(t, ctx.UploadCV(&entity.CV{
		ID: "cv_1", UserID: "user_1", Title: "Resume", Content: "text",
	}))

	require.NoError(t, ctx.SetAnalysisStatus("cv_1", entity.AnalysisInProgress, ""))
	require.NoError(t, ctx.SetAnalysisStatus("cv_1", entity.AnalysisFailed, "ignored"))

	cv, err := ctx.GetCV("cv_1")
	require.NoError(t, err)
	assert.Equal(t, entity.AnalysisFailed, cv.Status)
	assert.Empty(t, cv.Feedback)
}

func TestChatSessionOverwrite(t *testing.T) {
	fixed := uint64(1000)
	ctx := newTestContext(t, WithClock(func() uint64 {
		fixed += 10
		return fixed
	}))

	first, err := ctx.CreateSession("alice", "cv1")
	require.NoError(t, err)
	assert.Equal(t, "chat_alice_cv1", first.ID)

	second, err := ctx.CreateSession("alice", "cv1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Greater(t, second.CreatedAt, first.CreatedAt)

	got, err := ctx.GetSession("chat_alice_cv1")
	require.NoError(t, err)
	assert.Equal(t, second.CreatedAt, got.CreatedAt)
}

func TestSessionMessagesOrderedAndScoped(t *testing.T) {
	ctx := newTestContext(t)

	session := "chat_a_c1"
	other := "chat_a_c2"
	msgs := []*entity.ChatMessage{
		{ID: "msg_" + session + "_300", Content: "third", Timestamp: 300},
		{ID: "msg_" + session + "_100", Content: "first", FromAI: true, Timestamp: 100},
		{ID: "msg_" + other + "_150", Content: "elsewhere", Timestamp: 150},
		{ID: "msg_" + session + "_200", Content: "second", Timestamp: 200},
	}
	for _, m := range msgs {
		require.NoError(t, ctx.StoreMessage(m))
	}

	got, err := ctx.SessionMessages(session)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Content)
	assert.True(t, got[0].FromAI)
	assert.Equal(t, "second", got[1].Content)
	assert.Equal(t, "third", got[2].Content)
}

func TestRateLimitDailyCeiling(t *testing.T) {
	ctx := newTestContext(t)

	for i := 0; i < 50; i++ {
		ok, err := ctx.CheckAndUpdateLimit("alice")
		require.NoError(t, err)
		require.True(t, ok, "request %d should be allowed", i+1)
	}

	ok, err := ctx.CheckAndUpdateLimit("alice")
	require.NoError(t, err)
	assert.False(t, ok)

	usage, err := ctx.GetUsage("alice")
	require.NoError(t, err)
	assert.Equal(t, uint32(50), usage.DailyRequests)
	assert.Equal(t, uint64(50), usage.TotalRequests)
}

func TestRateLimitResetsAfterInterval(t *testing.T) {
	now := uint64(1_000_000)
	ctx := newTestContext(t,
		WithClock(func() uint64 { return now }),
		WithRateLimit(RateLimitConfig{DailyLimit: 2, ResetInterval: 24 * time.Hour}),
	)

	for i := 0; i < 2; i++ {
		ok, err := ctx.CheckAndUpdateLimit("bob")
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := ctx.CheckAndUpdateLimit("bob")
	require.NoError(t, err)
	assert.False(t, ok)

	now += uint64((24 * time.Hour).Nanoseconds())
	ok, err = ctx.CheckAndUpdateLimit("bob")
	require.NoError(t, err)
	assert.True(t, ok)

	usage, err := ctx.GetUsage("bob")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), usage.DailyRequests)
	assert.Equal(t, uint64(3), usage.TotalRequests)
}

func TestClearAll(t *testing.T) {
	ctx := newTestContext(t)
	require.NoError(t, ctx.CreateUser(validUser("user_1")))
	require.NoError(t, ctx.UploadCV(&entity.CV{
		ID: "cv_1", UserID: "user_1", Title: "Resume", Content: "text",
	}))

	require.NoError(t, ctx.ClearAll())

	_, err := ctx.GetUser("user_1")
	assert.True(t, IsKind(err, KindNotFound))
	_, err = ctx.GetCV("cv_1")
	assert.True(t, IsKind(err, KindNotFound))
}

func TestStateSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	arena, _, err := store.OpenLogArena(dir)
	require.NoError(t, err)
	ctx := NewContext(arena, zaptest.NewLogger(t))
	require.NoError(t, ctx.CreateUser(validUser("user_1")))
	require.NoError(t, ctx.UploadCV(&entity.CV{
		ID: "cv_1", UserID: "user_1", Title: "Resume", Content: "text",
	}))
	require.NoError(t, ctx.Close())

	arena, _, err = store.OpenLogArena(dir)
	require.NoError(t, err)
	ctx = NewContext(arena, zaptest.NewLogger(t))
	defer ctx.Close()

	u, err := ctx.GetUser("user_1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", u.Name)

	cv, err := ctx.GetCV("cv_1")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), cv.Version)
}

func TestErrorKinds(t *testing.T) {
	err := NotFound("User not found")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(err, KindValidationError))
	assert.Equal(t, KindSystemError, KindOf(assert.AnError))
}
