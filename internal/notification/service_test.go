package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"classnest-backend/internal/notification/domain"
	tokendomain "classnest-backend/internal/token/domain"
	"classnest-backend/pkg/push"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRecordRepository is a mock implementation of repository.RecordRepository
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) Create(ctx context.Context, record *domain.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Record, error) {
	args := m.Called(ctx, userID, limit)
	records, _ := args.Get(0).([]domain.Record)
	return records, args.Error(1)
}

func (m *MockRecordRepository) DueScheduled(ctx context.Context, now time.Time, limit int) ([]domain.Record, error) {
	args := m.Called(ctx, now, limit)
	records, _ := args.Get(0).([]domain.Record)
	return records, args.Error(1)
}

func (m *MockRecordRepository) MarkDelivered(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRecordRepository) MarkRead(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockTokenReader is a mock implementation of TokenReader
type MockTokenReader struct {
	mock.Mock
}

func (m *MockTokenReader) TokensByUserID(ctx context.Context, userID string) ([]tokendomain.DeviceToken, error) {
	args := m.Called(ctx, userID)
	tokens, _ := args.Get(0).([]tokendomain.DeviceToken)
	return tokens, args.Error(1)
}

func (m *MockTokenReader) DeleteByToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockSender is a mock implementation of Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendToDevices(ctx context.Context, tokens []string, n push.Notification) ([]string, error) {
	args := m.Called(ctx, tokens, n)
	failed, _ := args.Get(0).([]string)
	return failed, args.Error(1)
}

func pushTokens(tokens ...string) []tokendomain.DeviceToken {
	var out []tokendomain.DeviceToken
	for _, t := range tokens {
		out = append(out, tokendomain.DeviceToken{Kind: tokendomain.KindPush, Token: t})
	}
	return out
}

func TestRecorder_FailureIsSwallowed(t *testing.T) {
	repo := new(MockRecordRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("store unavailable")).Once()

	recorder := NewRecorder(repo)

	id := recorder.Record(context.Background(), "user-1", domain.TypeImmediate, "t", "m", "", time.Now())
	assert.Empty(t, id)
	repo.AssertExpectations(t)
}

func TestRecorder_StatusFromScheduledFor(t *testing.T) {
	repo := new(MockRecordRepository)
	var created []*domain.Record
	repo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { created = append(created, args.Get(1).(*domain.Record)) }).
		Return(nil)

	recorder := NewRecorder(repo)
	ctx := context.Background()

	recorder.Record(ctx, "user-1", domain.TypeImmediate, "now", "", "", time.Now().Add(-time.Second))
	recorder.Record(ctx, "user-1", domain.TypeAssignmentReminder, "later", "", "hw-9", time.Now().Add(time.Hour))

	assert.Equal(t, domain.StatusDelivered, created[0].Status)
	assert.Equal(t, domain.StatusScheduled, created[1].Status)
	assert.Equal(t, "hw-9", created[1].RelatedID)
}

func TestSendImmediate_AuditFailureDoesNotBlockDelivery(t *testing.T) {
	repo := new(MockRecordRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed")).Once()

	tokens := new(MockTokenReader)
	tokens.On("TokensByUserID", mock.Anything, "user-1").Return(pushTokens("tok-A"), nil).Once()

	sender := new(MockSender)
	sender.On("SendToDevices", mock.Anything, []string{"tok-A"}, mock.Anything).Return(nil, nil).Once()

	svc := NewService(NewRecorder(repo), tokens, sender, nil)

	// Must complete without panicking or surfacing the audit failure.
	svc.SendImmediate(context.Background(), "user-1", "Grade posted", "A+", "asg-1", nil)

	sender.AssertExpectations(t)
}

func TestSendImmediate_NoTokensSkipsPush(t *testing.T) {
	repo := new(MockRecordRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	tokens := new(MockTokenReader)
	tokens.On("TokensByUserID", mock.Anything, "user-1").Return(nil, nil).Once()

	sender := new(MockSender)

	svc := NewService(NewRecorder(repo), tokens, sender, nil)
	svc.SendImmediate(context.Background(), "user-1", "t", "m", "", nil)

	sender.AssertNotCalled(t, "SendToDevices")
}

func TestSendImmediate_CleansUpFailedTokens(t *testing.T) {
	repo := new(MockRecordRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	tokens := new(MockTokenReader)
	tokens.On("TokensByUserID", mock.Anything, "user-1").Return(pushTokens("tok-A", "tok-B"), nil).Once()
	tokens.On("DeleteByToken", mock.Anything, "tok-B").Return(nil).Once()

	sender := new(MockSender)
	sender.On("SendToDevices", mock.Anything, []string{"tok-A", "tok-B"}, mock.Anything).
		Return([]string{"tok-B"}, nil).Once()

	svc := NewService(NewRecorder(repo), tokens, sender, nil)
	svc.SendImmediate(context.Background(), "user-1", "t", "m", "", nil)

	tokens.AssertExpectations(t)
}

func TestSendImmediate_OnlyPushKindTokens(t *testing.T) {
	repo := new(MockRecordRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	tokens := new(MockTokenReader)
	tokens.On("TokensByUserID", mock.Anything, "user-1").Return([]tokendomain.DeviceToken{
		{Kind: tokendomain.KindVoIP, Token: "tok-voip"},
	}, nil).Once()

	sender := new(MockSender)

	svc := NewService(NewRecorder(repo), tokens, sender, nil)
	svc.SendImmediate(context.Background(), "user-1", "t", "m", "", nil)

	// VoIP tokens are reserved for the call path.
	sender.AssertNotCalled(t, "SendToDevices")
}

func TestScheduler_DeliversDueRecords(t *testing.T) {
	due := []domain.Record{
		{ID: "rec-1", UserID: "user-1", Type: domain.TypeAssignmentReminder, Title: "Homework due", Message: "Math sheet 4", RelatedID: "hw-4"},
	}

	repo := new(MockRecordRepository)
	repo.On("DueScheduled", mock.Anything, mock.Anything, dueBatchSize).Return(due, nil).Once()
	repo.On("MarkDelivered", mock.Anything, "rec-1").Return(nil).Once()

	tokens := new(MockTokenReader)
	tokens.On("TokensByUserID", mock.Anything, "user-1").Return(pushTokens("tok-A"), nil).Once()

	sender := new(MockSender)
	sender.On("SendToDevices", mock.Anything, []string{"tok-A"}, mock.MatchedBy(func(n push.Notification) bool {
		return n.Title == "Homework due" && n.Data["relatedId"] == "hw-4"
	})).Return(nil, nil).Once()

	svc := NewService(NewRecorder(repo), tokens, sender, nil)
	scheduler := NewReminderScheduler(repo, svc, time.Minute)
	scheduler.deliverDue()

	repo.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestScheduler_MarksDeliveredEvenWithoutTokens(t *testing.T) {
	due := []domain.Record{{ID: "rec-2", UserID: "user-2", Title: "Field trip"}}

	repo := new(MockRecordRepository)
	repo.On("DueScheduled", mock.Anything, mock.Anything, dueBatchSize).Return(due, nil).Once()
	repo.On("MarkDelivered", mock.Anything, "rec-2").Return(nil).Once()

	tokens := new(MockTokenReader)
	tokens.On("TokensByUserID", mock.Anything, "user-2").Return(nil, nil).Once()

	sender := new(MockSender)

	svc := NewService(NewRecorder(repo), tokens, sender, nil)
	NewReminderScheduler(repo, svc, time.Minute).deliverDue()

	repo.AssertExpectations(t)
	sender.AssertNotCalled(t, "SendToDevices")
}
