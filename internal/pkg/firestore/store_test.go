package firestore

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sahara-wellness/backend/internal/pkg/model"
)

func Test_toKeyRecord(t *testing.T) {
	tests := []struct {
		name string
		data map[string]interface{}
		want string
	}{
		{name: "Empty", data: map[string]interface{}{}, want: ""},
		{name: "String", data: map[string]interface{}{"last_used": "2024-01-05"}, want: "2024-01-05"},
		{name: "Timestamp string", data: map[string]interface{}{"last_used": "2024-01-05T10:00:00Z"}, want: "2024-01-05"},
		{name: "Time", data: map[string]interface{}{"last_used": time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)},
			want: "2024-01-05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toKeyRecord("k", tt.data)
			assert.Equal(t, tt.want, got.LastUsedDate)
			assert.Equal(t, "k", got.Key)
		})
	}
}

func Test_toKeyRecord_Counters(t *testing.T) {
	got := toKeyRecord("k", map[string]interface{}{"daily_limit": int64(10), "usage": int64(3)})
	assert.Equal(t, int64(10), got.DailyLimit)
	assert.True(t, got.HasLimit)
	assert.Equal(t, int64(3), got.UsageCount)
}

func Test_toKeyRecord_NoLimit(t *testing.T) {
	got := toKeyRecord("k", map[string]interface{}{"usage": int64(3)})
	assert.False(t, got.HasLimit)
	assert.Equal(t, int64(0), got.DailyLimit)

	got = toKeyRecord("k", map[string]interface{}{"daily_limit": int64(0)})
	assert.True(t, got.HasLimit)
	assert.Equal(t, int64(0), got.DailyLimit)
}

func Test_mapTxErr(t *testing.T) {
	assert.Nil(t, mapTxErr(nil))
	assert.Equal(t, model.ErrNoRecord, mapTxErr(model.ErrNoRecord))
	assert.Equal(t, model.ErrQuotaExceeded, mapTxErr(model.ErrQuotaExceeded))
	assert.Equal(t, model.ErrContention, mapTxErr(status.Error(codes.Aborted, "aborted")))
	err := errors.New("olia")
	assert.Equal(t, err, mapTxErr(err))
}
