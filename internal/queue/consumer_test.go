package queue

import (
    "encoding/json"
    "log/slog"
    "os"
    "path/filepath"
    "strings"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestHandleAppendsLines(t *testing.T) {
    dir := t.TempDir()
    c := NewConsumer("", dir, slog.New(slog.NewTextHandler(os.Stderr, nil)))

    at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
    otp, _ := json.Marshal(OTPIssuedEvent{ContactNumber: "9876543210", OTP: "004217", IssuedAt: at})
    sr, _ := json.Marshal(ServiceRequestEvent{
        RequestID: "abc", Event: EventStatusChanged, ServiceStatus: "delivered", Status: "completed",
        Actor: "u-1", At: at,
    })

    require.NoError(t, c.Handle(QueueOTPIssued, otp))
    require.NoError(t, c.Handle(QueueServiceRequests, sr))

    raw, err := os.ReadFile(filepath.Join(dir, "notifications.log"))
    require.NoError(t, err)
    lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
    require.Len(t, lines, 2)
    assert.Equal(t, "[2026-01-02T03:04:05Z] OTP issued | contact=9876543210 | otp=004217 | expires=never", lines[0])
    assert.Contains(t, lines[1], "Service request status_changed | id=abc | service_status=delivered | status=completed")
}

func TestHandleRejectsBadInput(t *testing.T) {
    c := NewConsumer("", t.TempDir(), slog.New(slog.NewTextHandler(os.Stderr, nil)))
    assert.Error(t, c.Handle(QueueOTPIssued, []byte("{")))
    assert.Error(t, c.Handle("other.queue", []byte("{}")))
}
