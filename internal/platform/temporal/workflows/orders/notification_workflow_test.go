package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/gifting-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/gifting-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/gifting-api/internal/platform/temporal/activities/orders"
)

type flakyNotifier struct {
	mu       sync.Mutex
	failures int
	calls    int
	numbers  []string
}

func (n *flakyNotifier) NotifyOrderCreated(_ context.Context, order *orderports.OrderProjection) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	if n.calls <= n.failures {
		return errors.New("channel unavailable")
	}
	n.numbers = append(n.numbers, order.Entity.OrderNumber)
	return nil
}

func newEnv(t *testing.T, notifier orderports.Notifier) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflowWithOptions(NotificationWorkflow, workflow.RegisterOptions{Name: NotificationWorkflowName})
	acts := orderactivities.NewActivities(notifier)
	env.RegisterActivityWithOptions(acts.SendNotification, activity.RegisterOptions{Name: orderactivities.SendNotificationActivityName})
	return env
}

func input() NotificationWorkflowInput {
	return NotificationWorkflowInput{
		Order: &orderports.OrderProjection{Entity: &domain.Order{
			ID:          1,
			OrderNumber: "CHG-20260101-AAAA1111",
			Status:      domain.StatusNew,
			TotalAmount: decimal.RequireFromString("450.00"),
		}},
		TraceID: "trace-1",
	}
}

func TestNotificationWorkflow_Delivers(t *testing.T) {
	notifier := &flakyNotifier{}
	env := newEnv(t, notifier)

	env.ExecuteWorkflow(NotificationWorkflowName, input())

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	assert.Equal(t, []string{"CHG-20260101-AAAA1111"}, notifier.numbers)
}

func TestNotificationWorkflow_RetriesChannelFailures(t *testing.T) {
	notifier := &flakyNotifier{failures: 2}
	env := newEnv(t, notifier)

	env.ExecuteWorkflow(NotificationWorkflowName, input())

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	assert.Equal(t, 3, notifier.calls)
	assert.Len(t, notifier.numbers, 1)
}

func TestNotificationWorkflow_GivesUpAfterMaxAttempts(t *testing.T) {
	notifier := &flakyNotifier{failures: 100}
	env := newEnv(t, notifier)

	env.ExecuteWorkflow(NotificationWorkflowName, input())

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	assert.Equal(t, 10, notifier.calls)
}
